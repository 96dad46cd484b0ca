package tracking

import (
	"testing"
	"time"
)

func TestTimeAgo(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"zero time", time.Time{}, ""},
		{"seconds ago", now.Add(-30 * time.Second), "Just now"},
		{"minutes ago", now.Add(-7 * time.Minute), "7m ago"},
		{"just under an hour", now.Add(-59 * time.Minute), "59m ago"},
		{"hours ago", now.Add(-3 * time.Hour), "3h ago"},
		{"days ago", now.Add(-50 * time.Hour), "2d ago"},
	}
	for _, tt := range tests {
		if got := TimeAgo(tt.at, now); got != tt.want {
			t.Errorf("%s: TimeAgo = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestBuildSnapshotRoundsDistances(t *testing.T) {
	cfg := DefaultThresholds()
	trip, _ := NewTrackedTrip(3, 9, equatorRoute(), testStart, testStart.Add(2*time.Hour), 16)
	trip, _ = trip.Start(testStart)

	s := testSample(0, 0.25, testStart.Add(30*time.Minute))
	s.HeadingDegrees = 90
	var err error
	trip, err = trip.WithSample(s, cfg)
	if err != nil {
		t.Fatalf("WithSample: %v", err)
	}
	// No movement between start and the single sample, so traveled stays 0;
	// remaining is 0.75 degrees ≈ 83.4 km, shown to one decimal.
	now := testStart.Add(31 * time.Minute)
	est, err := EstimateTrip(trip, now, cfg)
	if err != nil {
		t.Fatalf("EstimateTrip: %v", err)
	}
	snap := BuildSnapshot(trip, est, nil, now, cfg)

	if snap.DistanceRemainingKm != 83.4 {
		t.Errorf("DistanceRemainingKm = %v, want 83.4", snap.DistanceRemainingKm)
	}
	if snap.Compass != "E" {
		t.Errorf("Compass = %q, want E", snap.Compass)
	}
	if snap.LastUpdateAgo != "1m ago" {
		t.Errorf("LastUpdateAgo = %q, want \"1m ago\"", snap.LastUpdateAgo)
	}
	if snap.Alerts == nil {
		t.Error("Alerts should never be nil in a snapshot")
	}
}

func TestSnapshotMarksStaleData(t *testing.T) {
	cfg := DefaultThresholds()
	trip, _ := NewTrackedTrip(3, 9, equatorRoute(), testStart, testStart.Add(2*time.Hour), 16)
	trip, _ = trip.Start(testStart)
	trip, err := trip.WithSample(testSample(0, 0.25, testStart.Add(time.Minute)), cfg)
	if err != nil {
		t.Fatalf("WithSample: %v", err)
	}

	fresh := testStart.Add(90 * time.Second)
	est, _ := EstimateTrip(trip, fresh, cfg)
	if snap := BuildSnapshot(trip, est, nil, fresh, cfg); snap.Stale {
		t.Error("snapshot marked stale 30s after the last sample")
	}

	quiet := testStart.Add(10 * time.Minute)
	est, _ = EstimateTrip(trip, quiet, cfg)
	if snap := BuildSnapshot(trip, est, nil, quiet, cfg); !snap.Stale {
		t.Error("snapshot not marked stale after the expected interval passed")
	}
}
