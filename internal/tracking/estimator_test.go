package tracking

import (
	"errors"
	"math"
	"testing"
	"time"
)

// equatorRoute runs 1 degree east along the equator, ~111.19 km.
func equatorRoute() Route {
	return Route{
		Waypoints: []Waypoint{
			{Lat: 0, Lng: 0, Name: "Origin"},
			{Lat: 0, Lng: 1, Name: "Destination"},
		},
		PlannedDistanceKm:  111.2,
		PlannedDurationMin: 120,
	}
}

func TestEstimateNotYetStarted(t *testing.T) {
	trip, err := NewTrackedTrip(1, 7, equatorRoute(), testStart, testStart.Add(2*time.Hour), 16)
	if err != nil {
		t.Fatalf("NewTrackedTrip: %v", err)
	}

	est, err := EstimateTrip(trip, testStart, DefaultThresholds())
	if err != nil {
		t.Fatalf("EstimateTrip: %v", err)
	}
	if est.Started {
		t.Error("estimate reports started with no samples")
	}
}

func TestEstimateInvalidRoute(t *testing.T) {
	trip := TrackedTrip{ID: 1, Status: StatusInProgress}
	if _, err := EstimateTrip(trip, testStart, DefaultThresholds()); !errors.Is(err, ErrInvalidRoute) {
		t.Fatalf("expected ErrInvalidRoute, got %v", err)
	}
}

// driveHalfway puts the vehicle at the route midpoint one hour in, giving a
// clean 55.6 km/h average with 55.6 km remaining.
func driveHalfway(t *testing.T, plannedETA time.Time) (TrackedTrip, time.Time) {
	t.Helper()
	trip, err := NewTrackedTrip(1, 7, equatorRoute(), testStart, plannedETA, 16)
	if err != nil {
		t.Fatalf("NewTrackedTrip: %v", err)
	}
	trip, _ = trip.Start(testStart)
	cfg := DefaultThresholds()

	for i, lng := range []float64{0, 0.25, 0.5} {
		s := testSample(0, lng, testStart.Add(time.Duration(i)*30*time.Minute))
		trip, err = trip.WithSample(s, cfg)
		if err != nil {
			t.Fatalf("sample %d: %v", i, err)
		}
	}
	return trip, testStart.Add(time.Hour)
}

func TestEstimateDerivedFields(t *testing.T) {
	trip, now := driveHalfway(t, testStart.Add(2*time.Hour))

	est, err := EstimateTrip(trip, now, DefaultThresholds())
	if err != nil {
		t.Fatalf("EstimateTrip: %v", err)
	}
	if !est.Started {
		t.Fatal("estimate not started")
	}

	halfDeg := HaversineKm(0, 0, 0, 0.5)
	if math.Abs(est.DistanceTraveledKm-halfDeg) > 0.01 {
		t.Errorf("DistanceTraveledKm = %v, want %v", est.DistanceTraveledKm, halfDeg)
	}
	if math.Abs(est.DistanceRemainingKm-halfDeg) > 0.01 {
		t.Errorf("DistanceRemainingKm = %v, want %v", est.DistanceRemainingKm, halfDeg)
	}
	if math.Abs(est.AverageSpeedKmh-halfDeg) > 0.01 {
		t.Errorf("AverageSpeedKmh = %v, want %v", est.AverageSpeedKmh, halfDeg)
	}

	// Remaining half at the same pace: ETA one hour out.
	wantETA := now.Add(time.Hour)
	if diff := est.ETA.Sub(wantETA); diff < -time.Minute || diff > time.Minute {
		t.Errorf("ETA = %v, want ~%v", est.ETA, wantETA)
	}
}

func TestDelayDetermination(t *testing.T) {
	tests := []struct {
		name        string
		plannedETA  time.Time
		wantDelayed bool
	}{
		// Computed ETA lands ~2h after start. 10 minutes over plan is
		// inside the 15-minute grace; 20 minutes over is not.
		{"10 minutes over grace window", testStart.Add(2*time.Hour - 10*time.Minute), false},
		{"20 minutes over grace window", testStart.Add(2*time.Hour - 20*time.Minute), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trip, now := driveHalfway(t, tt.plannedETA)
			est, err := EstimateTrip(trip, now, DefaultThresholds())
			if err != nil {
				t.Fatalf("EstimateTrip: %v", err)
			}
			if est.Delayed != tt.wantDelayed {
				t.Errorf("Delayed = %v, want %v (ETA %v, planned %v)",
					est.Delayed, tt.wantDelayed, est.ETA, tt.plannedETA)
			}

			wantStatus := StatusOnTime
			if tt.wantDelayed {
				wantStatus = StatusDelayed
			}
			if got := scheduleStatus(trip, est); got != wantStatus {
				t.Errorf("scheduleStatus = %v, want %v", got, wantStatus)
			}
		})
	}
}

func TestStatusOscillatesBetweenOnTimeAndDelayed(t *testing.T) {
	trip, now := driveHalfway(t, testStart.Add(2*time.Hour-20*time.Minute))
	cfg := DefaultThresholds()

	est, _ := EstimateTrip(trip, now, cfg)
	trip.Status = scheduleStatus(trip, est)
	if trip.Status != StatusDelayed {
		t.Fatalf("status = %v, want delayed", trip.Status)
	}

	// The vehicle speeds up: 30 minutes later it is nearly at the
	// destination, so the computed ETA comes back inside the grace.
	s := testSample(0, 0.99, now.Add(30*time.Minute))
	trip, err := trip.WithSample(s, cfg)
	if err != nil {
		t.Fatalf("WithSample: %v", err)
	}
	est, _ = EstimateTrip(trip, now.Add(30*time.Minute), cfg)
	trip.Status = scheduleStatus(trip, est)
	if trip.Status != StatusOnTime {
		t.Errorf("status = %v, want on_time after recovery (ETA %v)", trip.Status, est.ETA)
	}
}

func TestETAUsesSpeedFloorWhenStationary(t *testing.T) {
	trip, err := NewTrackedTrip(1, 7, equatorRoute(), testStart, testStart.Add(2*time.Hour), 16)
	if err != nil {
		t.Fatalf("NewTrackedTrip: %v", err)
	}
	trip, _ = trip.Start(testStart)
	cfg := DefaultThresholds()

	// Two samples at the origin, no movement: average speed is zero.
	for i := 0; i < 2; i++ {
		s := testSample(0, 0, testStart.Add(time.Duration(i)*time.Minute))
		s.SpeedKmh = 0
		trip, err = trip.WithSample(s, cfg)
		if err != nil {
			t.Fatalf("sample %d: %v", i, err)
		}
	}

	now := testStart.Add(2 * time.Minute)
	est, err := EstimateTrip(trip, now, cfg)
	if err != nil {
		t.Fatalf("EstimateTrip: %v", err)
	}

	// 111.19 km at the 5 km/h floor: ~22.2 hours out, but finite.
	remaining := est.ETA.Sub(now)
	wantHours := est.DistanceRemainingKm / cfg.MinSpeedFloorKmh
	if math.Abs(remaining.Hours()-wantHours) > 0.1 {
		t.Errorf("ETA horizon = %vh, want ~%vh", remaining.Hours(), wantHours)
	}
}
