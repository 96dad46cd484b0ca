package tracking

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func newTestTracker(now time.Time) *Tracker {
	tk := NewTracker(DefaultThresholds())
	tk.nowFunc = func() time.Time { return now }
	return tk
}

func TestTrackerIngestFlow(t *testing.T) {
	now := testStart.Add(31 * time.Minute)
	tk := newTestTracker(now)

	if err := tk.Register(1, 7, equatorRoute(), testStart, testStart.Add(2*time.Hour)); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Telemetry before the trip starts is refused.
	if _, err := tk.Ingest(1, testSample(0, 0, testStart)); !errors.Is(err, ErrInvalidTripState) {
		t.Fatalf("ingest before start: expected ErrInvalidTripState, got %v", err)
	}

	if err := tk.Start(1, testStart); err != nil {
		t.Fatalf("Start: %v", err)
	}

	snap, err := tk.Ingest(1, testSample(0, 0, testStart))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if !snap.Started || snap.TripID != 1 || snap.VehicleID != 7 {
		t.Errorf("snapshot identity wrong: %+v", snap)
	}

	snap, err = tk.Ingest(1, testSample(0, 0.25, testStart.Add(30*time.Minute)))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if snap.DistanceTraveledKm != 27.8 {
		t.Errorf("DistanceTraveledKm = %v, want 27.8", snap.DistanceTraveledKm)
	}
	if snap.Status != StatusOnTime && snap.Status != StatusDelayed {
		t.Errorf("status = %v, want an informational schedule status", snap.Status)
	}
}

func TestTrackerUnknownTrip(t *testing.T) {
	tk := newTestTracker(testStart)
	if _, err := tk.Ingest(99, testSample(0, 0, testStart)); !errors.Is(err, ErrTripNotFound) {
		t.Errorf("Ingest: expected ErrTripNotFound, got %v", err)
	}
	if _, err := tk.Snapshot(99); !errors.Is(err, ErrTripNotFound) {
		t.Errorf("Snapshot: expected ErrTripNotFound, got %v", err)
	}
}

func TestTrackerRejectsEmptyRoute(t *testing.T) {
	tk := newTestTracker(testStart)
	if err := tk.Register(1, 7, Route{}, testStart, testStart.Add(time.Hour)); !errors.Is(err, ErrInvalidRoute) {
		t.Errorf("expected ErrInvalidRoute, got %v", err)
	}
}

func TestTrackerTerminalStates(t *testing.T) {
	now := testStart.Add(time.Minute)
	tk := newTestTracker(now)

	mustRegisterAndStart(t, tk, 1)
	if _, err := tk.Ingest(1, testSample(0, 0, testStart)); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if err := tk.Complete(1); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, err := tk.Ingest(1, testSample(0, 0.1, testStart.Add(time.Minute))); !errors.Is(err, ErrInvalidTripState) {
		t.Errorf("ingest after completion: expected ErrInvalidTripState, got %v", err)
	}
	if err := tk.Cancel(1); !errors.Is(err, ErrInvalidTripState) {
		t.Errorf("cancel after completion: expected ErrInvalidTripState, got %v", err)
	}
}

func TestActiveSnapshotsSkipsFinishedTrips(t *testing.T) {
	now := testStart.Add(time.Minute)
	tk := newTestTracker(now)

	mustRegisterAndStart(t, tk, 1)
	mustRegisterAndStart(t, tk, 2)
	if err := tk.Register(3, 7, equatorRoute(), testStart, testStart.Add(2*time.Hour)); err != nil {
		t.Fatalf("Register 3: %v", err)
	}

	if err := tk.Cancel(2); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	snaps := tk.ActiveSnapshots()
	if len(snaps) != 1 {
		t.Fatalf("ActiveSnapshots returned %d trips, want 1 (in-progress only)", len(snaps))
	}
	if snaps[0].TripID != 1 {
		t.Errorf("active trip = %d, want 1", snaps[0].TripID)
	}
}

func TestConfigureTripThresholdsOverridesGlobal(t *testing.T) {
	now := testStart.Add(6 * time.Minute)
	tk := newTestTracker(now)
	mustRegisterAndStart(t, tk, 1)

	// Stationary from the start; five minutes in, the stock 10-minute
	// stall window has not elapsed.
	s := testSample(0, 0.1, testStart)
	s.SpeedKmh = 0
	if _, err := tk.Ingest(1, s); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	snap, err := tk.Snapshot(1)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(alertsOfKind(snap.Alerts, AlertVehicleStalled)) != 0 {
		t.Fatal("stall fired before the global threshold elapsed")
	}

	// Tighten just this trip to a 5-minute stall window.
	override := DefaultThresholds()
	override.StallDuration = 5 * time.Minute
	if err := tk.ConfigureTripThresholds(1, override); err != nil {
		t.Fatalf("ConfigureTripThresholds: %v", err)
	}

	snap, err = tk.Snapshot(1)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(alertsOfKind(snap.Alerts, AlertVehicleStalled)) != 1 {
		t.Error("stall did not fire under the per-trip override")
	}
}

func TestConfigureThresholdsNormalizesZeroFields(t *testing.T) {
	tk := newTestTracker(testStart)
	tk.ConfigureThresholds(Thresholds{FuelWarnPercent: 40})

	cfg := tk.Thresholds()
	if cfg.FuelWarnPercent != 40 {
		t.Errorf("FuelWarnPercent = %v, want 40", cfg.FuelWarnPercent)
	}
	if cfg.StallDuration != DefaultThresholds().StallDuration {
		t.Errorf("unset StallDuration = %v, want default", cfg.StallDuration)
	}
}

func TestTrackerParallelTripsIndependent(t *testing.T) {
	now := testStart.Add(time.Hour)
	tk := newTestTracker(now)

	const trips = 8
	for id := uint(1); id <= trips; id++ {
		mustRegisterAndStart(t, tk, id)
	}

	var wg sync.WaitGroup
	for id := uint(1); id <= trips; id++ {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s := testSample(0, float64(i)*0.001, testStart.Add(time.Duration(i)*time.Second))
				if _, err := tk.Ingest(id, s); err != nil {
					t.Errorf("trip %d sample %d: %v", id, i, err)
					return
				}
			}
		}(id)
	}
	wg.Wait()

	want := HaversineKm(0, 0, 0, 0.049)
	for id := uint(1); id <= trips; id++ {
		snap, err := tk.Snapshot(id)
		if err != nil {
			t.Fatalf("Snapshot %d: %v", id, err)
		}
		if snap.DistanceTraveledKm != round1(want) {
			t.Errorf("trip %d traveled %v, want %v", id, snap.DistanceTraveledKm, round1(want))
		}
	}
}

func TestTrackerResume(t *testing.T) {
	now := testStart.Add(time.Hour)
	tk := newTestTracker(now)

	if err := tk.Resume(5, 7, equatorRoute(), testStart, testStart.Add(2*time.Hour), 40); err != nil {
		t.Fatalf("Resume: %v", err)
	}

	snap, err := tk.Ingest(5, testSample(0, 0.4, now))
	if err != nil {
		t.Fatalf("Ingest after resume: %v", err)
	}
	// Accumulation continues from the restored figure.
	if snap.DistanceTraveledKm != 40 {
		t.Errorf("DistanceTraveledKm = %v, want 40", snap.DistanceTraveledKm)
	}
}

func mustRegisterAndStart(t *testing.T, tk *Tracker, id uint) {
	t.Helper()
	if err := tk.Register(id, 7, equatorRoute(), testStart, testStart.Add(2*time.Hour)); err != nil {
		t.Fatalf("Register %d: %v", id, err)
	}
	if err := tk.Start(id, testStart); err != nil {
		t.Fatalf("Start %d: %v", id, err)
	}
}
