package tracking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Tracker owns the live state of every tracked trip. Each trip has a single
// logical writer: its entry mutex serializes ingestion and re-estimation, so
// concurrent samples for one trip are applied in capturedAt order and the
// distance accumulation stays correct. Different trips share nothing mutable
// and proceed fully in parallel.
type Tracker struct {
	mu      sync.RWMutex // guards the trips map and the global thresholds
	trips   map[uint]*tripEntry
	cfg     Thresholds
	nowFunc func() time.Time
}

type tripEntry struct {
	mu   sync.Mutex
	trip TrackedTrip
	// cfg is a per-trip threshold override, nil means use the global set.
	cfg *Thresholds
}

// NewTracker builds a Tracker with the given global thresholds; zero-valued
// fields fall back to the defaults.
func NewTracker(cfg Thresholds) *Tracker {
	return &Tracker{
		trips:   make(map[uint]*tripEntry),
		cfg:     cfg.normalize(),
		nowFunc: time.Now,
	}
}

// now is swapped out in tests.
func (tk *Tracker) now() time.Time {
	return tk.nowFunc()
}

// Register adds a trip in Scheduled state. The route is validated up front:
// an empty polyline is a configuration defect and the trip is refused.
func (tk *Tracker) Register(id, vehicleID uint, route Route, start, plannedETA time.Time) error {
	tk.mu.Lock()
	defer tk.mu.Unlock()

	if _, exists := tk.trips[id]; exists {
		return fmt.Errorf("trip %d already registered: %w", id, ErrInvalidTripState)
	}
	trip, err := NewTrackedTrip(id, vehicleID, route, start, plannedETA, tk.cfg.WindowSize)
	if err != nil {
		return err
	}
	tk.trips[id] = &tripEntry{trip: trip}
	return nil
}

// Start moves a registered trip to InProgress so it begins accepting
// telemetry.
func (tk *Tracker) Start(tripID uint, at time.Time) error {
	entry, err := tk.entry(tripID)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	trip, err := entry.trip.Start(at)
	if err != nil {
		return err
	}
	entry.trip = trip
	return nil
}

// Resume loads a trip that is already underway (service restart). The trip
// enters directly in InProgress with the given accumulated distance.
func (tk *Tracker) Resume(id, vehicleID uint, route Route, start, plannedETA time.Time, traveledKm float64) error {
	if err := tk.Register(id, vehicleID, route, start, plannedETA); err != nil {
		return err
	}
	entry, err := tk.entry(id)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.trip.Status = StatusInProgress
	entry.trip.DistanceTraveledKm = traveledKm
	return nil
}

// Ingest applies one telemetry sample and synchronously re-estimates the
// trip, returning the fresh snapshot. Expected rejections come back as
// wrapped sentinels (ErrStaleSample, ErrInvalidTripState); estimation and
// alerting never run on a rejected sample.
func (tk *Tracker) Ingest(tripID uint, sample TelemetrySample) (Snapshot, error) {
	entry, err := tk.entry(tripID)
	if err != nil {
		return Snapshot{}, err
	}
	cfg := tk.thresholdsFor(entry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	sample.TripID = tripID
	trip, err := entry.trip.WithSample(sample, cfg)
	if err != nil {
		return Snapshot{}, err
	}
	entry.trip = trip

	return tk.evaluateLocked(entry, cfg)
}

// Snapshot returns the current derived state and alerts for one trip.
func (tk *Tracker) Snapshot(tripID uint) (Snapshot, error) {
	entry, err := tk.entry(tripID)
	if err != nil {
		return Snapshot{}, err
	}
	cfg := tk.thresholdsFor(entry)

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return tk.evaluateLocked(entry, cfg)
}

// ActiveSnapshots returns a snapshot per trip that is currently underway.
// Ordering is unspecified; the display layer sorts as it needs.
func (tk *Tracker) ActiveSnapshots() []Snapshot {
	tk.mu.RLock()
	entries := make([]*tripEntry, 0, len(tk.trips))
	for _, e := range tk.trips {
		entries = append(entries, e)
	}
	tk.mu.RUnlock()

	snaps := make([]Snapshot, 0, len(entries))
	for _, entry := range entries {
		cfg := tk.thresholdsFor(entry)
		entry.mu.Lock()
		if entry.trip.Status.Active() {
			if snap, err := tk.evaluateLocked(entry, cfg); err == nil {
				snaps = append(snaps, snap)
			}
		}
		entry.mu.Unlock()
	}
	return snaps
}

// Complete moves a trip to its terminal Completed state. Further samples
// are rejected with ErrInvalidTripState.
func (tk *Tracker) Complete(tripID uint) error {
	return tk.finish(tripID, StatusCompleted)
}

// Cancel moves a trip to its terminal Cancelled state.
func (tk *Tracker) Cancel(tripID uint) error {
	return tk.finish(tripID, StatusCancelled)
}

func (tk *Tracker) finish(tripID uint, status TripStatus) error {
	entry, err := tk.entry(tripID)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	trip, err := entry.trip.Finish(status)
	if err != nil {
		return err
	}
	entry.trip = trip
	return nil
}

// ConfigureThresholds replaces the global threshold set. Takes effect on the
// next evaluation pass; nothing is recomputed retroactively.
func (tk *Tracker) ConfigureThresholds(cfg Thresholds) {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	tk.cfg = cfg.normalize()
}

// ConfigureTripThresholds sets a per-trip override, shadowing the global
// set for that trip only.
func (tk *Tracker) ConfigureTripThresholds(tripID uint, cfg Thresholds) error {
	entry, err := tk.entry(tripID)
	if err != nil {
		return err
	}
	normalized := cfg.normalize()

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.cfg = &normalized
	return nil
}

// Thresholds returns the current global threshold set.
func (tk *Tracker) Thresholds() Thresholds {
	tk.mu.RLock()
	defer tk.mu.RUnlock()
	return tk.cfg
}

// Run re-evaluates every active trip on a fixed cadence until the context
// is cancelled. The tick is what lets VehicleStalled and BehindSchedule
// fire for a vehicle that has gone quiet — a stalled vehicle, by
// definition, stops producing meaningfully new samples.
func (tk *Tracker) Run(ctx context.Context, interval time.Duration, onPass func([]Snapshot)) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logrus.WithField("interval", interval).Info("Tracking re-evaluation loop started.")
	for {
		select {
		case <-ctx.Done():
			logrus.Info("Tracking re-evaluation loop stopped.")
			return
		case <-ticker.C:
			snaps := tk.ActiveSnapshots()
			alerted := 0
			for _, s := range snaps {
				alerted += len(s.Alerts)
			}
			logrus.WithFields(logrus.Fields{
				"active_trips": len(snaps),
				"alerts":       alerted,
			}).Debug("Periodic trip re-evaluation pass completed.")
			if onPass != nil {
				onPass(snaps)
			}
		}
	}
}

// evaluateLocked runs estimation and alerting for an entry whose mutex is
// already held, folding the informational OnTime/Delayed status back onto
// the trip.
func (tk *Tracker) evaluateLocked(entry *tripEntry, cfg Thresholds) (Snapshot, error) {
	now := tk.now()

	est, err := EstimateTrip(entry.trip, now, cfg)
	if err != nil {
		return Snapshot{}, err
	}
	entry.trip.Status = scheduleStatus(entry.trip, est)

	alerts := EvaluateAlerts(entry.trip, est, cfg, now)
	return BuildSnapshot(entry.trip, est, alerts, now, cfg), nil
}

func (tk *Tracker) entry(tripID uint) (*tripEntry, error) {
	tk.mu.RLock()
	defer tk.mu.RUnlock()
	entry, ok := tk.trips[tripID]
	if !ok {
		return nil, fmt.Errorf("trip %d: %w", tripID, ErrTripNotFound)
	}
	return entry, nil
}

func (tk *Tracker) thresholdsFor(entry *tripEntry) Thresholds {
	entry.mu.Lock()
	override := entry.cfg
	entry.mu.Unlock()
	if override != nil {
		return *override
	}
	tk.mu.RLock()
	defer tk.mu.RUnlock()
	return tk.cfg
}
