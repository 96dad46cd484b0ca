package tracking

import (
	"fmt"
	"math"
	"time"
)

// TripStatus is the lifecycle state of a tracked trip. Transitions are
// one-directional except the informational OnTime/Delayed pair, which
// oscillates freely as conditions change.
type TripStatus string

const (
	StatusScheduled  TripStatus = "scheduled"
	StatusInProgress TripStatus = "in_progress"
	StatusOnTime     TripStatus = "on_time"
	StatusDelayed    TripStatus = "delayed"
	StatusCompleted  TripStatus = "completed"
	StatusCancelled  TripStatus = "cancelled"
)

// Active reports whether the trip is underway and accepting telemetry.
// OnTime and Delayed are refinements of InProgress, not separate phases.
func (s TripStatus) Active() bool {
	switch s {
	case StatusInProgress, StatusOnTime, StatusDelayed:
		return true
	}
	return false
}

// Terminal reports whether the trip has reached an end state.
func (s TripStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// TrackedTrip is the live aggregate for one trip: its plan, the bounded
// window of recent samples, and the accumulated derived state. Values are
// advanced with WithSample rather than mutated, so the transition is a pure
// function testable without any transport or storage.
type TrackedTrip struct {
	ID        uint
	VehicleID uint
	Route     Route
	Status    TripStatus

	StartTime  time.Time
	PlannedETA time.Time

	// DistanceTraveledKm is monotonically non-decreasing while the trip is
	// underway.
	DistanceTraveledKm float64
	LastUpdate         time.Time

	// DataQuality carries the latest odometer/GPS disagreement note, empty
	// when readings agree.
	DataQuality string

	window sampleWindow
}

// NewTrackedTrip builds a trip in Scheduled state. The route must have at
// least one waypoint.
func NewTrackedTrip(id, vehicleID uint, route Route, start, plannedETA time.Time, windowSize int) (TrackedTrip, error) {
	if err := route.Validate(); err != nil {
		return TrackedTrip{}, err
	}
	return TrackedTrip{
		ID:         id,
		VehicleID:  vehicleID,
		Route:      route,
		Status:     StatusScheduled,
		StartTime:  start,
		PlannedETA: plannedETA,
		window:     newSampleWindow(windowSize),
	}, nil
}

// Latest returns the most recent accepted sample.
func (t TrackedTrip) Latest() (TelemetrySample, bool) {
	return t.window.latest()
}

// SampleCount returns the number of samples currently held in the window.
func (t TrackedTrip) SampleCount() int {
	return t.window.len()
}

// Samples returns the window contents oldest-first as a fresh slice.
func (t TrackedTrip) Samples() []TelemetrySample {
	out := make([]TelemetrySample, t.window.len())
	for i := range out {
		out[i] = t.window.at(i)
	}
	return out
}

// WithSample returns the trip advanced by one telemetry reading. The
// receiver is not modified. Rejections:
//   - ErrInvalidTripState when the trip is not underway
//   - ErrStaleSample when the sample predates the latest accepted one by
//     more than the clock-skew tolerance (a normal network-reorder outcome,
//     the caller discards and moves on)
//   - a validation error for non-finite or out-of-range readings
//
// A sample behind the latest but within the tolerance is accepted into the
// window at its timestamp-ordered position and excluded from distance
// accumulation, so the newest sample stays the newest.
func (t TrackedTrip) WithSample(s TelemetrySample, cfg Thresholds) (TrackedTrip, error) {
	if !t.Status.Active() {
		return t, fmt.Errorf("trip %d is %s: %w", t.ID, t.Status, ErrInvalidTripState)
	}
	if err := s.Validate(); err != nil {
		return t, err
	}

	prev, hasPrev := t.window.latest()
	if hasPrev && s.CapturedAt.Before(prev.CapturedAt.Add(-cfg.ClockSkewTolerance)) {
		return t, fmt.Errorf("sample at %s behind latest %s: %w",
			s.CapturedAt.Format(time.RFC3339), prev.CapturedAt.Format(time.RFC3339), ErrStaleSample)
	}

	next := t
	next.window = t.window.clone()

	if hasPrev && s.CapturedAt.Before(prev.CapturedAt) {
		// Inside the skew tolerance but behind the latest: keep it in the
		// window at its timestamp-ordered slot, and skip the distance
		// accumulator so the hop latest->sample is never charged as
		// travel. lastUpdate is already past this timestamp.
		next.window.insert(s)
		return next, nil
	}

	if hasPrev {
		segKm, note := segmentDistanceKm(prev, s, cfg)
		next.DistanceTraveledKm += segKm
		next.DataQuality = note
	}

	next.window.push(s)
	if s.CapturedAt.After(next.LastUpdate) {
		next.LastUpdate = s.CapturedAt
	}
	return next, nil
}

// segmentDistanceKm picks the distance contribution of one sample-to-sample
// hop. The odometer delta wins when it exists and sits within the
// plausibility slack of the haversine estimate; otherwise the GPS figure is
// used and the disagreement is noted, never fatal.
func segmentDistanceKm(prev, cur TelemetrySample, cfg Thresholds) (float64, string) {
	gpsKm := HaversineKm(prev.Latitude, prev.Longitude, cur.Latitude, cur.Longitude)

	odoDelta := cur.OdometerKm - prev.OdometerKm
	if prev.OdometerKm <= 0 || cur.OdometerKm <= 0 || odoDelta < 0 {
		return gpsKm, ""
	}

	if gpsKm > 0 && math.Abs(odoDelta-gpsKm)/gpsKm > cfg.OdometerSlack {
		return gpsKm, fmt.Sprintf("odometer delta %.2fkm disagrees with GPS estimate %.2fkm; using GPS", odoDelta, gpsKm)
	}
	return odoDelta, ""
}

// Start moves a Scheduled trip to InProgress.
func (t TrackedTrip) Start(at time.Time) (TrackedTrip, error) {
	if t.Status != StatusScheduled {
		return t, fmt.Errorf("trip %d is %s, not scheduled: %w", t.ID, t.Status, ErrInvalidTripState)
	}
	t.Status = StatusInProgress
	if !at.IsZero() {
		t.StartTime = at
	}
	return t, nil
}

// Finish moves an active trip to a terminal state. Terminal is terminal:
// completing a cancelled trip (or vice versa) is an error.
func (t TrackedTrip) Finish(status TripStatus) (TrackedTrip, error) {
	if !status.Terminal() {
		return t, fmt.Errorf("%s is not a terminal status: %w", status, ErrInvalidTripState)
	}
	if t.Status.Terminal() {
		return t, fmt.Errorf("trip %d already %s: %w", t.ID, t.Status, ErrInvalidTripState)
	}
	t.Status = status
	return t, nil
}
