package tracking

import (
	"fmt"
	"math"
	"time"
)

// Snapshot is the display-ready read model for one trip: everything a map
// or list view needs, assembled without side effects and recomputable at
// any time.
type Snapshot struct {
	TripID    uint       `json:"trip_id"`
	VehicleID uint       `json:"vehicle_id"`
	Status    TripStatus `json:"status"`

	Started   bool    `json:"started"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	SpeedKmh  float64 `json:"speed_kmh"`

	HeadingDegrees float64 `json:"heading_degrees"`
	Compass        string  `json:"compass"`

	DistanceTraveledKm  float64 `json:"distance_traveled_km"`
	DistanceRemainingKm float64 `json:"distance_remaining_km"`
	AverageSpeedKmh     float64 `json:"average_speed_kmh"`

	ETA        time.Time `json:"eta,omitzero"`
	PlannedETA time.Time `json:"planned_eta,omitzero"`

	LastUpdate    time.Time `json:"last_update,omitzero"`
	LastUpdateAgo string    `json:"last_update_ago"`
	Stale         bool      `json:"stale"`

	DataQuality string  `json:"data_quality,omitempty"`
	Alerts      []Alert `json:"alerts"`
}

// BuildSnapshot assembles the read model from a trip, its estimate, and the
// current alert list. Distances are rounded to one decimal kilometer for
// display.
func BuildSnapshot(t TrackedTrip, est Estimate, alerts []Alert, now time.Time, cfg Thresholds) Snapshot {
	snap := Snapshot{
		TripID:      t.ID,
		VehicleID:   t.VehicleID,
		Status:      t.Status,
		Started:     est.Started,
		PlannedETA:  t.PlannedETA,
		LastUpdate:  t.LastUpdate,
		DataQuality: t.DataQuality,
		Alerts:      alerts,
	}
	if alerts == nil {
		snap.Alerts = []Alert{}
	}

	if latest, ok := t.Latest(); ok {
		snap.Latitude = latest.Latitude
		snap.Longitude = latest.Longitude
		snap.SpeedKmh = latest.SpeedKmh
		snap.LastUpdateAgo = TimeAgo(t.LastUpdate, now)
		snap.Stale = t.Status.Active() && now.Sub(t.LastUpdate) > cfg.StaleDataAfter
	}

	if est.Started {
		snap.HeadingDegrees = est.HeadingDegrees
		snap.Compass = est.Compass
		snap.DistanceTraveledKm = round1(est.DistanceTraveledKm)
		snap.DistanceRemainingKm = round1(est.DistanceRemainingKm)
		snap.AverageSpeedKmh = round1(est.AverageSpeedKmh)
		snap.ETA = est.ETA
	}
	return snap
}

// TimeAgo renders a timestamp as a coarse relative label for list views.
func TimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
