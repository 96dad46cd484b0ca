package tracking

import "time"

// Estimate is the derived view of a trip's progress at one instant.
type Estimate struct {
	// Started is false until the first sample lands; the remaining fields
	// are zero in that case rather than an error.
	Started bool

	DistanceTraveledKm  float64
	DistanceRemainingKm float64
	AverageSpeedKmh     float64
	ETA                 time.Time
	Delayed             bool
	BehindBy            time.Duration

	HeadingDegrees float64
	Compass        string
}

// EstimateTrip recomputes the derived fields for a trip as of now.
//
// Distance remaining is great-circle to the destination waypoint, not along
// the polyline — road-network distance comes from an external planner and is
// out of scope here. Average speed is total distance over elapsed time, not
// a mean of instantaneous speeds, so sample density cannot bias it. The ETA
// divides by a floored speed to stay finite while the vehicle is stationary.
func EstimateTrip(t TrackedTrip, now time.Time, cfg Thresholds) (Estimate, error) {
	if err := t.Route.Validate(); err != nil {
		return Estimate{}, err
	}

	latest, ok := t.Latest()
	if !ok {
		return Estimate{}, nil // not yet started
	}

	dest := t.Route.Destination()
	remaining := HaversineKm(latest.Latitude, latest.Longitude, dest.Lat, dest.Lng)

	elapsed := latest.CapturedAt.Sub(t.StartTime)
	avg := 0.0
	if elapsed > 0 {
		avg = t.DistanceTraveledKm / elapsed.Hours()
	}

	speedForETA := avg
	if speedForETA < cfg.MinSpeedFloorKmh {
		speedForETA = cfg.MinSpeedFloorKmh
	}
	eta := now.Add(time.Duration(remaining / speedForETA * float64(time.Hour)))

	est := Estimate{
		Started:             true,
		DistanceTraveledKm:  t.DistanceTraveledKm,
		DistanceRemainingKm: remaining,
		AverageSpeedKmh:     avg,
		ETA:                 eta,
		HeadingDegrees:      latest.HeadingDegrees,
		Compass:             CompassLabel(latest.HeadingDegrees),
	}

	if !t.PlannedETA.IsZero() && eta.After(t.PlannedETA.Add(cfg.DelayGrace)) {
		est.Delayed = true
		est.BehindBy = eta.Sub(t.PlannedETA)
	}
	return est, nil
}

// scheduleStatus folds an estimate back into the informational status pair.
// Trips without samples keep their current status.
func scheduleStatus(t TrackedTrip, est Estimate) TripStatus {
	if !t.Status.Active() || !est.Started {
		return t.Status
	}
	if est.Delayed {
		return StatusDelayed
	}
	return StatusOnTime
}
