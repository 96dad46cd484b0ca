package tracking

import (
	"fmt"
	"time"
)

// AlertKind classifies a threshold breach.
type AlertKind string

const (
	AlertLowFuel        AlertKind = "low_fuel"
	AlertRouteDeviation AlertKind = "route_deviation"
	AlertVehicleStalled AlertKind = "vehicle_stalled"
	AlertBehindSchedule AlertKind = "behind_schedule"
	AlertCustom         AlertKind = "custom"
)

// Severity grades an alert.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is a derived, non-persistent fact: what is true about a trip right
// now. Alerts are recomputed whole on every evaluation pass, never
// accumulated, so there is no stale-alert drift to manage. Deduplication
// across passes, if wanted, belongs to the consumer.
type Alert struct {
	TripID   uint      `json:"trip_id"`
	Kind     AlertKind `json:"kind"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	RaisedAt time.Time `json:"raised_at"`
}

// EvaluateAlerts scans one trip's current state against the thresholds and
// returns every rule that fires. Rules are independent; zero or more may
// fire per pass.
func EvaluateAlerts(t TrackedTrip, est Estimate, cfg Thresholds, now time.Time) []Alert {
	var alerts []Alert

	latest, ok := t.Latest()
	if !ok || !t.Status.Active() {
		return alerts
	}

	if a, fired := lowFuelAlert(t, latest, cfg, now); fired {
		alerts = append(alerts, a)
	}
	if a, fired := stalledAlert(t, latest, cfg, now); fired {
		alerts = append(alerts, a)
	}
	if a, fired := deviationAlert(t, latest, cfg, now); fired {
		alerts = append(alerts, a)
	}
	if a, fired := behindScheduleAlert(t, est, cfg, now); fired {
		alerts = append(alerts, a)
	}
	return alerts
}

func lowFuelAlert(t TrackedTrip, latest TelemetrySample, cfg Thresholds, now time.Time) (Alert, bool) {
	if latest.FuelLevelPercent == nil {
		return Alert{}, false
	}
	fuel := *latest.FuelLevelPercent
	if fuel >= cfg.FuelWarnPercent {
		return Alert{}, false
	}
	sev := SeverityWarning
	if fuel < cfg.FuelCriticalPercent {
		sev = SeverityCritical
	}
	return Alert{
		TripID:   t.ID,
		Kind:     AlertLowFuel,
		Severity: sev,
		Message:  fmt.Sprintf("fuel level at %.0f%%", fuel),
		RaisedAt: now,
	}, true
}

// stalledAlert looks for a contiguous near-zero-speed run ending at the
// latest sample. A stalled vehicle stops producing meaningfully new samples,
// so when the latest reading is stationary the run is extended to now — this
// lets the periodic tick catch a stall even with no fresh telemetry.
func stalledAlert(t TrackedTrip, latest TelemetrySample, cfg Thresholds, now time.Time) (Alert, bool) {
	if latest.SpeedKmh > cfg.StallSpeedKmh {
		return Alert{}, false
	}

	runStart := latest.CapturedAt
	for i := t.window.len() - 2; i >= 0; i-- {
		s := t.window.at(i)
		if s.SpeedKmh > cfg.StallSpeedKmh {
			break
		}
		runStart = s.CapturedAt
	}

	runEnd := latest.CapturedAt
	if now.After(runEnd) {
		runEnd = now
	}
	stalledFor := runEnd.Sub(runStart)
	if stalledFor < cfg.StallDuration {
		return Alert{}, false
	}
	return Alert{
		TripID:   t.ID,
		Kind:     AlertVehicleStalled,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf("vehicle stationary for %s", stalledFor.Round(time.Minute)),
		RaisedAt: now,
	}, true
}

func deviationAlert(t TrackedTrip, latest TelemetrySample, cfg Thresholds, now time.Time) (Alert, bool) {
	if t.Route.Validate() != nil {
		return Alert{}, false
	}
	threshold := t.Route.DeviationThresholdM
	if threshold <= 0 {
		threshold = cfg.DeviationMeters
	}
	dist := t.Route.DeviationMeters(latest.Latitude, latest.Longitude)
	if dist <= threshold {
		return Alert{}, false
	}
	return Alert{
		TripID:   t.ID,
		Kind:     AlertRouteDeviation,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf("vehicle %.0fm off planned route (threshold %.0fm)", dist, threshold),
		RaisedAt: now,
	}, true
}

func behindScheduleAlert(t TrackedTrip, est Estimate, cfg Thresholds, now time.Time) (Alert, bool) {
	if !est.Started || !est.Delayed {
		return Alert{}, false
	}
	sev := SeverityWarning
	if est.BehindBy >= cfg.DelayCritical {
		sev = SeverityCritical
	}
	return Alert{
		TripID:   t.ID,
		Kind:     AlertBehindSchedule,
		Severity: sev,
		Message:  fmt.Sprintf("running %s behind schedule", est.BehindBy.Round(time.Minute)),
		RaisedAt: now,
	}, true
}
