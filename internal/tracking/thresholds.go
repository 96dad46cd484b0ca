package tracking

import "time"

// Thresholds collects every tunable the estimator and alert evaluator read.
// A Tracker carries one global set plus optional per-trip overrides; changes
// take effect on the next evaluation pass, never retroactively.
type Thresholds struct {
	// ClockSkewTolerance is how far a sample may lag the trip's latest
	// before it is discarded as stale.
	ClockSkewTolerance time.Duration `json:"clock_skew_tolerance"`

	// FuelWarnPercent / FuelCriticalPercent drive LowFuel severity.
	FuelWarnPercent     float64 `json:"fuel_warn_percent"`
	FuelCriticalPercent float64 `json:"fuel_critical_percent"`

	// StallSpeedKmh is the "effectively stationary" cutoff; StallDuration
	// is how long a contiguous near-zero run must last before
	// VehicleStalled fires.
	StallSpeedKmh float64       `json:"stall_speed_kmh"`
	StallDuration time.Duration `json:"stall_duration"`

	// DeviationMeters is the fallback route-deviation threshold for routes
	// that do not set their own.
	DeviationMeters float64 `json:"deviation_meters"`

	// MinSpeedFloorKmh keeps the ETA division sane while stationary.
	MinSpeedFloorKmh float64 `json:"min_speed_floor_kmh"`

	// DelayGrace is how far past the planned ETA the computed ETA may drift
	// before the trip reads Delayed; DelayCritical escalates BehindSchedule
	// severity.
	DelayGrace    time.Duration `json:"delay_grace"`
	DelayCritical time.Duration `json:"delay_critical"`

	// WindowSize caps the per-trip sample ring buffer.
	WindowSize int `json:"window_size"`

	// StaleDataAfter marks a snapshot stale when no sample has arrived
	// within this interval.
	StaleDataAfter time.Duration `json:"stale_data_after"`

	// OdometerSlack is the relative disagreement allowed between the
	// odometer delta and the GPS haversine estimate before the odometer
	// reading is distrusted.
	OdometerSlack float64 `json:"odometer_slack"`
}

// DefaultThresholds returns the stock configuration. The numbers are
// operational defaults, overridable globally or per trip.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ClockSkewTolerance:  5 * time.Second,
		FuelWarnPercent:     25,
		FuelCriticalPercent: 15,
		StallSpeedKmh:       1,
		StallDuration:       10 * time.Minute,
		DeviationMeters:     500,
		MinSpeedFloorKmh:    5,
		DelayGrace:          15 * time.Minute,
		DelayCritical:       30 * time.Minute,
		WindowSize:          240, // ~2h of history at a 30s sample cadence
		StaleDataAfter:      2 * time.Minute,
		OdometerSlack:       0.2,
	}
}

// normalize fills zero-valued fields from the defaults so a partial override
// payload never zeroes out a tunable.
func (t Thresholds) normalize() Thresholds {
	def := DefaultThresholds()
	if t.ClockSkewTolerance <= 0 {
		t.ClockSkewTolerance = def.ClockSkewTolerance
	}
	if t.FuelWarnPercent <= 0 {
		t.FuelWarnPercent = def.FuelWarnPercent
	}
	if t.FuelCriticalPercent <= 0 {
		t.FuelCriticalPercent = def.FuelCriticalPercent
	}
	if t.StallSpeedKmh <= 0 {
		t.StallSpeedKmh = def.StallSpeedKmh
	}
	if t.StallDuration <= 0 {
		t.StallDuration = def.StallDuration
	}
	if t.DeviationMeters <= 0 {
		t.DeviationMeters = def.DeviationMeters
	}
	if t.MinSpeedFloorKmh <= 0 {
		t.MinSpeedFloorKmh = def.MinSpeedFloorKmh
	}
	if t.DelayGrace <= 0 {
		t.DelayGrace = def.DelayGrace
	}
	if t.DelayCritical <= 0 {
		t.DelayCritical = def.DelayCritical
	}
	if t.WindowSize <= 0 {
		t.WindowSize = def.WindowSize
	}
	if t.StaleDataAfter <= 0 {
		t.StaleDataAfter = def.StaleDataAfter
	}
	if t.OdometerSlack <= 0 {
		t.OdometerSlack = def.OdometerSlack
	}
	return t
}
