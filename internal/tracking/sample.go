package tracking

import (
	"fmt"
	"math"
	"time"
)

// TelemetrySample is one GPS/status reading for a trip. Samples are
// immutable once accepted and append-only per trip.
type TelemetrySample struct {
	TripID           uint      `json:"trip_id"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	SpeedKmh         float64   `json:"speed_kmh"`
	HeadingDegrees   float64   `json:"heading_degrees"`
	FuelLevelPercent *float64  `json:"fuel_level_percent,omitempty"`
	OdometerKm       float64   `json:"odometer_km"`
	EngineTempC      *float64  `json:"engine_temp_c,omitempty"`
	CapturedAt       time.Time `json:"captured_at"`
}

// Validate rejects malformed readings outright. These are hard failures —
// unlike stale delivery, a NaN coordinate means the device or transport is
// broken and the sample can never be used.
func (s TelemetrySample) Validate() error {
	for name, v := range map[string]float64{
		"latitude":        s.Latitude,
		"longitude":       s.Longitude,
		"speed_kmh":       s.SpeedKmh,
		"heading_degrees": s.HeadingDegrees,
		"odometer_km":     s.OdometerKm,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("telemetry sample: %s is not a finite number", name)
		}
	}
	if s.Latitude < -90 || s.Latitude > 90 {
		return fmt.Errorf("telemetry sample: latitude %v out of range [-90, 90]", s.Latitude)
	}
	if s.Longitude < -180 || s.Longitude > 180 {
		return fmt.Errorf("telemetry sample: longitude %v out of range [-180, 180]", s.Longitude)
	}
	if s.SpeedKmh < 0 {
		return fmt.Errorf("telemetry sample: speed %v cannot be negative", s.SpeedKmh)
	}
	if s.HeadingDegrees < 0 || s.HeadingDegrees > 360 {
		return fmt.Errorf("telemetry sample: heading %v out of range [0, 360]", s.HeadingDegrees)
	}
	if s.FuelLevelPercent != nil && (*s.FuelLevelPercent < 0 || *s.FuelLevelPercent > 100) {
		return fmt.Errorf("telemetry sample: fuel level %v out of range [0, 100]", *s.FuelLevelPercent)
	}
	if s.CapturedAt.IsZero() {
		return fmt.Errorf("telemetry sample: captured_at is required")
	}
	return nil
}
