package models

import (
	"time"

	"gorm.io/gorm"
)

// TelemetryRecord is the append-only history of accepted samples, kept for
// after-the-fact review. The live tracking window is separate and bounded.
type TelemetryRecord struct {
	gorm.Model
	TripID           uint      `json:"trip_id" gorm:"index"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	SpeedKmh         float64   `json:"speed_kmh"`
	HeadingDegrees   float64   `json:"heading_degrees"`
	FuelLevelPercent *float64  `json:"fuel_level_percent,omitempty"`
	OdometerKm       float64   `json:"odometer_km"`
	EngineTempC      *float64  `json:"engine_temp_c,omitempty"`
	DistanceFromLast float64   `json:"distance_from_last"` // km from previous accepted sample
	CapturedAt       time.Time `json:"captured_at" gorm:"index"`
}
