package models

import (
	"time"

	"gorm.io/gorm"
)

// Trip is the persistence record of a planned vehicle movement. Live
// derived state (ETA, alerts, progress) is owned by the tracking core, not
// this row; only coarse lifecycle fields and the final distance figure are
// written back.
type Trip struct {
	gorm.Model

	VehicleID uint `json:"vehicle_id" gorm:"index"`
	DriverID  uint `json:"driver_id" gorm:"index"`
	RouteID   uint `json:"route_id" gorm:"index"`

	Route   Route   `gorm:"foreignKey:RouteID" json:"route,omitempty"`
	Vehicle Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`

	Status     string     `json:"status" gorm:"index;default:scheduled"`
	StartTime  time.Time  `json:"start_time"`
	PlannedETA time.Time  `json:"planned_eta"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`

	DistanceTraveledKm float64 `json:"distance_traveled_km"`
}
