package models

import "gorm.io/gorm"

// Route is the planned path a trip executes. Geometry holds the full
// planner polyline as WKB (exchanged as GeoJSON at the API boundary);
// Waypoints are the coarse ordered points the tracking core estimates
// against.
type Route struct {
	gorm.Model

	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`

	PlannedDistanceKm   float64 `json:"planned_distance_km"`
	PlannedDurationMin  float64 `json:"planned_duration_min"`
	DeviationThresholdM float64 `json:"deviation_threshold_m"`

	// Planner LINESTRING stored as WKB; provide GeoJSON when creating.
	Geometry []byte `gorm:"type:bytea" json:"-"`

	Waypoints []Waypoint `gorm:"foreignKey:RouteID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"waypoints,omitempty"`
	Trips     []Trip     `gorm:"foreignKey:RouteID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"trips,omitempty"`
}
