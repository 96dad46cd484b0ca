package models

import "gorm.io/gorm"

// Waypoint is one ordered point along a route; Seq indicates order.
type Waypoint struct {
	gorm.Model

	RouteID uint    `json:"route_id" gorm:"index"`
	Seq     int     `json:"seq" binding:"required"`
	Name    string  `json:"name"`
	Lat     float64 `json:"lat" binding:"required"`
	Lng     float64 `json:"lng" binding:"required"`
}
