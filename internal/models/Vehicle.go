package models

import "gorm.io/gorm"

type Vehicle struct {
	gorm.Model
	Registration string `json:"registration" gorm:"uniqueIndex"`
	Make         string `json:"make"`
	VehicleType  string `json:"vehicle_type"` // "truck", "van", "bus"
	DriverID     uint   `json:"driver_id"`
	InService    bool   `json:"in_service" gorm:"default:true"`

	Trips []Trip `gorm:"foreignKey:VehicleID" json:"trips,omitempty"`
}
