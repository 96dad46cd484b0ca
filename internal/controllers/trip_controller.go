package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fleettrack/internal/config"
	"fleettrack/internal/models"
	"fleettrack/internal/tracking"
)

type tripInput struct {
	VehicleID  uint      `json:"vehicle_id" binding:"required"`
	DriverID   uint      `json:"driver_id"`
	RouteID    uint      `json:"route_id" binding:"required"`
	StartTime  time.Time `json:"start_time" binding:"required"`
	PlannedETA time.Time `json:"planned_eta" binding:"required"`
}

// CreateTrip schedules a trip and registers it with the tracking core. The
// route must already exist and carry at least one waypoint.
func CreateTrip(c *gin.Context) {
	var input tripInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trip input: " + err.Error()})
		return
	}

	var route models.Route
	if err := config.DB.Preload("Waypoints").First(&route, input.RouteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error fetching route"})
		return
	}

	coreRoute, err := trackingRoute(route)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Route has no waypoints; re-plan it before scheduling trips"})
		return
	}

	var vehicle models.Vehicle
	if err := config.DB.First(&vehicle, input.VehicleID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	trip := models.Trip{
		VehicleID:  input.VehicleID,
		DriverID:   input.DriverID,
		RouteID:    input.RouteID,
		Status:     string(tracking.StatusScheduled),
		StartTime:  input.StartTime,
		PlannedETA: input.PlannedETA,
	}
	if err := config.DB.Create(&trip).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create trip: " + err.Error()})
		return
	}

	if err := tracker.Register(trip.ID, trip.VehicleID, coreRoute, trip.StartTime, trip.PlannedETA); err != nil {
		logrus.WithError(err).WithField("trip_id", trip.ID).Error("Trip saved but tracking registration failed.")
	}

	c.JSON(http.StatusCreated, gin.H{"trip": trip})
}

func ListTrips(c *gin.Context) {
	var trips []models.Trip
	q := config.DB.Preload("Route").Order("start_time DESC")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&trips).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing trips: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": trips})
}

func GetTrip(c *gin.Context) {
	id := c.Param("id")

	var trip models.Trip
	if err := config.DB.Preload("Route.Waypoints").Preload("Vehicle").First(&trip, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trip": trip})
}

// StartTrip moves a scheduled trip into execution; telemetry is accepted
// from this point on.
func StartTrip(c *gin.Context) {
	trip, ok := loadTrip(c)
	if !ok {
		return
	}

	now := time.Now().UTC()
	if err := tracker.Start(trip.ID, now); err != nil {
		respondTrackingError(c, err)
		return
	}

	trip.Status = string(tracking.StatusInProgress)
	trip.StartedAt = &now
	if err := config.DB.Save(&trip).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update trip: " + err.Error()})
		return
	}

	logrus.WithField("trip_id", trip.ID).Info("Trip started.")
	c.JSON(http.StatusOK, gin.H{"trip": trip})
}

// CompleteTrip is terminal: further telemetry for the trip is rejected and
// the final distance figure is written back to the trip row.
func CompleteTrip(c *gin.Context) {
	finishTrip(c, tracking.StatusCompleted)
}

// CancelTrip is terminal, like CompleteTrip.
func CancelTrip(c *gin.Context) {
	finishTrip(c, tracking.StatusCancelled)
}

func finishTrip(c *gin.Context, status tracking.TripStatus) {
	trip, ok := loadTrip(c)
	if !ok {
		return
	}

	// Grab the final snapshot before the terminal transition stops
	// estimation for good.
	var traveled float64
	if snap, err := tracker.Snapshot(trip.ID); err == nil {
		traveled = snap.DistanceTraveledKm
	}

	var err error
	if status == tracking.StatusCompleted {
		err = tracker.Complete(trip.ID)
	} else {
		err = tracker.Cancel(trip.ID)
	}
	if err != nil {
		respondTrackingError(c, err)
		return
	}

	now := time.Now().UTC()
	trip.Status = string(status)
	trip.EndedAt = &now
	if traveled > trip.DistanceTraveledKm {
		trip.DistanceTraveledKm = traveled
	}
	if err := config.DB.Save(&trip).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update trip: " + err.Error()})
		return
	}

	logrus.WithFields(logrus.Fields{
		"trip_id":     trip.ID,
		"status":      trip.Status,
		"traveled_km": trip.DistanceTraveledKm,
	}).Info("Trip finished.")
	c.JSON(http.StatusOK, gin.H{"trip": trip})
}

func loadTrip(c *gin.Context) (models.Trip, bool) {
	var trip models.Trip
	if err := config.DB.First(&trip, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		return trip, false
	}
	return trip, true
}

// respondTrackingError maps the core's error taxonomy onto HTTP statuses.
func respondTrackingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tracking.ErrTripNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, tracking.ErrInvalidTripState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, tracking.ErrInvalidRoute):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, tracking.ErrStaleSample):
		// Expected under network reordering; the sample is simply dropped.
		c.JSON(http.StatusAccepted, gin.H{"status": "stale_discarded"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
