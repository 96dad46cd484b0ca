package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fleettrack/internal/tracking"
)

// ListTrackingSnapshots returns the live snapshot of every active trip for
// map/list rendering. Ordering is unspecified; the dashboard sorts.
func ListTrackingSnapshots(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": tracker.ActiveSnapshots()})
}

// GetTrackingSnapshot returns the live snapshot of one trip.
func GetTrackingSnapshot(c *gin.Context) {
	tripID, err := parseTripID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trip id"})
		return
	}

	snap, err := tracker.Snapshot(tripID)
	if err != nil {
		respondTrackingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshot": snap})
}

// thresholdsInput mirrors tracking.Thresholds with durations as strings
// ("5m", "45s") so the payload reads like the .env overrides.
type thresholdsInput struct {
	ClockSkewTolerance  string  `json:"clock_skew_tolerance"`
	FuelWarnPercent     float64 `json:"fuel_warn_percent"`
	FuelCriticalPercent float64 `json:"fuel_critical_percent"`
	StallSpeedKmh       float64 `json:"stall_speed_kmh"`
	StallDuration       string  `json:"stall_duration"`
	DeviationMeters     float64 `json:"deviation_meters"`
	MinSpeedFloorKmh    float64 `json:"min_speed_floor_kmh"`
	DelayGrace          string  `json:"delay_grace"`
	DelayCritical       string  `json:"delay_critical"`
	WindowSize          int     `json:"window_size"`
	StaleDataAfter      string  `json:"stale_data_after"`
	OdometerSlack       float64 `json:"odometer_slack"`
}

func (in thresholdsInput) thresholds() (tracking.Thresholds, error) {
	cfg := tracking.Thresholds{
		FuelWarnPercent:     in.FuelWarnPercent,
		FuelCriticalPercent: in.FuelCriticalPercent,
		StallSpeedKmh:       in.StallSpeedKmh,
		DeviationMeters:     in.DeviationMeters,
		MinSpeedFloorKmh:    in.MinSpeedFloorKmh,
		WindowSize:          in.WindowSize,
		OdometerSlack:       in.OdometerSlack,
	}
	for _, f := range []struct {
		raw string
		dst *time.Duration
	}{
		{in.ClockSkewTolerance, &cfg.ClockSkewTolerance},
		{in.StallDuration, &cfg.StallDuration},
		{in.DelayGrace, &cfg.DelayGrace},
		{in.DelayCritical, &cfg.DelayCritical},
		{in.StaleDataAfter, &cfg.StaleDataAfter},
	} {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return cfg, err
		}
		*f.dst = d
	}
	return cfg, nil
}

// ConfigureGlobalThresholds replaces the global alert/estimation tunables.
// Unset fields keep their defaults; changes apply from the next evaluation
// pass with no retroactive recompute.
func ConfigureGlobalThresholds(c *gin.Context) {
	var input thresholdsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid thresholds payload: " + err.Error()})
		return
	}
	cfg, err := input.thresholds()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid duration: " + err.Error()})
		return
	}

	tracker.ConfigureThresholds(cfg)
	logrus.WithField("actor_id", c.GetUint("user_id")).Info("Global tracking thresholds updated.")
	c.JSON(http.StatusOK, gin.H{"thresholds": tracker.Thresholds()})
}

// ConfigureTripThresholds sets a per-trip override shadowing the global set.
func ConfigureTripThresholds(c *gin.Context) {
	tripID, err := parseTripID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trip id"})
		return
	}

	var input thresholdsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid thresholds payload: " + err.Error()})
		return
	}
	cfg, err := input.thresholds()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid duration: " + err.Error()})
		return
	}

	if err := tracker.ConfigureTripThresholds(tripID, cfg); err != nil {
		respondTrackingError(c, err)
		return
	}
	logrus.WithFields(logrus.Fields{
		"trip_id":  tripID,
		"actor_id": c.GetUint("user_id"),
	}).Info("Per-trip tracking thresholds updated.")
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func parseTripID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return uint(id), err
}
