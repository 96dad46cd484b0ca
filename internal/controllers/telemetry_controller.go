package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fleettrack/internal/config"
	"fleettrack/internal/models"
	"fleettrack/internal/tracking"
)

// telemetryInput is the wire form of one sample. Timestamp parsing is
// tolerant of device firmware that omits the timezone suffix.
type telemetryInput struct {
	TripID           uint      `json:"trip_id"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	SpeedKmh         float64   `json:"speed_kmh"`
	HeadingDegrees   float64   `json:"heading_degrees"`
	FuelLevelPercent *float64  `json:"fuel_level_percent"`
	OdometerKm       float64   `json:"odometer_km"`
	EngineTempC      *float64  `json:"engine_temp_c"`
	CapturedAt       time.Time `json:"captured_at"`
}

// UnmarshalJSON accepts timestamps with or without a timezone suffix,
// assuming UTC when none is given.
func (in *telemetryInput) UnmarshalJSON(data []byte) error {
	type alias telemetryInput
	aux := &struct {
		CapturedAt string `json:"captured_at"`
		*alias
	}{alias: (*alias)(in)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	ts := aux.CapturedAt
	if ts == "" {
		return fmt.Errorf("captured_at is required")
	}
	if len(ts) > 6 && !(strings.HasSuffix(ts, "Z") || strings.ContainsAny(ts[len(ts)-6:], "+-")) {
		ts += "Z"
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return fmt.Errorf("invalid captured_at %q: %w", aux.CapturedAt, err)
	}
	in.CapturedAt = t
	return nil
}

func (in telemetryInput) sample() tracking.TelemetrySample {
	return tracking.TelemetrySample{
		TripID:           in.TripID,
		Latitude:         in.Latitude,
		Longitude:        in.Longitude,
		SpeedKmh:         in.SpeedKmh,
		HeadingDegrees:   in.HeadingDegrees,
		FuelLevelPercent: in.FuelLevelPercent,
		OdometerKm:       in.OdometerKm,
		EngineTempC:      in.EngineTempC,
		CapturedAt:       in.CapturedAt,
	}
}

// IngestTelemetry accepts one sample for an in-progress trip, runs the
// synchronous estimation pass, persists the accepted sample, and broadcasts
// the fresh snapshot to monitoring clients.
func IngestTelemetry(c *gin.Context) {
	var input telemetryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid telemetry payload: " + err.Error()})
		return
	}
	if input.TripID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "trip_id is required"})
		return
	}

	snap, err := ingestAndRecord(input)
	if err != nil {
		respondTrackingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"snapshot": snap})
}

// ingestAndRecord is shared by the REST and WebSocket ingestion paths.
func ingestAndRecord(input telemetryInput) (tracking.Snapshot, error) {
	prevTraveled := 0.0
	if prev, err := tracker.Snapshot(input.TripID); err == nil {
		prevTraveled = prev.DistanceTraveledKm
	}

	snap, err := tracker.Ingest(input.TripID, input.sample())
	if err != nil {
		return tracking.Snapshot{}, err
	}

	record := models.TelemetryRecord{
		TripID:           input.TripID,
		Latitude:         input.Latitude,
		Longitude:        input.Longitude,
		SpeedKmh:         input.SpeedKmh,
		HeadingDegrees:   input.HeadingDegrees,
		FuelLevelPercent: input.FuelLevelPercent,
		OdometerKm:       input.OdometerKm,
		EngineTempC:      input.EngineTempC,
		DistanceFromLast: snap.DistanceTraveledKm - prevTraveled,
		CapturedAt:       input.CapturedAt,
	}
	if err := config.DB.Create(&record).Error; err != nil {
		// The live state already advanced; history is best-effort.
		logrus.WithError(err).WithField("trip_id", input.TripID).Error("Failed to persist telemetry record.")
	}

	trackHub.PublishSnapshot(snap)
	return snap, nil
}

// GetTripTelemetry pages through a trip's persisted sample history.
func GetTripTelemetry(c *gin.Context) {
	tripID := c.Param("id")

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	offset := 0
	if raw := c.Query("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}

	var records []models.TelemetryRecord
	if err := config.DB.Where("trip_id = ?", tripID).
		Order("captured_at DESC").
		Limit(limit).Offset(offset).
		Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching telemetry: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}
