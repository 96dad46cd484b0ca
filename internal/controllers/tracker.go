package controllers

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"fleettrack/internal/config"
	"fleettrack/internal/models"
	"fleettrack/internal/tracking"
)

// tracker is the shared live-tracking core. InitTracker must run after
// config.InitDB and before the router starts serving.
var tracker *tracking.Tracker

// InitTracker builds the core with the environment-derived thresholds and
// reloads any trips that were underway when the service last stopped.
func InitTracker(cfg tracking.Thresholds) *tracking.Tracker {
	tracker = tracking.NewTracker(cfg)
	resumeActiveTrips()
	return tracker
}

// Tracker exposes the core to the periodic tick in main.
func Tracker() *tracking.Tracker {
	return tracker
}

// resumeActiveTrips re-registers in-progress trips from the database so a
// restart does not drop live tracking. The sample window starts empty; the
// accumulated distance is restored from the trip row.
func resumeActiveTrips() {
	var trips []models.Trip
	if err := config.DB.Preload("Route.Waypoints").
		Where("status IN ?", []string{
			string(tracking.StatusInProgress),
			string(tracking.StatusOnTime),
			string(tracking.StatusDelayed),
		}).Find(&trips).Error; err != nil {
		logrus.WithError(err).Error("Failed to load in-progress trips for tracking resume.")
		return
	}

	for _, trip := range trips {
		route, err := trackingRoute(trip.Route)
		if err != nil {
			logrus.WithError(err).WithField("trip_id", trip.ID).Warn("Skipping trip with unusable route on resume.")
			continue
		}
		if err := tracker.Resume(trip.ID, trip.VehicleID, route, trip.StartTime, trip.PlannedETA, trip.DistanceTraveledKm); err != nil {
			logrus.WithError(err).WithField("trip_id", trip.ID).Warn("Failed to resume trip tracking.")
			continue
		}
		logrus.WithFields(logrus.Fields{
			"trip_id":     trip.ID,
			"vehicle_id":  trip.VehicleID,
			"traveled_km": trip.DistanceTraveledKm,
		}).Info("Resumed live tracking for in-progress trip.")
	}
}

// trackingRoute converts a persisted route into the core's value type,
// waypoints ordered by sequence.
func trackingRoute(route models.Route) (tracking.Route, error) {
	if len(route.Waypoints) == 0 {
		return tracking.Route{}, fmt.Errorf("route %d has no waypoints: %w", route.ID, tracking.ErrInvalidRoute)
	}

	waypoints := make([]models.Waypoint, len(route.Waypoints))
	copy(waypoints, route.Waypoints)
	sort.Slice(waypoints, func(i, j int) bool { return waypoints[i].Seq < waypoints[j].Seq })

	out := tracking.Route{
		PlannedDistanceKm:   route.PlannedDistanceKm,
		PlannedDurationMin:  route.PlannedDurationMin,
		DeviationThresholdM: route.DeviationThresholdM,
	}
	for _, w := range waypoints {
		out.Waypoints = append(out.Waypoints, tracking.Waypoint{Lat: w.Lat, Lng: w.Lng, Name: w.Name})
	}
	return out, nil
}
