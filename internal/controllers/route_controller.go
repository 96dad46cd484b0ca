package controllers

import (
	"encoding/binary"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fleettrack/internal/config"
	"fleettrack/internal/models"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// RouteResponse mirrors models.Route with Geometry as a GeoJSON string for
// API output.
type RouteResponse struct {
	ID                  uint              `json:"id"`
	Name                string            `json:"name"`
	Description         string            `json:"description"`
	PlannedDistanceKm   float64           `json:"planned_distance_km"`
	PlannedDurationMin  float64           `json:"planned_duration_min"`
	DeviationThresholdM float64           `json:"deviation_threshold_m"`
	Geometry            string            `json:"geometry,omitempty"`
	Waypoints           []models.Waypoint `json:"waypoints"`
}

func toRouteResponse(route models.Route) RouteResponse {
	jsonGeom, err := convertWKBToGeoJSON(route.Geometry)
	if err != nil {
		logrus.WithError(err).WithField("route_id", route.ID).Warn("Stored route geometry is not valid WKB.")
	}
	return RouteResponse{
		ID:                  route.ID,
		Name:                route.Name,
		Description:         route.Description,
		PlannedDistanceKm:   route.PlannedDistanceKm,
		PlannedDurationMin:  route.PlannedDurationMin,
		DeviationThresholdM: route.DeviationThresholdM,
		Geometry:            jsonGeom,
		Waypoints:           route.Waypoints,
	}
}

// parseAndConvertGeometry parses a GeoJSON string into a geom.T and returns WKB bytes
func parseAndConvertGeometry(raw string) ([]byte, error) {
	if raw == "" {
		return nil, nil
	}
	var g geom.T
	if err := gjson.Unmarshal([]byte(raw), &g); err != nil {
		return nil, err
	}
	return wkb.Marshal(g, binary.LittleEndian)
}

// convertWKBToGeoJSON converts WKB bytes into a GeoJSON string
func convertWKBToGeoJSON(wkbBytes []byte) (string, error) {
	if len(wkbBytes) == 0 {
		return "", nil
	}
	g, err := wkb.Unmarshal(wkbBytes)
	if err != nil {
		return "", err
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type routeInput struct {
	Name                string  `json:"name" binding:"required"`
	Description         string  `json:"description"`
	PlannedDistanceKm   float64 `json:"planned_distance_km"`
	PlannedDurationMin  float64 `json:"planned_duration_min"`
	DeviationThresholdM float64 `json:"deviation_threshold_m"`
	// Geometry is the planner's LINESTRING as GeoJSON.
	Geometry  string `json:"geometry"`
	Waypoints []struct {
		Name string  `json:"name"`
		Seq  int     `json:"seq"`
		Lat  float64 `json:"lat" binding:"required"`
		Lng  float64 `json:"lng" binding:"required"`
	} `json:"waypoints" binding:"required,min=1"`
}

// CreateRoute stores a planned route with its waypoints. The polyline comes
// from an external planner; a route needs at least one waypoint or the
// tracking core will refuse to estimate against it.
func CreateRoute(c *gin.Context) {
	var input routeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		logrus.WithError(err).Warn("CreateRoute: invalid input payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	wkbBytes, err := parseAndConvertGeometry(input.Geometry)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid GeoJSON geometry: " + err.Error()})
		return
	}

	route := models.Route{
		Name:                input.Name,
		Description:         input.Description,
		PlannedDistanceKm:   input.PlannedDistanceKm,
		PlannedDurationMin:  input.PlannedDurationMin,
		DeviationThresholdM: input.DeviationThresholdM,
		Geometry:            wkbBytes,
	}
	for i, w := range input.Waypoints {
		seq := w.Seq
		if seq == 0 {
			seq = i + 1
		}
		route.Waypoints = append(route.Waypoints, models.Waypoint{
			Name: w.Name,
			Seq:  seq,
			Lat:  w.Lat,
			Lng:  w.Lng,
		})
	}

	if err := config.DB.Create(&route).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create route: " + err.Error()})
		return
	}

	logrus.WithFields(logrus.Fields{
		"route_id":  route.ID,
		"waypoints": len(route.Waypoints),
	}).Info("Route created.")

	c.JSON(http.StatusCreated, gin.H{"route": toRouteResponse(route)})
}

func ListRoutes(c *gin.Context) {
	var routes []models.Route
	if err := config.DB.Preload("Waypoints", func(db *gorm.DB) *gorm.DB {
		return db.Order("waypoints.seq ASC")
	}).Find(&routes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing routes: " + err.Error()})
		return
	}

	out := make([]RouteResponse, 0, len(routes))
	for _, r := range routes {
		out = append(out, toRouteResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func GetRoute(c *gin.Context) {
	id := c.Param("id")

	var route models.Route
	if err := config.DB.Preload("Waypoints", func(db *gorm.DB) *gorm.DB {
		return db.Order("waypoints.seq ASC")
	}).First(&route, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"route": toRouteResponse(route)})
}

func DeleteRoute(c *gin.Context) {
	id := c.Param("id")

	var route models.Route
	if err := config.DB.First(&route, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		return
	}

	config.DB.Delete(&route)
	c.JSON(http.StatusOK, gin.H{"message": "Route deleted"})
}
