package routes

import (
	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.New()

	// Recovery and request logging must attach before any route registers.
	r.Use(gin.Recovery())
	r.Use(ginlog.SetLogger())

	AuthRoutes(r)
	VehicleRoutes(r)
	RouteRoutes(r)
	TripRoutes(r)
	TelemetryRoutes(r)
	TrackingRoutes(r)
	WebSocketRoutes(r)

	return r
}
