package routes

import (
	"fleettrack/internal/controllers"
	"fleettrack/internal/middleware"

	"github.com/gin-gonic/gin"
)

func TrackingRoutes(r *gin.Engine) {
	track := r.Group("/tracking")
	track.Use(middleware.RequireAuth())
	{
		track.GET("/trips", controllers.ListTrackingSnapshots)
		track.GET("/trips/:id", controllers.GetTrackingSnapshot)
	}

	manage := r.Group("/tracking")
	manage.Use(middleware.RequireRole("admin", "dispatcher"))
	{
		manage.PUT("/thresholds", controllers.ConfigureGlobalThresholds)
		manage.PUT("/trips/:id/thresholds", controllers.ConfigureTripThresholds)
	}
}
