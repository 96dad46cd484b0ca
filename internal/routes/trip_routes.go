package routes

import (
	"fleettrack/internal/controllers"
	"fleettrack/internal/middleware"

	"github.com/gin-gonic/gin"
)

func TripRoutes(r *gin.Engine) {
	trips := r.Group("/trips")
	trips.Use(middleware.RequireAuth())
	{
		trips.GET("/", controllers.ListTrips)
		trips.GET("/:id", controllers.GetTrip)
		trips.GET("/:id/telemetry", controllers.GetTripTelemetry)
	}

	manage := r.Group("/trips")
	manage.Use(middleware.RequireRole("admin", "dispatcher"))
	{
		manage.POST("/", controllers.CreateTrip)
		manage.POST("/:id/start", controllers.StartTrip)
		manage.POST("/:id/complete", controllers.CompleteTrip)
		manage.POST("/:id/cancel", controllers.CancelTrip)
	}
}
