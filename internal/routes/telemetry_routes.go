package routes

import (
	"fleettrack/internal/controllers"
	"fleettrack/internal/middleware"

	"github.com/gin-gonic/gin"
)

func TelemetryRoutes(r *gin.Engine) {
	telemetry := r.Group("/telemetry")
	telemetry.Use(middleware.RequireRole("driver", "admin"))
	{
		telemetry.POST("/", controllers.IngestTelemetry)
	}
}
