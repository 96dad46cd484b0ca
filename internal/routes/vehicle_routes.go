package routes

import (
	"fleettrack/internal/controllers"
	"fleettrack/internal/middleware"

	"github.com/gin-gonic/gin"
)

func VehicleRoutes(r *gin.Engine) {
	vehicles := r.Group("/vehicles")
	vehicles.Use(middleware.RequireAuth())
	{
		vehicles.GET("/", controllers.ListVehicles)
		vehicles.GET("/:id", controllers.GetVehicle)
	}

	manage := r.Group("/vehicles")
	manage.Use(middleware.RequireRole("admin", "dispatcher"))
	{
		manage.POST("/", controllers.CreateVehicle)
		manage.PUT("/:id", controllers.UpdateVehicle)
		manage.DELETE("/:id", controllers.DeleteVehicle)
	}
}
