package routes

import (
	"fleettrack/internal/controllers"
	"fleettrack/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RouteRoutes(r *gin.Engine) {
	routes := r.Group("/routes")
	routes.Use(middleware.RequireAuth())
	{
		routes.GET("/", controllers.ListRoutes)
		routes.GET("/:id", controllers.GetRoute)
	}

	manage := r.Group("/routes")
	manage.Use(middleware.RequireRole("admin", "dispatcher"))
	{
		manage.POST("/", controllers.CreateRoute)
		manage.DELETE("/:id", controllers.DeleteRoute)
	}
}
