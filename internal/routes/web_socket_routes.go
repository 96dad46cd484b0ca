package routes

import (
	"fleettrack/internal/controllers"

	"github.com/gin-gonic/gin"
)

func WebSocketRoutes(r *gin.Engine) {
	ws := r.Group("/ws")
	{
		ws.GET("/track", controllers.HandleMonitorWebSocket)
		ws.GET("/telemetry", controllers.HandleTelemetryWebSocket)
	}
}
