package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"fleettrack/internal/config"
	"fleettrack/internal/controllers"
	"fleettrack/internal/logger"
	"fleettrack/internal/middleware"
	"fleettrack/internal/routes"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	// Connect to the database
	config.InitDB()

	// Build the live-tracking core and resume any in-progress trips
	tracker := controllers.InitTracker(config.TrackingThresholds())

	// Setup Gin router
	r := routes.SetupRouter()

	// Periodic re-evaluation: keeps stall/behind-schedule detection alive
	// for trips whose devices have gone quiet, pushing each pass to the
	// monitoring sockets.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tracker.Run(ctx, config.TickInterval(), controllers.TrackingHub().PublishAll)

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	addr := os.Getenv("SERVER_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8080"
	}
	log.Printf("🚀 Server running at %s", addr)
	log.Fatal(http.ListenAndServe(addr, handler))
}
