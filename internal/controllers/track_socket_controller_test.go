package controllers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"fleettrack/internal/middleware"
	"fleettrack/internal/tracking"
)

func newMonitorTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws/track", HandleMonitorWebSocket)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// The monitor handler writes the priming snapshots itself and only then
// hands the connection to the hub, so the handler and the hub's broadcast
// goroutines never write to the same conn at once. The first frame a fresh
// client reads must be the primed state of the active fleet.
func TestMonitorSocketPrimesBeforeHubTakesOver(t *testing.T) {
	tracker = tracking.NewTracker(tracking.DefaultThresholds())
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	route := tracking.Route{Waypoints: []tracking.Waypoint{
		{Lat: 0, Lng: 0, Name: "Depot"},
		{Lat: 0, Lng: 1, Name: "Terminal"},
	}}
	if err := tracker.Register(42, 7, route, start, start.Add(2*time.Hour)); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := tracker.Start(42, start); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := tracker.Ingest(42, tracking.TelemetrySample{
		Latitude:   0,
		Longitude:  0.1,
		SpeedKmh:   50,
		CapturedAt: start.Add(10 * time.Minute),
	}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	srv := newMonitorTestServer(t)
	token, err := middleware.GenerateToken(1, "dispatcher")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/track?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var snap tracking.Snapshot
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("reading primed snapshot: %v", err)
	}
	if snap.TripID != 42 {
		t.Errorf("primed snapshot TripID = %d, want 42", snap.TripID)
	}
}
