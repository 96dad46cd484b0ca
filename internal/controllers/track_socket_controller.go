package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"fleettrack/internal/middleware"
	"fleettrack/internal/tracking"
)

// upgrader configures the WebSocket connection.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all for development (restrict in production!)
	},
}

// TrackHub fans live trip snapshots out to monitoring clients. A client may
// subscribe to the whole fleet or to a single trip.
type TrackHub struct {
	clients   map[*websocket.Conn]uint // value 0 = whole fleet
	broadcast chan tracking.Snapshot
	mu        sync.Mutex
}

// NewTrackHub creates a hub and starts its broadcast goroutine.
func NewTrackHub() *TrackHub {
	hub := &TrackHub{
		clients:   make(map[*websocket.Conn]uint),
		broadcast: make(chan tracking.Snapshot, 100),
	}
	go hub.run()
	return hub
}

func (h *TrackHub) run() {
	for snap := range h.broadcast {
		h.mu.Lock()
		for conn, tripFilter := range h.clients {
			if tripFilter != 0 && tripFilter != snap.TripID {
				continue
			}
			go func(c *websocket.Conn, s tracking.Snapshot) {
				if err := c.WriteJSON(s); err != nil {
					if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
						h.Unregister(c)
					} else {
						logrus.WithError(err).WithField("trip_id", s.TripID).Warn("Failed to push snapshot to monitor client.")
					}
				}
			}(conn, snap)
		}
		h.mu.Unlock()
	}
}

// Register adds a monitor connection; tripID 0 subscribes to every trip.
func (h *TrackHub) Register(conn *websocket.Conn, tripID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = tripID
	logrus.WithFields(logrus.Fields{
		"trip_filter": tripID,
		"conn_ptr":    fmt.Sprintf("%p", conn),
	}).Info("Monitor client registered with TrackHub.")
}

// Unregister removes a monitor connection.
func (h *TrackHub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	logrus.WithField("conn_ptr", fmt.Sprintf("%p", conn)).Info("Monitor client unregistered from TrackHub.")
}

// PublishSnapshot queues a snapshot for broadcast, dropping when the
// channel is saturated rather than blocking ingestion.
func (h *TrackHub) PublishSnapshot(snap tracking.Snapshot) {
	select {
	case h.broadcast <- snap:
	default:
		logrus.Warn("Snapshot broadcast channel full, dropping update.")
	}
}

// PublishAll queues one snapshot per active trip; used by the periodic
// re-evaluation pass.
func (h *TrackHub) PublishAll(snaps []tracking.Snapshot) {
	for _, s := range snaps {
		h.PublishSnapshot(s)
	}
}

var trackHub = NewTrackHub()

// TrackingHub exposes the hub so the periodic tick in main can push passes.
func TrackingHub() *TrackHub {
	return trackHub
}

// authenticateSocket validates the JWT handed over as a query parameter
// (browsers cannot set headers on WebSocket dials).
func authenticateSocket(c *gin.Context) (*middleware.Claims, error) {
	tokenString := c.Query("token")
	if tokenString == "" {
		return nil, errors.New("missing authentication token")
	}
	claims, err := middleware.ValidateToken(tokenString)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}

// HandleMonitorWebSocket serves dashboard clients watching live trips.
// Optional ?trip_id= narrows the stream to one trip.
func HandleMonitorWebSocket(c *gin.Context) {
	claims, err := authenticateSocket(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var tripFilter uint
	if raw := c.Query("trip_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip_id parameter"})
			return
		}
		tripFilter = uint(id)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade monitor WebSocket.")
		return
	}
	defer conn.Close()

	logrus.WithFields(logrus.Fields{
		"user_id": claims.UserID,
		"role":    claims.Role,
	}).Info("Monitor WebSocket connection established.")

	// Prime the client with the current state before handing the conn to
	// the hub; once registered, the hub's goroutines own writes to it.
	for _, snap := range tracker.ActiveSnapshots() {
		if tripFilter == 0 || tripFilter == snap.TripID {
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		}
	}

	trackHub.Register(conn, tripFilter)
	defer trackHub.Unregister(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).WithField("user_id", claims.UserID).Warn("Error reading from monitor WebSocket.")
			}
			return
		}
	}
}

// HandleTelemetryWebSocket receives telemetry pushed by an in-cab device.
// Each text frame is one sample; each accepted sample is answered with the
// fresh snapshot, each rejected one with the rejection reason.
func HandleTelemetryWebSocket(c *gin.Context) {
	claims, err := authenticateSocket(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if claims.Role != "driver" && claims.Role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "only drivers may push telemetry"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade telemetry WebSocket.")
		return
	}
	defer conn.Close()

	logrus.WithField("user_id", claims.UserID).Info("Telemetry WebSocket connection established.")

	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).WithField("user_id", claims.UserID).Warn("Error reading from telemetry WebSocket.")
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		processSocketSample(conn, payload, claims.UserID)
	}
}

func processSocketSample(conn *websocket.Conn, payload []byte, userID uint) {
	var input telemetryInput
	if err := json.Unmarshal(payload, &input); err != nil {
		conn.WriteJSON(gin.H{"error": "malformed telemetry: " + err.Error()})
		return
	}
	if input.TripID == 0 {
		conn.WriteJSON(gin.H{"error": "trip_id is required"})
		return
	}

	snap, err := ingestAndRecord(input)
	if err != nil {
		switch {
		case errors.Is(err, tracking.ErrStaleSample):
			conn.WriteJSON(gin.H{"status": "stale_discarded"})
		default:
			conn.WriteJSON(gin.H{"error": err.Error()})
		}
		return
	}

	logrus.WithFields(logrus.Fields{
		"user_id":     userID,
		"trip_id":     input.TripID,
		"traveled_km": snap.DistanceTraveledKm,
	}).Debug("Telemetry sample accepted via WebSocket.")
	conn.WriteJSON(gin.H{"status": "accepted", "snapshot": snap})
}
