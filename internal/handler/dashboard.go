// ==============================================================================
// DASHBOARD HANDLER - internal/handler/dashboard.go
// ==============================================================================
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/munashechidyiwa/merchant-portfolios/internal/report"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now (CORS)
	},
}

// DashboardHandler serves the aggregate portfolio view.
type DashboardHandler struct {
	service *report.Service
	logger  logger.Logger
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(service *report.Service, log logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  log,
	}
}

// GetSummary returns the current dashboard snapshot.
// GET /dashboard/summary
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Snapshot(r.Context())
	if err != nil {
		h.logger.Error("Failed to build dashboard snapshot", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to build dashboard summary")
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// WebSocketHandler streams dashboard snapshots to connected clients.
// GET /dashboard/ws
func (h *DashboardHandler) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer conn.Close()

	h.logger.Info("WebSocket client connected", nil)

	// Send initial snapshot
	if err := h.sendSnapshot(r.Context(), conn); err != nil {
		return
	}

	// Send updates every 30 seconds
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := h.sendSnapshot(r.Context(), conn); err != nil {
				h.logger.Error("Failed to send snapshot", map[string]interface{}{"error": err.Error()})
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

func (h *DashboardHandler) sendSnapshot(ctx context.Context, conn *websocket.Conn) error {
	snapshot, err := h.service.Snapshot(ctx)
	if err != nil {
		return err
	}

	return conn.WriteJSON(map[string]interface{}{
		"type":      "dashboard_update",
		"timestamp": time.Now(),
		"snapshot":  snapshot,
	})
}
