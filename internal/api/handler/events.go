package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/hintrush-go/internal/api/apierr"
	"github.com/mcoot/hintrush-go/internal/metrics"
	"github.com/mcoot/hintrush-go/internal/model"
	"github.com/mcoot/hintrush-go/internal/registry"
	"github.com/mcoot/hintrush-go/internal/sse"
)

// EventsHandler serves per-room event streams
type EventsHandler struct {
	registry   *registry.Registry
	hubManager *sse.HubManager
	metrics    *metrics.Metrics
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(reg *registry.Registry, hubManager *sse.HubManager, m *metrics.Metrics) *EventsHandler {
	return &EventsHandler{registry: reg, hubManager: hubManager, metrics: m}
}

// Stream handles GET /api/v1/rooms/{code}/events. The connection_id
// query parameter identifies the subscriber; the stream stays open until
// the client disconnects or the room is deleted.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])
	connID := model.ConnectionID(r.URL.Query().Get("connection_id"))

	// Subscribing to a dead room is a 404, not an empty stream
	if _, err := h.registry.Snapshot(code); err != nil {
		apierr.WriteError(w, err)
		return
	}

	hub := h.hubManager.GetOrCreateHub(code)

	h.metrics.ConnectedClients.Inc()
	defer h.metrics.ConnectedClients.Dec()

	sse.ServeSSE(w, r, hub, connID)
}
