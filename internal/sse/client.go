package sse

import (
	"net/http"
	"time"

	"github.com/mcoot/hintrush-go/internal/model"
)

const (
	// Time between keepalive comments
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client represents one connection subscribed to a room's event stream
type Client struct {
	hub    *Hub
	connID model.ConnectionID
	send   chan []byte
}

// NewClient creates a new event-stream client
func NewClient(hub *Hub, connID model.ConnectionID) *Client {
	return &Client{
		hub:    hub,
		connID: connID,
		send:   make(chan []byte, sendBufferSize),
	}
}

// ServeSSE handles the event-stream connection for a client. Blocks
// until the client disconnects or the hub shuts down.
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, connID model.ConnectionID) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	client := NewClient(hub, connID)
	hub.Register(client)
	defer hub.Unregister(client)

	_, _ = w.Write([]byte("event: connected\ndata: {\"status\":\"connected\"}\n\n"))
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return
			}
			if _, err := w.Write(message); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
