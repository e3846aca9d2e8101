// Package broadcast decouples the coordinator from the push transport.
// The registry and services publish domain events; the SSE publisher
// turns them into frames on the room's hub.
package broadcast

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/mcoot/hintrush-go/internal/model"
	"github.com/mcoot/hintrush-go/internal/sse"
)

// Publisher fans a state-change event out to every connection in a room
type Publisher interface {
	Publish(code model.RoomCode, event model.Event)
}

// SSEPublisher publishes events onto per-room SSE hubs
type SSEPublisher struct {
	hubs   *sse.HubManager
	logger *slog.Logger
}

// NewSSEPublisher creates a publisher backed by the hub manager
func NewSSEPublisher(hubs *sse.HubManager, logger *slog.Logger) *SSEPublisher {
	return &SSEPublisher{
		hubs:   hubs,
		logger: logger.With(slog.String("component", "broadcast")),
	}
}

var _ Publisher = (*SSEPublisher)(nil)

// Publish serializes the event and broadcasts it to the room's hub.
// Creating the hub lazily means events emitted before the first client
// subscribes are simply dropped by the hub, not lost with an error.
func (p *SSEPublisher) Publish(code model.RoomCode, event model.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal event",
			slog.String("type", string(event.Type)),
			slog.String("error", err.Error()))
		return
	}
	p.hubs.GetOrCreateHub(code).BroadcastEvent(string(event.Type), string(data))
}

// Capture is a Publisher for tests: it records every published event
type Capture struct {
	mu     sync.Mutex
	events []model.Event
}

// NewCapture creates an empty capture publisher
func NewCapture() *Capture {
	return &Capture{}
}

var _ Publisher = (*Capture)(nil)

// Publish records the event
func (c *Capture) Publish(_ model.RoomCode, event model.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

// Events returns a copy of everything published so far, in order
func (c *Capture) Events() []model.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Event, len(c.events))
	copy(out, c.events)
	return out
}

// EventsOfType returns published events matching the given type
func (c *Capture) EventsOfType(t model.EventType) []model.Event {
	var out []model.Event
	for _, e := range c.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
