package engine

import (
	"context"
	"time"

	"github.com/muurk/xbusd/internal/xbus"
)

// Event is one decoded message from the device.
type Event struct {
	Received time.Time
	ID       xbus.MessageID

	// Sample is set for telemetry messages.
	Sample *xbus.SensorSample

	// Payload holds the raw payload of non-telemetry messages.
	Payload []byte
}

// Hub fans events out to subscribers. Slow subscribers lose events
// instead of blocking the pipeline.
type Hub struct {
	broadcast  chan Event
	register   chan chan Event
	unregister chan chan Event
	clients    map[chan Event]struct{}
	clientBuf  int
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithBroadcastBuffer sets the size of the central broadcast queue.
func WithBroadcastBuffer(size int) HubOption {
	return func(h *Hub) {
		if size > 0 {
			h.broadcast = make(chan Event, size)
		}
	}
}

// WithClientBuffer sets the default per-subscriber queue size.
func WithClientBuffer(size int) HubOption {
	return func(h *Hub) {
		if size > 0 {
			h.clientBuf = size
		}
	}
}

// NewHub creates a hub. Call Run before publishing.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		broadcast:  make(chan Event, 256),
		register:   make(chan chan Event),
		unregister: make(chan chan Event),
		clients:    make(map[chan Event]struct{}),
		clientBuf:  100,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run distributes events until ctx is cancelled, then closes all
// subscriber channels.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for ch := range h.clients {
				close(ch)
			}
			return
		case ch := <-h.register:
			h.clients[ch] = struct{}{}
		case ch := <-h.unregister:
			if _, ok := h.clients[ch]; ok {
				delete(h.clients, ch)
				close(ch)
			}
		case event := <-h.broadcast:
			for ch := range h.clients {
				select {
				case ch <- event:
				default:
				}
			}
		}
	}
}

// Subscribe registers a new subscriber with the default buffer size.
func (h *Hub) Subscribe() chan Event {
	return h.SubscribeWithBuffer(h.clientBuf)
}

// SubscribeWithBuffer registers a new subscriber with an explicit buffer
// size.
func (h *Hub) SubscribeWithBuffer(size int) chan Event {
	if size <= 0 {
		size = h.clientBuf
	}
	ch := make(chan Event, size)
	h.register <- ch
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(ch chan Event) {
	h.unregister <- ch
}

// Publish queues an event for distribution.
func (h *Hub) Publish(event Event) {
	h.broadcast <- event
}
