// FilePath: internal/relay/hub.go

// Package relay implements the broadcast core: the hub that fans the current
// snapshot out to live subscribers, the service that ties the snapshot store,
// persistence and the hub together, and the websocket client plumbing.
package relay

import (
	"sync"

	"github.com/Gibsonzwenyika/iot-dashboard/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// subscriberBuffer bounds the per-subscriber queue. A subscriber that falls
// this far behind starts losing pushes; delivery to everyone else is never
// stalled.
const subscriberBuffer = 16

// Subscriber is one live connection registered for snapshot pushes.
type Subscriber struct {
	id string
	ch chan models.TelemetrySnapshot
}

// Updates is the subscriber's per-connection FIFO of snapshot pushes.
func (s *Subscriber) Updates() <-chan models.TelemetrySnapshot {
	return s.ch
}

// ID returns the subscriber's connection id, used for logging only.
func (s *Subscriber) ID() string {
	return s.id
}

// Hub maintains the set of connected subscribers and pushes the current
// snapshot to all of them on every mutation. Delivery is best-effort:
// no acknowledgment, no replay, no ordering across subscribers.
type Hub struct {
	mu   sync.Mutex
	subs map[*Subscriber]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscriber]struct{})}
}

// Subscribe registers a new subscriber and immediately queues the given
// snapshot for it, so a connecting client sees the current state before any
// mutation-triggered push.
func (h *Hub) Subscribe(current models.TelemetrySnapshot) *Subscriber {
	sub := &Subscriber{
		id: nuts.NID("sub", 12),
		ch: make(chan models.TelemetrySnapshot, subscriberBuffer),
	}
	sub.ch <- current

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	count := len(h.subs)
	h.mu.Unlock()

	nuts.L.Infof("[Hub] Subscriber %s connected (%d active)", sub.id, count)
	return sub
}

// Unsubscribe removes a subscriber and closes its channel. Safe to call for
// a subscriber that was already removed.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	_, ok := h.subs[sub]
	if ok {
		delete(h.subs, sub)
	}
	count := len(h.subs)
	h.mu.Unlock()

	if ok {
		close(sub.ch)
		nuts.L.Infof("[Hub] Subscriber %s disconnected (%d active)", sub.id, count)
	}
}

// Publish pushes the snapshot to every connected subscriber, including the
// one whose mutation triggered the push. A subscriber with a full buffer is
// skipped for this push; a slow client must not stall the rest.
func (h *Hub) Publish(snap models.TelemetrySnapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		select {
		case sub.ch <- snap:
		default:
			nuts.L.Debugf("[Hub] Subscriber %s buffer full, dropping push", sub.id)
		}
	}
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
