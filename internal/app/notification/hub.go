// Package notification provides the fan-out hub delivering player
// notifications to every connected observer.
package notification

import (
	"sync"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/hifigo/hifigo/internal/app/protocol"
)

// DefaultBufferSize is the per-subscriber notification buffer. A subscriber
// that falls this far behind starts losing notifications instead of blocking
// the producer.
const DefaultBufferSize = 64

// Subscription is an independent receive handle. It sees only notifications
// published after it was created; there is no replay.
type Subscription struct {
	id  string
	ch  chan protocol.Notification
	hub *Hub
}

// C returns the receive channel. It is closed when the subscription is
// cancelled or the hub shuts down.
func (s *Subscription) C() <-chan protocol.Notification {
	return s.ch
}

// ID returns the subscription ID.
func (s *Subscription) ID() string {
	return s.id
}

// Cancel removes the subscription from the hub and closes its channel.
// Cancelling twice is safe.
func (s *Subscription) Cancel() {
	s.hub.unsubscribe(s.id)
}

// Hub broadcasts every published notification to all current subscribers in
// publish order. Delivery per subscriber is at-most-once: a full subscriber
// buffer drops the notification rather than blocking the publisher.
type Hub struct {
	mu            sync.RWMutex
	subscriptions map[string]*Subscription
	bufferSize    int
	sequenceNo    uint64
	closed        bool
}

// NewHub creates a hub with the default per-subscriber buffer size.
func NewHub() *Hub {
	return NewHubWithBuffer(DefaultBufferSize)
}

// NewHubWithBuffer creates a hub with the given per-subscriber buffer size.
func NewHubWithBuffer(size int) *Hub {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Hub{
		subscriptions: make(map[string]*Subscription),
		bufferSize:    size,
	}
}

// Subscribe adds a new subscription.
func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscription{
		id:  uuid.New().String(),
		ch:  make(chan protocol.Notification, h.bufferSize),
		hub: h,
	}
	if h.closed {
		close(sub.ch)
		return sub
	}
	h.subscriptions[sub.id] = sub
	return sub
}

func (h *Hub) unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub, ok := h.subscriptions[id]; ok {
		delete(h.subscriptions, id)
		close(sub.ch)
	}
}

// Publish assigns the next sequence number and delivers the notification to
// every subscriber. Holding the write lock for the whole fan-out keeps the
// per-subscriber ordering identical to publish order across concurrent
// publishers.
func (h *Hub) Publish(n protocol.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	h.sequenceNo++
	n.SequenceNo = h.sequenceNo

	for _, sub := range h.subscriptions {
		select {
		case sub.ch <- n:
		default:
			// Slow consumer; it loses this notification.
			zlog.Warn().Str("subscription", sub.id).Str("type", string(n.Type)).
				Msg("notification dropped for slow subscriber")
		}
	}
}

// NextSequenceNo reserves and returns the next sequence number without
// publishing. Used to stamp out-of-band snapshot notifications sent to a
// single fresh subscriber.
func (h *Hub) NextSequenceNo() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sequenceNo++
	return h.sequenceNo
}

// SubscriberCount returns the number of active subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscriptions)
}

// Close cancels every subscription and rejects further publishes.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subscriptions {
		delete(h.subscriptions, id)
		close(sub.ch)
	}
}
