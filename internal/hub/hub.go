package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/connectday/booking-api/internal/model"
	"github.com/connectday/booking-api/pkg/metrics"
)

// Envelope types on the event stream.
const (
	TypeConnected = "connected"
	TypeHeartbeat = "heartbeat"
	TypeUpdate    = "update"
)

// Envelope is the outer record written to every stream message. Update
// envelopes carry the state-change event; connected and heartbeat carry only
// the dispatch timestamp.
type Envelope struct {
	Type      string       `json:"type"`
	Data      *model.Event `json:"data,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// Subscription is one open stream connection. Messages arrive pre-serialized
// on C; the channel is closed when the hub drops the subscriber.
type Subscription struct {
	id uint64
	C  <-chan []byte
	ch chan []byte
}

// Hub fans state-change events out to every open subscription. It is
// process-local and ephemeral: empty at start, rebuilt from nothing on
// restart, no replay of missed events. Delivery is best-effort at-most-once;
// a subscriber whose buffer is full counts as a failed write and is removed.
type Hub struct {
	mu          sync.Mutex
	subscribers map[uint64]chan []byte
	nextID      uint64
	bufferSize  int
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

func New(logger zerolog.Logger, m *metrics.Metrics, bufferSize int) *Hub {
	if bufferSize < 1 {
		bufferSize = 32
	}
	return &Hub{
		subscribers: make(map[uint64]chan []byte),
		bufferSize:  bufferSize,
		logger:      logger.With().Str("component", "hub").Logger(),
		metrics:     m,
	}
}

// Subscribe registers a new subscription and immediately queues a connected
// envelope on it.
func (h *Hub) Subscribe() *Subscription {
	ch := make(chan []byte, h.bufferSize)
	if payload, err := json.Marshal(Envelope{Type: TypeConnected, Timestamp: time.Now()}); err == nil {
		ch <- payload
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subscribers[id] = ch
	count := len(h.subscribers)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.HubConnections.Set(float64(count))
	}
	h.logger.Debug().Uint64("subscription_id", id).Int("open", count).Msg("subscriber added")

	return &Subscription{id: id, C: ch, ch: ch}
}

// Unsubscribe removes the subscription and closes its channel. Idempotent:
// repeated calls, or a call racing the hub's own lazy cleanup, are no-ops.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	ch, ok := h.subscribers[sub.id]
	if ok {
		delete(h.subscribers, sub.id)
		close(ch)
	}
	count := len(h.subscribers)
	h.mu.Unlock()

	if !ok {
		return
	}
	if h.metrics != nil {
		h.metrics.HubConnections.Set(float64(count))
	}
	h.logger.Debug().Uint64("subscription_id", sub.id).Int("open", count).Msg("subscriber removed")
}

// Broadcast wraps the event in an update envelope, serializes it once and
// writes it to every open subscription. Subscribers that cannot take the
// message are dropped as a side effect. Never blocks the caller; with zero
// subscribers it is a no-op.
func (h *Hub) Broadcast(event model.Event) {
	payload, err := json.Marshal(Envelope{Type: TypeUpdate, Data: &event, Timestamp: time.Now()})
	if err != nil {
		h.logger.Error().Err(err).Str("event_type", event.Type).Msg("failed to serialize event")
		return
	}

	h.mu.Lock()
	var dropped int
	for id, ch := range h.subscribers {
		select {
		case ch <- payload:
		default:
			delete(h.subscribers, id)
			close(ch)
			dropped++
		}
	}
	count := len(h.subscribers)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.HubEventsBroadcast.WithLabelValues(event.Type).Inc()
		if dropped > 0 {
			h.metrics.HubDroppedClients.Add(float64(dropped))
			h.metrics.HubConnections.Set(float64(count))
		}
	}
	if dropped > 0 {
		h.logger.Warn().Int("dropped", dropped).Str("event_type", event.Type).Msg("removed stalled subscribers")
	}
}

// HeartbeatMessage returns a serialized heartbeat envelope. Each stream
// handler writes one per open connection on its own ticker; heartbeats exist
// to keep intermediaries from idling the connection out, not to probe
// liveness.
func (h *Hub) HeartbeatMessage() []byte {
	payload, err := json.Marshal(Envelope{Type: TypeHeartbeat, Timestamp: time.Now()})
	if err != nil {
		return nil
	}
	if h.metrics != nil {
		h.metrics.HubHeartbeats.Inc()
	}
	return payload
}

// Len reports the number of open subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Close drops every subscription. Used on server shutdown so stream handlers
// unblock and return.
func (h *Hub) Close() {
	h.mu.Lock()
	for id, ch := range h.subscribers {
		delete(h.subscribers, id)
		close(ch)
	}
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.HubConnections.Set(0)
	}
}
