package sse

import (
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ventech/ventech_api/internal/metrics"
)

// EventType names a storefront change.
type EventType string

const (
	EventDealCreated        EventType = "deal.created"
	EventDealUpdated        EventType = "deal.updated"
	EventDealDeleted        EventType = "deal.deleted"
	EventDealProductChanged EventType = "deal_product.changed"
	EventDealsExpired       EventType = "deals.expired"
	EventInvoiceSent        EventType = "invoice.sent"
)

const (
	clientBuffer = 64
	// MaxStreamsPerAdmin bounds concurrent dashboards per admin account.
	MaxStreamsPerAdmin = 5
)

// ErrTooManyStreams is returned by Register when an admin already holds
// MaxStreamsPerAdmin open streams.
var ErrTooManyStreams = errors.New("too many open event streams")

// ChangeEvent is the payload pushed to admin dashboards.
type ChangeEvent struct {
	Event     EventType `json:"event"`
	EntityID  string    `json:"entityId,omitempty"`
	DealID    string    `json:"dealId,omitempty"`
	Count     int64     `json:"count,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Message is an encoded ChangeEvent and its position in the stream.
type Message struct {
	Seq  uint64
	Data []byte
}

// Client is one open admin stream.
type Client struct {
	ID      string
	AdminID string
	Events  chan Message
}

// Hub fans change events out to every open admin stream.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	seq     atomic.Uint64
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

// Register opens a stream for adminID.
func (h *Hub) Register(adminID string) (*Client, error) {
	h.mu.Lock()
	open := 0
	for _, c := range h.clients {
		if c.AdminID == adminID {
			open++
		}
	}
	if open >= MaxStreamsPerAdmin {
		h.mu.Unlock()
		return nil, ErrTooManyStreams
	}

	c := &Client{
		ID:      adminID + "-" + uuid.NewString()[:8],
		AdminID: adminID,
		Events:  make(chan Message, clientBuffer),
	}
	h.clients[c.ID] = c
	total := len(h.clients)
	h.mu.Unlock()

	metrics.SetSSEClients(total)
	log.Debug().Str("client_id", c.ID).Int("total_clients", total).Msg("admin stream opened")
	return c, nil
}

// Unregister closes c's channel. Calling it twice is harmless.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.ID)
	close(c.Events)
	total := len(h.clients)
	h.mu.Unlock()

	metrics.SetSSEClients(total)
	log.Debug().Str("client_id", c.ID).Int("total_clients", total).Msg("admin stream closed")
}

// Broadcast queues ev for every client and returns its sequence number.
// A client whose buffer is full misses the event.
func (h *Hub) Broadcast(ev ChangeEvent) uint64 {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("event", string(ev.Event)).Msg("failed to encode change event")
		return 0
	}
	msg := Message{Seq: h.seq.Add(1), Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := 0
	for _, c := range h.clients {
		select {
		case c.Events <- msg:
		default:
			dropped++
			log.Warn().Str("client_id", c.ID).Uint64("seq", msg.Seq).Msg("admin stream lagging, event dropped")
		}
	}
	metrics.RecordSSEDropped(dropped)
	return msg.Seq
}

// ClientCount returns the number of open streams.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
