// Package publish is the push side of the control surface: a WebSocket hub
// that broadcasts every new opportunity snapshot and the current exchange
// statuses to subscribed readers. The evaluation engine calls Broadcast* after its
// pointer swap, never while holding its own snapshot lock.
package publish

import (
	"bytes"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"arbitrage/internal/metrics"
	"arbitrage/internal/models"
)

var jsonBufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 512))
	},
}

// Hub manages every active WebSocket subscriber and fans out broadcasts to
// them without blocking on a slow client.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	log        *zap.SugaredLogger
}

// NewHub builds a Hub. Call Run in its own goroutine before any client
// connects.
func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// Run processes registration, unregistration and broadcasts until done is
// closed.
func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			metrics.SubscribersConnected.Set(float64(count))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			metrics.SubscribersConnected.Set(float64(count))

		case message := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			var slow []*Client
			for _, client := range clients {
				select {
				case client.send <- message:
				default:
					slow = append(slow, client)
				}
			}

			if len(slow) > 0 {
				h.mu.Lock()
				for _, client := range slow {
					if _, ok := h.clients[client]; ok {
						delete(h.clients, client)
						close(client.send)
					}
				}
				h.mu.Unlock()
				if h.log != nil {
					h.log.Warnw("evicted slow websocket clients", "count", len(slow))
				}
			}
		}
	}
}

func (h *Hub) broadcastJSON(message interface{}) {
	buf := jsonBufferPool.Get().(*bytes.Buffer)
	buf.Reset()

	if err := json.NewEncoder(buf).Encode(message); err != nil {
		if h.log != nil {
			h.log.Errorw("marshal broadcast message failed", "error", err)
		}
		jsonBufferPool.Put(buf)
		return
	}

	data := buf.Bytes()
	if len(data) > 0 && data[len(data)-1] == '\n' {
		data = data[:len(data)-1]
	}
	msgCopy := make([]byte, len(data))
	copy(msgCopy, data)
	jsonBufferPool.Put(buf)

	h.broadcast <- msgCopy
}

// BroadcastOpportunities pushes a new ranked snapshot to every subscriber.
func (h *Hub) BroadcastOpportunities(opportunities []models.Opportunity, nowMs int64) {
	h.broadcastJSON(newOpportunitySnapshotMessage(opportunities, nowMs))
}

// BroadcastStatuses pushes an exchange-status payload to every subscriber.
func (h *Hub) BroadcastStatuses(statuses map[string]models.ExchangeStatus) {
	h.broadcastJSON(newExchangeStatusMessage(statuses))
}

// ClientCount returns the number of currently subscribed clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
