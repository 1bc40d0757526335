package websocket

import (
	"encoding/json"
	"sync"

	"lifeline/models"

	"github.com/sirupsen/logrus"
)

// Hub fans dashboard events out to connected clients and routes inbound
// position fixes to the tracker. One hub per process.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	// fixHandler receives position fixes sent by dashboard clients.
	fixHandler func(models.LocationFixRequest)

	// snapshot produces the events a freshly connected client needs to
	// render current state.
	snapshot func() []models.WSEvent

	mutex sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
	}
}

// SetFixHandler wires the tracker's ingest path for inbound location frames.
func (h *Hub) SetFixHandler(fn func(models.LocationFixRequest)) {
	h.fixHandler = fn
}

// SetSnapshot wires the state provider used to seed new connections.
func (h *Hub) SetSnapshot(fn func() []models.WSEvent) {
	h.snapshot = fn
}

// Run owns the client set. It must run in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			logrus.Debugf("websocket: client connected, %d active", h.clientCount())

			if h.snapshot != nil {
				for _, event := range h.snapshot() {
					client.sendEvent(event)
				}
			}

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			logrus.Debugf("websocket: client disconnected, %d active", h.clientCount())

		case message := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer; drop the frame rather than block
					// the hub.
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// Broadcast pushes an event to every connected client. Never blocks the
// caller: when the hub queue is full the event is dropped.
func (h *Hub) Broadcast(event models.WSEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).Warn("websocket: event marshal failed")
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		logrus.Warn("websocket: broadcast queue full, event dropped")
	}
}

func (h *Hub) clientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
