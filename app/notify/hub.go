package notify

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultSendBuffer = 16

// Event is the frame sent to viewers.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Client is one connected viewer. Frames queued for it arrive on Send, which
// the hub closes when the client is unregistered.
type Client struct {
	ID   string
	send chan []byte
}

// Send returns the client's outbound frame queue.
func (c *Client) Send() <-chan []byte {
	return c.send
}

// Hub is the registry of connected viewers. Broadcasts never block on a slow
// viewer: a viewer whose queue is full is dropped.
type Hub struct {
	mutex   sync.RWMutex
	clients map[string]*Client
	closed  bool
	buffer  int
	log     logrus.FieldLogger
}

func NewHub(log logrus.FieldLogger, buffer int) *Hub {
	if buffer < 1 {
		buffer = defaultSendBuffer
	}
	return &Hub{
		clients: make(map[string]*Client),
		buffer:  buffer,
		log:     log,
	}
}

// Register adds a new viewer. It returns nil once the hub is closed.
func (h *Hub) Register() *Client {
	client := &Client{
		ID:   uuid.NewString(),
		send: make(chan []byte, h.buffer),
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.closed {
		return nil
	}
	h.clients[client.ID] = client
	h.log.WithFields(logrus.Fields{"client_id": client.ID, "clients": len(h.clients)}).Debug("viewer connected")
	return client
}

// Unregister removes a viewer and closes its queue. Safe to call twice.
func (h *Hub) Unregister(client *Client) {
	if client == nil {
		return
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.remove(client.ID)
}

// remove must be called with the write lock held.
func (h *Hub) remove(id string) {
	client, ok := h.clients[id]
	if !ok {
		return
	}
	delete(h.clients, id)
	close(client.send)
	h.log.WithFields(logrus.Fields{"client_id": id, "clients": len(h.clients)}).Debug("viewer disconnected")
}

// Broadcast queues event for every connected viewer.
func (h *Hub) Broadcast(event string, payload interface{}) {
	frame, err := json.Marshal(Event{Event: event, Data: payload})
	if err != nil {
		h.log.WithError(err).WithField("event", event).Error("failed to encode event")
		return
	}

	var slow []string
	h.mutex.RLock()
	for id, client := range h.clients {
		select {
		case client.send <- frame:
		default:
			slow = append(slow, id)
		}
	}
	delivered := len(h.clients) - len(slow)
	h.mutex.RUnlock()

	if len(slow) > 0 {
		h.mutex.Lock()
		for _, id := range slow {
			h.remove(id)
		}
		h.mutex.Unlock()
		h.log.WithField("dropped", len(slow)).Warn("dropped slow viewers")
	}
	h.log.WithFields(logrus.Fields{"event": event, "delivered": delivered}).Debug("event broadcast")
}

// Count reports the number of connected viewers.
func (h *Hub) Count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Close disconnects every viewer and rejects later registrations.
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id := range h.clients {
		h.remove(id)
	}
}
