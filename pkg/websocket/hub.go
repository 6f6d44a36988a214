package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"swyft/internal/observability"
	"swyft/pkg/logger"
)

// Hub is the realtime notifier: a registry of live connections and the
// email-keyed rooms they joined. Delivery is best-effort to currently
// connected clients only; there is no queueing or replay, reconnecting
// clients resynchronize through the HTTP API.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	rooms      map[string]map[*Client]bool
	mutex      sync.RWMutex
	log        *logger.Logger
}

// Message is the wire frame exchanged with clients.
type Message struct {
	Event     string      `json:"event"`
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client] = true
	observability.ConnectedClients.Inc()
	h.log.WithField("remote_addr", client.conn.RemoteAddr().String()).Debug("Client connected")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		observability.ConnectedClients.Dec()

		for room, members := range h.rooms {
			if _, exists := members[client]; exists {
				delete(members, client)
				if len(members) == 0 {
					delete(h.rooms, room)
				}
			}
		}

		h.log.Debug("Client disconnected")
	}
}

// Broadcast delivers an event to every currently connected client.
func (h *Hub) Broadcast(event string, payload interface{}) {
	data, err := json.Marshal(Message{
		Event:     event,
		Timestamp: time.Now().Unix(),
		Data:      payload,
	})
	if err != nil {
		h.log.WithError(err).Error("Failed to marshal broadcast message")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		h.deliver(client, data)
	}
}

// PublishToRoom delivers an event only to clients joined to the named room.
func (h *Hub) PublishToRoom(room, event string, payload interface{}) {
	if room == "" {
		return
	}

	data, err := json.Marshal(Message{
		Event:     event,
		Timestamp: time.Now().Unix(),
		Data:      payload,
	})
	if err != nil {
		h.log.WithError(err).Error("Failed to marshal room message")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	members, exists := h.rooms[room]
	if !exists {
		return
	}

	for client := range members {
		h.deliver(client, data)
	}
}

// deliver enqueues data for one client; slow clients are dropped rather than
// blocking the publisher. Callers must hold the write lock.
func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		close(client.send)
		delete(h.clients, client)
		observability.ConnectedClients.Dec()
		for room, members := range h.rooms {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
}

// JoinRoom subscribes a client to a room. Room names are user emails as
// declared by the client; membership is not authenticated.
func (h *Hub) JoinRoom(client *Client, room string) {
	if room == "" {
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][client] = true
	client.rooms[room] = true
}

func (h *Hub) LeaveRoom(client *Client, room string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if members, exists := h.rooms[room]; exists {
		delete(members, client)
		delete(client.rooms, room)

		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// ClientCount returns the number of registered connections.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// RoomSize returns the number of clients joined to a room.
func (h *Hub) RoomSize(room string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.rooms[room])
}
