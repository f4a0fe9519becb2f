// Package websocket fans analysis status events out to subscribed clients.
package websocket

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"photocritic/domain/critique"
	"photocritic/pkg/logger"
)

const (
	MessageAnalysisStatus = "analysis_status"

	defaultSendBuffer = 16
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// StatusMessage is broadcast on every analysis state transition.
type StatusMessage struct {
	Type    string                  `json:"type"`
	PhotoID string                  `json:"photoId"`
	State   critique.State          `json:"state"`
	Reason  critique.FallbackReason `json:"reason,omitempty"`
}

type client struct {
	conn   Conn
	userID uuid.UUID
	room   string
	send   chan []byte
	once   sync.Once
}

// Hub groups connections into rooms. Publishing never waits on a client: a
// client whose buffer is full is dropped.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*client]struct{}
	clients map[Conn]*client
	buffer  int
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultSendBuffer
	}
	return &Hub{
		rooms:   make(map[string]map[*client]struct{}),
		clients: make(map[Conn]*client),
		buffer:  buffer,
	}
}

// Register adds conn to room and starts its writer.
func (h *Hub) Register(conn Conn, userID uuid.UUID, room string) {
	c := &client{
		conn:   conn,
		userID: userID,
		room:   room,
		send:   make(chan []byte, h.buffer),
	}

	h.mu.Lock()
	if old, ok := h.clients[conn]; ok {
		h.removeLocked(old)
	}
	h.clients[conn] = c
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*client]struct{})
	}
	h.rooms[room][c] = struct{}{}
	h.mu.Unlock()

	go h.writer(c)

	logger.WebSocket("client_registered", "Client joined room", map[string]interface{}{
		"user_id": userID.String(),
		"room":    room,
	})
}

func (h *Hub) writer(c *client) {
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			logger.WebSocketError("write_message", "WebSocket write failed", err, map[string]interface{}{"room": c.room})
			h.Unregister(c.conn)
			return
		}
	}
}

// Unregister removes conn. Safe to call more than once.
func (h *Hub) Unregister(conn Conn) {
	h.mu.Lock()
	c, ok := h.clients[conn]
	if ok {
		h.removeLocked(c)
	}
	h.mu.Unlock()
}

func (h *Hub) removeLocked(c *client) {
	delete(h.clients, c.conn)
	if members := h.rooms[c.room]; members != nil {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, c.room)
		}
	}
	c.once.Do(func() { close(c.send) })
}

// Publish sends v as JSON to every client in room.
func (h *Hub) Publish(room string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.WebSocketError("marshal", "Failed to encode message", err, nil)
		return
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.rooms[room] {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		logger.WebSocket("client_dropped", "Dropping slow client", map[string]interface{}{
			"user_id": c.userID.String(),
			"room":    room,
		})
		h.Unregister(c.conn)
		c.conn.Close()
	}
}

// Send queues v for a single connection. It reports false when conn is not
// registered or its buffer is full.
func (h *Hub) Send(conn Conn, v interface{}) bool {
	data, err := json.Marshal(v)
	if err != nil {
		logger.WebSocketError("marshal", "Failed to encode message", err, nil)
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[conn]
	if !ok {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// PublishStatus broadcasts an analysis state change to the photo's room.
func (h *Hub) PublishStatus(photoID uuid.UUID, state critique.State, reason critique.FallbackReason) {
	room := photoID.String()
	h.Publish(room, StatusMessage{
		Type:    MessageAnalysisStatus,
		PhotoID: room,
		State:   state,
		Reason:  reason,
	})
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// ClientCount is reported by the detailed health check.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
