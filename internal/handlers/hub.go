// internal/handlers/hub.go
package handlers

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/trivia/internal/room"
	"github.com/sirupsen/logrus"
)

// outboxSize is how many events may queue for a slow client before new ones are dropped.
const outboxSize = 64

// Connection is one websocket client. Its ID is the identity the room service sees.
type Connection struct {
	ID      uuid.UUID
	OutChan chan room.Event

	logger *logrus.Logger
}

func newConnection(logger *logrus.Logger) *Connection {
	return &Connection{
		ID:      uuid.New(),
		OutChan: make(chan room.Event, outboxSize),
		logger:  logger,
	}
}

// Write queues an event without blocking. If the outbox is full the event is dropped.
func (c *Connection) Write(ev room.Event) {
	select {
	case c.OutChan <- ev:
	default:
		c.logger.WithFields(logrus.Fields{
			"conn": c.ID,
			"type": ev.Type,
		}).Warn("outbox full, dropping event")
	}
}

// Hub tracks live connections and the room broadcast groups they joined.
// It implements room.Gateway.
type Hub struct {
	mu     sync.RWMutex
	conns  map[uuid.UUID]*Connection
	groups map[string]map[uuid.UUID]struct{}

	logger *logrus.Logger
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		conns:  make(map[uuid.UUID]*Connection),
		groups: make(map[string]map[uuid.UUID]struct{}),
		logger: logger,
	}
}

var _ room.Gateway = (*Hub)(nil)

// Register makes a connection addressable.
func (h *Hub) Register(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c.ID] = c
}

// Unregister forgets a connection and drops it from every group. No event is
// written to it afterwards.
func (h *Hub) Unregister(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, id)
	for code, members := range h.groups {
		delete(members, id)
		if len(members) == 0 {
			delete(h.groups, code)
		}
	}
}

func (h *Hub) Join(conn uuid.UUID, code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[conn]; !ok {
		return
	}
	members, ok := h.groups[code]
	if !ok {
		members = make(map[uuid.UUID]struct{})
		h.groups[code] = members
	}
	members[conn] = struct{}{}
}

func (h *Hub) Broadcast(code string, ev room.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id := range h.groups[code] {
		if c, ok := h.conns[id]; ok {
			c.Write(ev)
		}
	}
}

func (h *Hub) Send(conn uuid.UUID, ev room.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.conns[conn]; ok {
		c.Write(ev)
	}
}

func (h *Hub) Disband(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.groups, code)
}

// GroupSize returns how many connections are joined to a room code.
func (h *Hub) GroupSize(code string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[code])
}

// Len returns the number of registered connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
