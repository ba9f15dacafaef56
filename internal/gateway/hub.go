package gateway

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/playperu/quizarena/internal/coordinator"
)

// Hub tracks the live connection of every player and which players are
// attached to which room. It implements coordinator.Publisher.
type Hub struct {
	logger *slog.Logger

	mu    sync.RWMutex
	conns map[string]*Conn               // playerID -> current connection
	rooms map[string]map[string]struct{} // code -> attached playerIDs

	dropped atomic.Int64
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		conns:  make(map[string]*Conn),
		rooms:  make(map[string]map[string]struct{}),
	}
}

var _ coordinator.Publisher = (*Hub)(nil)

func (h *Hub) Attach(code, playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[code] == nil {
		h.rooms[code] = make(map[string]struct{})
	}
	h.rooms[code][playerID] = struct{}{}
}

func (h *Hub) Detach(code, playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms[code], playerID)
	if len(h.rooms[code]) == 0 {
		delete(h.rooms, code)
	}
}

// Publish queues ev for every connection attached to code. It never
// blocks: a connection whose queue is full misses the event.
func (h *Hub) Publish(code string, ev coordinator.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("encoding event failed", "room", code, "type", ev.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for playerID := range h.rooms[code] {
		c := h.conns[playerID]
		if c == nil {
			continue
		}
		if !c.enqueue(data) {
			h.dropped.Add(1)
			h.logger.Warn("dropped event for slow connection",
				"room", code, "player", playerID, "type", ev.Type)
		}
	}
}

// connected reports whether playerID has a live connection.
func (h *Hub) connected(playerID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.conns[playerID] != nil
}

// register makes c the player's current connection and returns the one
// it replaced, if any.
func (h *Hub) register(c *Conn) *Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	old := h.conns[c.playerID]
	h.conns[c.playerID] = c
	return old
}

// unregister removes c and reports whether it was still current. A
// replaced connection is not current.
func (h *Hub) unregister(c *Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[c.playerID] != c {
		return false
	}
	delete(h.conns, c.playerID)
	return true
}

// CloseAll ends every live connection.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	conns := make([]*Conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		c.close()
	}
}

type Stats struct {
	Connections int   `json:"connections"`
	Rooms       int   `json:"rooms"`
	Dropped     int64 `json:"droppedEvents"`
}

func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Stats{
		Connections: len(h.conns),
		Rooms:       len(h.rooms),
		Dropped:     h.dropped.Load(),
	}
}
