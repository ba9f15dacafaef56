package coordinator

import (
	"fmt"

	"github.com/playperu/quizarena/internal/arena"
)

// maxCodeAttempts bounds code regeneration on collision. With 32^6 codes
// this is never reached in practice.
const maxCodeAttempts = 100

// register allocates a collision-free code, creates the room with hostID
// already seated, and starts the room's goroutine.
func (c *Coordinator) register(hostID, hostName string, capacity int, private bool) (*room, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if code, bound := c.bindings[hostID]; bound {
		return nil, fmt.Errorf("%w: player %s is already in room %s", arena.ErrRejected, hostID, code)
	}

	code := ""
	for range maxCodeAttempts {
		candidate := NormalizeCode(c.newCode())
		if _, taken := c.rooms[candidate]; !taken && candidate != "" {
			code = candidate
			break
		}
	}
	if code == "" {
		return nil, fmt.Errorf("%w: no room code available", arena.ErrUnavailable)
	}

	r := newRoom(c, code, hostID, hostName, capacity, private)
	c.rooms[code] = r
	c.bindings[hostID] = code

	c.wg.Add(1)
	go r.run()

	c.logger.Info("room created",
		"room", code,
		"host", hostID,
		"capacity", capacity,
		"private", private)
	return r, nil
}

func (c *Coordinator) lookup(code string) (*room, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.rooms[code]
	return r, ok
}

// roomFor resolves the room playerID is bound to.
func (c *Coordinator) roomFor(playerID string) (*room, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	code, ok := c.bindings[playerID]
	if !ok {
		return nil, fmt.Errorf("%w: player %s is not in a room", arena.ErrNotFound, playerID)
	}
	r, ok := c.rooms[code]
	if !ok {
		return nil, fmt.Errorf("%w: room %s", arena.ErrNotFound, code)
	}
	return r, nil
}

// bind claims playerID for code. A player sits in at most one room.
func (c *Coordinator) bind(playerID, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.bindings[playerID]; ok {
		return fmt.Errorf("%w: player %s is already in room %s", arena.ErrRejected, playerID, existing)
	}
	c.bindings[playerID] = code
	return nil
}

// unbind releases playerID if it is still bound to code.
func (c *Coordinator) unbind(playerID, code string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bindings[playerID] == code {
		delete(c.bindings, playerID)
	}
}

func (c *Coordinator) remove(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, code)
}
