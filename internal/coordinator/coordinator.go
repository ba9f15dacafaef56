// Package coordinator runs real-time multiplayer rooms: the room registry,
// per-room rosters and the timed session state machine.
//
// Each room is owned by a single goroutine. Client operations and timer
// expirations are delivered to that goroutine as messages, so every
// mutation of one room is serialized while different rooms proceed in
// parallel. No lock is held across rooms.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/playperu/quizarena/internal/arena"
)

// ScenarioSource supplies the ordered rounds of a new session.
type ScenarioSource interface {
	FetchRounds(ctx context.Context, count int) ([]arena.Round, error)
}

// Publisher fans events out to the connections attached to a room.
// Implementations must not block: they are called from inside a room's
// serialized section.
type Publisher interface {
	Attach(code, playerID string)
	Detach(code, playerID string)
	Publish(code string, ev Event)
}

// Recorder receives the outcome of every finished session.
type Recorder interface {
	Record(ctx context.Context, result arena.MatchResult) error
}

// Timing holds the durations that drive a session.
type Timing struct {
	Rounds         int
	CountdownSteps int
	CountdownTick  time.Duration
	ReviewInterval time.Duration
	// RoundTimeLimit applies to rounds whose source gave no time limit.
	RoundTimeLimit time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		Rounds:         5,
		CountdownSteps: 3,
		CountdownTick:  time.Second,
		ReviewInterval: 5 * time.Second,
		RoundTimeLimit: 20 * time.Second,
	}
}

type Option func(*Coordinator)

func WithTiming(t Timing) Option {
	return func(c *Coordinator) { c.timing = t }
}

func WithRecorder(rec Recorder) Option {
	return func(c *Coordinator) { c.recorder = rec }
}

// WithCodeGenerator replaces NewCode, mainly for tests.
func WithCodeGenerator(gen func() string) Option {
	return func(c *Coordinator) { c.newCode = gen }
}

type Coordinator struct {
	logger   *slog.Logger
	source   ScenarioSource
	pub      Publisher
	recorder Recorder
	timing   Timing
	newCode  func() string

	mu       sync.RWMutex
	rooms    map[string]*room  // code -> room
	bindings map[string]string // playerID -> code

	wg sync.WaitGroup
}

func New(logger *slog.Logger, source ScenarioSource, pub Publisher, opts ...Option) *Coordinator {
	c := &Coordinator{
		logger:   logger,
		source:   source,
		pub:      pub,
		timing:   DefaultTiming(),
		newCode:  NewCode,
		rooms:    make(map[string]*room),
		bindings: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateRoom allocates a room and seats hostID as its host.
func (c *Coordinator) CreateRoom(ctx context.Context, hostID, hostName string, capacity int, private bool) (arena.RoomView, error) {
	if hostID == "" {
		return arena.RoomView{}, fmt.Errorf("%w: player id is required", arena.ErrRejected)
	}
	if capacity < arena.MinCapacity || capacity > arena.MaxCapacity {
		return arena.RoomView{}, fmt.Errorf("%w: capacity must be between %d and %d",
			arena.ErrRejected, arena.MinCapacity, arena.MaxCapacity)
	}

	r, err := c.register(hostID, displayName(hostID, hostName), capacity, private)
	if err != nil {
		return arena.RoomView{}, err
	}

	var view arena.RoomView
	err = r.do(context.WithoutCancel(ctx), func() error {
		view = r.announce()
		return nil
	})
	return view, err
}

// Join seats playerID in the room identified by code.
func (c *Coordinator) Join(ctx context.Context, code, playerID, name string) (arena.RoomView, error) {
	if playerID == "" {
		return arena.RoomView{}, fmt.Errorf("%w: player id is required", arena.ErrRejected)
	}
	code = NormalizeCode(code)

	r, ok := c.lookup(code)
	if !ok {
		return arena.RoomView{}, fmt.Errorf("%w: room %s", arena.ErrNotFound, code)
	}
	if err := c.bind(playerID, code); err != nil {
		return arena.RoomView{}, err
	}

	var view arena.RoomView
	err := r.do(ctx, func() error {
		var err error
		view, err = r.join(playerID, displayName(playerID, name))
		return err
	})
	if err != nil {
		c.unbind(playerID, code)
		return arena.RoomView{}, err
	}
	return view, nil
}

// Leave removes playerID from whatever room it is in. Leaving is never
// an error for the room; reason only labels the broadcast.
func (c *Coordinator) Leave(ctx context.Context, playerID string, reason LeaveReason) error {
	r, err := c.roomFor(playerID)
	if err != nil {
		return err
	}
	return r.do(ctx, func() error { return r.leave(playerID, reason) })
}

func (c *Coordinator) MarkReady(ctx context.Context, playerID string) error {
	r, err := c.roomFor(playerID)
	if err != nil {
		return err
	}
	return r.do(ctx, func() error { return r.markReady(playerID) })
}

// CanStart reports whether the room has at least two players and every
// non-host player is ready.
func (c *Coordinator) CanStart(ctx context.Context, code string) (bool, error) {
	r, ok := c.lookup(NormalizeCode(code))
	if !ok {
		return false, fmt.Errorf("%w: room %s", arena.ErrNotFound, code)
	}
	var ready bool
	err := r.do(ctx, func() error {
		ready = r.canStart()
		return nil
	})
	return ready, err
}

// Start begins a session in the host's room. Rounds are fetched outside
// the room's serialized section; preconditions are checked before the
// fetch and again when the session is committed.
func (c *Coordinator) Start(ctx context.Context, playerID string) error {
	r, err := c.roomFor(playerID)
	if err != nil {
		return err
	}
	if err := r.do(ctx, func() error { return r.beginStart(playerID) }); err != nil {
		return err
	}

	// The room must not stay in the starting state past this call.
	bg := context.WithoutCancel(ctx)

	rounds, err := c.source.FetchRounds(ctx, c.timing.Rounds)
	if err == nil && len(rounds) == 0 {
		err = fmt.Errorf("%w: scenario source returned no rounds", arena.ErrUnavailable)
	}
	if err != nil {
		_ = r.do(bg, func() error {
			r.starting = false
			return nil
		})
		r.log.Warn("start refused", "player", playerID, "error", err)
		if arena.Code(err) != "unavailable" {
			err = fmt.Errorf("%w: fetching rounds: %w", arena.ErrUnavailable, err)
		}
		return err
	}

	return r.do(bg, func() error { return r.commitStart(playerID, rounds) })
}

// SubmitAnswer records playerID's choice for the current round.
func (c *Coordinator) SubmitAnswer(ctx context.Context, playerID, choice string, latencyMs int64) error {
	r, err := c.roomFor(playerID)
	if err != nil {
		return err
	}
	return r.do(ctx, func() error { return r.submitAnswer(playerID, choice, latencyMs) })
}

// Room returns the latest snapshot of a room without entering its section.
func (c *Coordinator) Room(code string) (arena.RoomView, error) {
	code = NormalizeCode(code)
	r, ok := c.lookup(code)
	if !ok {
		return arena.RoomView{}, fmt.Errorf("%w: room %s", arena.ErrNotFound, code)
	}
	return r.snapshot(), nil
}

// RoomOf returns the code of the room playerID is seated in.
func (c *Coordinator) RoomOf(playerID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	code, ok := c.bindings[playerID]
	return code, ok
}

// ListRooms returns public rooms that are waiting for players, oldest first.
func (c *Coordinator) ListRooms() []arena.Room {
	c.mu.RLock()
	rooms := make([]*room, 0, len(c.rooms))
	for _, r := range c.rooms {
		rooms = append(rooms, r)
	}
	c.mu.RUnlock()

	var out []arena.Room
	for _, r := range rooms {
		v := r.snapshot()
		if v.Room.Private || v.Room.Status != arena.RoomWaiting {
			continue
		}
		out = append(out, v.Room)
	}
	slices.SortFunc(out, func(a, b arena.Room) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Code, b.Code)
	})
	return out
}

// CloseRoom tears a room down: pending timers are cancelled, attached
// connections receive room.closed and are detached.
func (c *Coordinator) CloseRoom(ctx context.Context, code, reason string) error {
	code = NormalizeCode(code)
	r, ok := c.lookup(code)
	if !ok {
		return fmt.Errorf("%w: room %s", arena.ErrNotFound, code)
	}
	return r.do(ctx, func() error {
		r.destroy(reason)
		return nil
	})
}

// Shutdown closes every room and waits for room goroutines and pending
// result recordings to finish.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.mu.RLock()
	codes := make([]string, 0, len(c.rooms))
	for code := range c.rooms {
		codes = append(codes, code)
	}
	c.mu.RUnlock()

	for _, code := range codes {
		_ = c.CloseRoom(ctx, code, "server_shutdown")
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("coordinator stopped", "rooms_closed", len(codes))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) record(result arena.MatchResult) {
	if c.recorder == nil {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.recorder.Record(ctx, result); err != nil {
			c.logger.Error("recording match result failed",
				"room", result.RoomCode, "match", result.ID, "error", err)
		}
	}()
}

func displayName(id, name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return id
}
