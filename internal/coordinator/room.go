package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/playperu/quizarena/internal/arena"
)

type envelope struct {
	fn    func() error
	reply chan error
}

// room is the single writer for one room's state. Everything below the
// view field is touched only from run, either by client operations sent
// through do or by timer callbacks that also go through do.
type room struct {
	c    *Coordinator
	code string
	log  *slog.Logger

	inbox chan envelope
	done  chan struct{}
	view  atomic.Pointer[arena.RoomView]

	info      arena.Room
	players   []*arena.Player // join order; players[0] is the longest tenured
	joinOrder int
	starting  bool
	sess      *session
	timer     *time.Timer
	epoch     uint64
	closed    bool
}

func newRoom(c *Coordinator, code, hostID, hostName string, capacity int, private bool) *room {
	now := time.Now()
	r := &room{
		c:     c,
		code:  code,
		log:   c.logger.With("room", code),
		inbox: make(chan envelope),
		done:  make(chan struct{}),
		info: arena.Room{
			Code:        code,
			HostID:      hostID,
			Capacity:    capacity,
			Private:     private,
			Status:      arena.RoomWaiting,
			PlayerCount: 1,
			CreatedAt:   now,
		},
	}
	r.players = []*arena.Player{{
		ID:        hostID,
		Name:      hostName,
		Role:      arena.RoleHost,
		JoinedAt:  now,
		JoinOrder: r.nextJoinOrder(),
	}}
	r.refresh()
	return r
}

func (r *room) run() {
	defer r.c.wg.Done()

	for env := range r.inbox {
		err := env.fn()
		r.refresh()
		env.reply <- err

		if r.closed {
			close(r.done)
			return
		}
	}
}

// do runs fn inside the room's serialized section and returns its error.
// Once the room is destroyed every call fails with ErrNotFound.
func (r *room) do(ctx context.Context, fn func() error) error {
	env := envelope{fn: fn, reply: make(chan error, 1)}

	select {
	case r.inbox <- env:
	case <-r.done:
		return fmt.Errorf("%w: room %s", arena.ErrNotFound, r.code)
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-env.reply
}

// schedule arranges for fn to run inside the section after d, replacing
// any pending timer. A callback that was already in flight when it got
// replaced sees a stale epoch and does nothing.
func (r *room) schedule(d time.Duration, fn func()) {
	r.cancelTimer()
	epoch := r.epoch

	r.timer = time.AfterFunc(d, func() {
		_ = r.do(context.Background(), func() error {
			if r.closed || r.epoch != epoch {
				return nil
			}
			r.timer = nil
			fn()
			return nil
		})
	})
}

func (r *room) cancelTimer() {
	r.epoch++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *room) publish(typ string, data any) {
	r.c.pub.Publish(r.code, Event{Type: typ, Data: data})
}

func (r *room) roster() []arena.Player {
	out := make([]arena.Player, len(r.players))
	for i, p := range r.players {
		out[i] = *p
	}
	return out
}

func (r *room) buildView() arena.RoomView {
	v := arena.RoomView{Room: r.info, Players: r.roster()}
	if r.sess != nil {
		s := r.sess.view()
		v.Session = &s
	}
	return v
}

func (r *room) refresh() {
	r.info.PlayerCount = len(r.players)
	v := r.buildView()
	r.view.Store(&v)
}

func (r *room) snapshot() arena.RoomView {
	v := *r.view.Load()
	v.Players = slices.Clone(v.Players)
	if v.Session != nil {
		s := *v.Session
		v.Session = &s
	}
	return v
}

// announce attaches the host and tells it the room exists.
func (r *room) announce() arena.RoomView {
	host := r.players[0]
	r.c.pub.Attach(r.code, host.ID)
	r.publish(EventRoomCreated, RoomSnapshot{Room: r.info, Players: r.roster()})
	return r.buildView()
}

// destroy releases everything the room holds. After it returns the run
// loop exits and the room is unreachable.
func (r *room) destroy(reason string) {
	if r.closed {
		return
	}
	r.cancelTimer()
	r.sess = nil
	r.starting = false
	r.info.Status = arena.RoomFinished

	r.publish(EventRoomClosed, RoomClosed{Reason: reason})
	for _, p := range r.players {
		r.c.pub.Detach(r.code, p.ID)
		r.c.unbind(p.ID, r.code)
	}
	r.players = nil
	r.closed = true
	r.c.remove(r.code)

	r.log.Info("room destroyed", "reason", reason)
}
