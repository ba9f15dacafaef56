package coordinator

import (
	"fmt"
	"slices"
	"time"

	"github.com/playperu/quizarena/internal/arena"
)

func (r *room) nextJoinOrder() int {
	n := r.joinOrder
	r.joinOrder++
	return n
}

func (r *room) player(id string) *arena.Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *room) join(playerID, name string) (arena.RoomView, error) {
	switch {
	case r.info.Status != arena.RoomWaiting:
		return arena.RoomView{}, fmt.Errorf("%w: game already in progress", arena.ErrRejected)
	case len(r.players) >= r.info.Capacity:
		return arena.RoomView{}, fmt.Errorf("%w: room is full", arena.ErrRejected)
	case r.player(playerID) != nil:
		return arena.RoomView{}, fmt.Errorf("%w: player %s is already in the room", arena.ErrRejected, playerID)
	}

	r.players = append(r.players, &arena.Player{
		ID:        playerID,
		Name:      name,
		Role:      arena.RolePlayer,
		JoinedAt:  time.Now(),
		JoinOrder: r.nextJoinOrder(),
	})
	r.info.PlayerCount = len(r.players)

	r.c.pub.Attach(r.code, playerID)
	r.publish(EventRoomJoined, RoomSnapshot{Room: r.info, Players: r.roster()})
	r.log.Debug("player joined", "player", playerID, "players", len(r.players))

	return r.buildView(), nil
}

// leave removes playerID. Host succession to the earliest remaining
// joiner happens in the same step, so a non-empty room always has exactly
// one host.
func (r *room) leave(playerID string, reason LeaveReason) error {
	idx := slices.IndexFunc(r.players, func(p *arena.Player) bool { return p.ID == playerID })
	if idx < 0 {
		return fmt.Errorf("%w: player %s is not in room %s", arena.ErrNotFound, playerID, r.code)
	}
	gone := r.players[idx]
	r.players = slices.Delete(r.players, idx, idx+1)
	r.info.PlayerCount = len(r.players)

	r.c.pub.Detach(r.code, playerID)
	r.c.unbind(playerID, r.code)
	r.log.Debug("player left", "player", playerID, "reason", reason, "players", len(r.players))

	if len(r.players) == 0 {
		r.destroy("empty")
		return nil
	}

	left := RoomLeft{PlayerID: playerID, Reason: reason}
	if gone.Role == arena.RoleHost {
		heir := r.players[0]
		heir.Role = arena.RoleHost
		r.info.HostID = heir.ID
		left.NewHostID = heir.ID
		r.log.Info("host promoted", "player", heir.ID)
	}
	r.publish(EventRoomLeft, left)
	r.publish(EventRoomUpdated, RoomSnapshot{Room: r.info, Players: r.roster()})

	if r.sess != nil {
		r.forfeit(playerID)
	}
	return nil
}

func (r *room) markReady(playerID string) error {
	p := r.player(playerID)
	if p == nil {
		return fmt.Errorf("%w: player %s is not in room %s", arena.ErrNotFound, playerID, r.code)
	}
	if r.info.Status != arena.RoomWaiting {
		return fmt.Errorf("%w: game already in progress", arena.ErrRejected)
	}

	p.Ready = true
	r.publish(EventPlayerReady, PlayerReady{PlayerID: playerID})
	return nil
}

// canStart requires two players and every non-host player ready; the
// host is implicitly ready.
func (r *room) canStart() bool {
	if len(r.players) < arena.MinPlayers {
		return false
	}
	for _, p := range r.players {
		if p.Role != arena.RoleHost && !p.Ready {
			return false
		}
	}
	return true
}
