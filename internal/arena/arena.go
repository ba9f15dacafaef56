// Package arena defines the core domain types of a multiplayer match:
// rooms, players, rounds and the scoring policy.
// It has no dependencies outside the standard library.
package arena

import "time"

const (
	MinCapacity = 2
	MaxCapacity = 8

	// MinPlayers is the roster size required to start or keep a session alive.
	MinPlayers = 2
)

type RoomStatus string

const (
	RoomWaiting  RoomStatus = "waiting"
	RoomPlaying  RoomStatus = "playing"
	RoomFinished RoomStatus = "finished"
)

type SessionStatus string

const (
	SessionCountdown SessionStatus = "countdown"
	SessionActive    SessionStatus = "active"
	SessionReviewing SessionStatus = "reviewing"
	SessionFinished  SessionStatus = "finished"
)

type Role string

const (
	RoleHost   Role = "host"
	RolePlayer Role = "player"
)

type Room struct {
	Code        string     `json:"code"`
	HostID      string     `json:"hostId"`
	Capacity    int        `json:"capacity"`
	Private     bool       `json:"isPrivate"`
	Status      RoomStatus `json:"status"`
	PlayerCount int        `json:"playerCount"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type Player struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Role     Role      `json:"role"`
	Ready    bool      `json:"ready"`
	Score    int       `json:"score"`
	JoinedAt time.Time `json:"joinedAt"`

	// LastChoice and LastLatencyMs describe the player's answer to the most
	// recently closed round. Empty until that round is reviewed.
	LastChoice    string `json:"lastChoice,omitempty"`
	LastLatencyMs int64  `json:"lastLatencyMs,omitempty"`

	// JoinOrder is the player's registration sequence within the room.
	// Host succession and standings tie-breaks use it.
	JoinOrder int `json:"-"`
}

// Session is the public view of a running game.
type Session struct {
	ID          string        `json:"id"`
	Status      SessionStatus `json:"status"`
	Round       int           `json:"round"`
	TotalRounds int           `json:"totalRounds"`
	StartedAt   time.Time     `json:"startedAt"`
}

// RoomView is a consistent snapshot of a room, its roster and session.
type RoomView struct {
	Room    Room     `json:"room"`
	Players []Player `json:"players"`
	Session *Session `json:"session,omitempty"`
}

// Answer is one player's submission for one round.
type Answer struct {
	Choice    string `json:"choice"`
	LatencyMs int64  `json:"responseTimeMs"`
}

type Standing struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

type MatchResult struct {
	ID           string     `json:"id"`
	RoomCode     string     `json:"roomCode"`
	RoundsPlayed int        `json:"roundsPlayed"`
	TotalRounds  int        `json:"totalRounds"`
	Completed    bool       `json:"completed"`
	Standings    []Standing `json:"standings"`
	FinishedAt   time.Time  `json:"finishedAt"`
}
