package coordinator

import "github.com/playperu/quizarena/internal/arena"

// Outbound event types fanned out to every connection attached to a room.
const (
	EventRoomCreated   = "room.created"
	EventRoomJoined    = "room.joined"
	EventRoomLeft      = "room.left"
	EventRoomUpdated   = "room.updated"
	EventRoomClosed    = "room.closed"
	EventPlayerReady   = "player.ready"
	EventGameStarted   = "game.started"
	EventGameCountdown = "game.countdown"
	EventGameScenario  = "game.scenario"
	EventGameAnswer    = "game.answer"
	EventGameResults   = "game.results"
	EventGameFinished  = "game.finished"
)

type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type LeaveReason string

const (
	ReasonLeft         LeaveReason = "left"
	ReasonDisconnected LeaveReason = "disconnected"
)

const (
	FinishCompleted = "completed"
	FinishAbandoned = "abandoned"
)

type RoomSnapshot struct {
	Room    arena.Room     `json:"room"`
	Players []arena.Player `json:"players"`
}

type RoomLeft struct {
	PlayerID  string      `json:"playerId"`
	Reason    LeaveReason `json:"reason"`
	NewHostID string      `json:"newHostId,omitempty"`
}

type RoomClosed struct {
	Reason string `json:"reason"`
}

type PlayerReady struct {
	PlayerID string `json:"playerId"`
}

type GameStarted struct {
	Session arena.Session `json:"session"`
}

type GameCountdown struct {
	SecondsRemaining int `json:"secondsRemaining"`
}

// GameScenario exposes a round's prompt and choices. The best choice is
// deliberately absent.
type GameScenario struct {
	Round       int                  `json:"round"`
	TotalRounds int                  `json:"totalRounds"`
	Prompt      string               `json:"prompt"`
	Choices     []arena.PublicChoice `json:"choices"`
	TimeLimitMs int64                `json:"timeLimit"`
}

type GameAnswer struct {
	PlayerID       string `json:"playerId"`
	Choice         string `json:"choice"`
	ResponseTimeMs int64  `json:"responseTimeMs"`
}

type PlayerRoundResult struct {
	PlayerID string `json:"playerId"`
	Answered bool   `json:"answered"`
	Choice   string `json:"choice,omitempty"`
	Points   int    `json:"points"`
	Score    int    `json:"score"`
}

type RoundSummary struct {
	Round       int                 `json:"round"`
	TotalRounds int                 `json:"totalRounds"`
	BestChoice  string              `json:"bestChoice"`
	Rationale   string              `json:"rationale"`
	Results     []PlayerRoundResult `json:"results"`
}

type GameResults struct {
	RoundSummary RoundSummary `json:"roundSummary"`
}

type GameFinished struct {
	FinalStandings []arena.Standing `json:"finalStandings"`
	Reason         string           `json:"reason"`
	RoundsPlayed   int              `json:"roundsPlayed"`
}
