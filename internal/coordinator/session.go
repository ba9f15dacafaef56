package coordinator

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/playperu/quizarena/internal/arena"
)

// session is the running game of a playing room. The round list is fixed
// when the session is created.
type session struct {
	id        string
	rounds    []arena.Round
	round     int // 1-indexed
	played    int // rounds scored so far
	status    arena.SessionStatus
	answers   map[string]arena.Answer // current round only
	countdown int
	startedAt time.Time
}

func (s *session) current() arena.Round {
	return s.rounds[s.round-1]
}

func (s *session) view() arena.Session {
	return arena.Session{
		ID:          s.id,
		Status:      s.status,
		Round:       s.round,
		TotalRounds: len(s.rounds),
		StartedAt:   s.startedAt,
	}
}

func (r *room) checkStart(playerID string) error {
	switch {
	case r.info.Status != arena.RoomWaiting:
		return fmt.Errorf("%w: game already in progress", arena.ErrRejected)
	case r.info.HostID != playerID:
		return fmt.Errorf("%w: only the host can start the game", arena.ErrRejected)
	case !r.canStart():
		return fmt.Errorf("%w: need at least %d players and every player ready", arena.ErrRejected, arena.MinPlayers)
	}
	return nil
}

// beginStart reserves the room for a start while rounds are fetched.
func (r *room) beginStart(playerID string) error {
	if r.starting {
		return fmt.Errorf("%w: game is already starting", arena.ErrRejected)
	}
	if err := r.checkStart(playerID); err != nil {
		return err
	}
	r.starting = true
	return nil
}

func (r *room) commitStart(playerID string, rounds []arena.Round) error {
	r.starting = false
	if err := r.checkStart(playerID); err != nil {
		return err
	}

	timing := r.c.timing
	rounds = slices.Clone(rounds[:min(len(rounds), max(timing.Rounds, 1))])
	for i := range rounds {
		rounds[i].Choices = slices.Clone(rounds[i].Choices)
		if rounds[i].TimeLimit <= 0 {
			rounds[i].TimeLimit = timing.RoundTimeLimit
		}
	}

	for _, p := range r.players {
		p.Score = 0
		p.LastChoice = ""
		p.LastLatencyMs = 0
	}

	r.info.Status = arena.RoomPlaying
	r.sess = &session{
		id:        uuid.NewString(),
		rounds:    rounds,
		round:     1,
		status:    arena.SessionCountdown,
		countdown: timing.CountdownSteps,
		startedAt: time.Now(),
	}

	r.publish(EventGameStarted, GameStarted{Session: r.sess.view()})
	r.publish(EventRoomUpdated, RoomSnapshot{Room: r.info, Players: r.roster()})
	r.log.Info("session started", "session", r.sess.id, "rounds", len(rounds), "players", len(r.players))

	r.tickCountdown()
	return nil
}

func (r *room) tickCountdown() {
	s := r.sess
	if s.countdown <= 0 {
		r.openRound()
		return
	}
	r.publish(EventGameCountdown, GameCountdown{SecondsRemaining: s.countdown})
	s.countdown--
	r.schedule(r.c.timing.CountdownTick, r.tickCountdown)
}

func (r *room) openRound() {
	s := r.sess
	s.status = arena.SessionActive
	s.answers = make(map[string]arena.Answer, len(r.players))

	for _, p := range r.players {
		p.LastChoice = ""
		p.LastLatencyMs = 0
	}

	rd := s.current()
	r.publish(EventGameScenario, GameScenario{
		Round:       s.round,
		TotalRounds: len(s.rounds),
		Prompt:      rd.Prompt,
		Choices:     rd.PublicChoices(),
		TimeLimitMs: rd.TimeLimit.Milliseconds(),
	})
	r.schedule(rd.TimeLimit, r.closeRound)
}

// submitAnswer records at most one answer per player per round. Arrival
// order across players does not matter.
func (r *room) submitAnswer(playerID, choice string, latencyMs int64) error {
	s := r.sess
	if s == nil {
		return fmt.Errorf("%w: no game in progress", arena.ErrRejected)
	}
	if r.player(playerID) == nil {
		return fmt.Errorf("%w: player %s is not in room %s", arena.ErrNotFound, playerID, r.code)
	}
	if s.status != arena.SessionActive {
		return fmt.Errorf("%w: round %d is not accepting answers", arena.ErrRejected, s.round)
	}
	if _, dup := s.answers[playerID]; dup {
		return fmt.Errorf("%w: already answered round %d", arena.ErrRejected, s.round)
	}

	rd := s.current()
	if !rd.HasChoice(choice) {
		return fmt.Errorf("%w: unknown choice %q", arena.ErrRejected, choice)
	}

	a := arena.Answer{Choice: choice, LatencyMs: arena.ClampLatency(rd.TimeLimit, latencyMs)}
	s.answers[playerID] = a
	r.publish(EventGameAnswer, GameAnswer{PlayerID: playerID, Choice: a.Choice, ResponseTimeMs: a.LatencyMs})

	if len(s.answers) >= len(r.players) {
		r.closeRound()
	}
	return nil
}

func (r *room) closeRound() {
	r.scoreRound()
	r.schedule(r.c.timing.ReviewInterval, r.advance)
}

// scoreRound moves the session to reviewing and awards points for the
// current round. Players without a recorded answer earn nothing.
func (r *room) scoreRound() {
	s := r.sess
	r.cancelTimer()
	s.status = arena.SessionReviewing
	s.played++

	rd := s.current()
	summary := RoundSummary{
		Round:       s.round,
		TotalRounds: len(s.rounds),
		BestChoice:  rd.BestChoice,
		Rationale:   rd.Rationale,
		Results:     make([]PlayerRoundResult, 0, len(r.players)),
	}
	for _, p := range r.players {
		res := PlayerRoundResult{PlayerID: p.ID}
		if a, ok := s.answers[p.ID]; ok {
			res.Answered = true
			res.Choice = a.Choice
			res.Points = arena.Score(rd, a)
			p.LastChoice = a.Choice
			p.LastLatencyMs = a.LatencyMs
		}
		p.Score += res.Points
		res.Score = p.Score
		summary.Results = append(summary.Results, res)
	}

	r.publish(EventGameResults, GameResults{RoundSummary: summary})
}

func (r *room) advance() {
	s := r.sess
	if s.round < len(s.rounds) {
		s.round++
		r.openRound()
		return
	}
	r.finish(FinishCompleted)
}

// forfeit handles a player leaving mid-session. Their pending answer is
// dropped; a roster below the minimum ends the session with the scores
// accumulated so far.
func (r *room) forfeit(playerID string) {
	s := r.sess
	delete(s.answers, playerID)

	if len(r.players) < arena.MinPlayers {
		if s.status == arena.SessionActive {
			r.scoreRound()
		}
		r.finish(FinishAbandoned)
		return
	}

	if s.status == arena.SessionActive && len(s.answers) >= len(r.players) {
		r.closeRound()
	}
}

// finish publishes final standings and returns the room to waiting.
func (r *room) finish(reason string) {
	s := r.sess
	r.cancelTimer()
	s.status = arena.SessionFinished

	standings := arena.Rank(r.roster())
	r.publish(EventGameFinished, GameFinished{
		FinalStandings: standings,
		Reason:         reason,
		RoundsPlayed:   s.played,
	})
	r.log.Info("session finished", "session", s.id, "reason", reason, "rounds_played", s.played)

	r.c.record(arena.MatchResult{
		ID:           s.id,
		RoomCode:     r.code,
		RoundsPlayed: s.played,
		TotalRounds:  len(s.rounds),
		Completed:    reason == FinishCompleted,
		Standings:    standings,
		FinishedAt:   time.Now(),
	})

	r.sess = nil
	r.info.Status = arena.RoomWaiting
	for _, p := range r.players {
		if p.Role != arena.RoleHost {
			p.Ready = false
		}
	}
	r.publish(EventRoomUpdated, RoomSnapshot{Room: r.info, Players: r.roster()})
}
