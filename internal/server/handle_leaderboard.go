package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/playperu/quizarena/internal/arena"
	"github.com/playperu/quizarena/internal/leaderboard"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

type LeaderboardResponse struct {
	Entries []leaderboard.Entry `json:"entries"`
}

type MatchesResponse struct {
	Matches []arena.MatchResult `json:"matches"`
}

// parseLimit reads ?limit=N, clamped to [1, maxLimit].
func parseLimit(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return min(n, maxLimit), true
}

func handleLeaderboard(logger *slog.Logger, board Leaderboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, ok := parseLimit(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}

		entries, err := board.Top(r.Context(), limit)
		if err != nil {
			logger.Error("reading leaderboard failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "leaderboard unavailable")
			return
		}
		writeJSON(w, http.StatusOK, LeaderboardResponse{Entries: entries})
	}
}

func handleRecentMatches(logger *slog.Logger, board Leaderboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, ok := parseLimit(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}

		matches, err := board.Recent(r.Context(), limit)
		if err != nil {
			logger.Error("reading match history failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "match history unavailable")
			return
		}
		writeJSON(w, http.StatusOK, MatchesResponse{Matches: matches})
	}
}
