package server

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/quizarena/internal/arena"
	"github.com/playperu/quizarena/internal/leaderboard"
	"github.com/playperu/quizarena/internal/scenario"
)

// Rooms is the part of the coordinator the HTTP surface reads and
// administers.
type Rooms interface {
	ListRooms() []arena.Room
	Room(code string) (arena.RoomView, error)
	CloseRoom(ctx context.Context, code, reason string) error
}

type Leaderboard interface {
	Top(ctx context.Context, n int) ([]leaderboard.Entry, error)
	Recent(ctx context.Context, n int) ([]arena.MatchResult, error)
}

type Scenarios interface {
	ListScenarios(ctx context.Context) ([]scenario.Summary, error)
	GetScenario(ctx context.Context, id string) (scenario.Scenario, error)
	CreateScenario(ctx context.Context, sc scenario.Scenario) (scenario.Scenario, error)
}

type Deps struct {
	Rooms       Rooms
	Leaderboard Leaderboard
	Scenarios   Scenarios

	// AdminPasswordHash is the bcrypt hash guarding /api/admin.
	AdminPasswordHash string
}

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("QuizArena API", "/openapi.json", "/docs"))

	r.Route("/api", func(r chi.Router) {
		r.Get("/rooms", handleListRooms(deps.Rooms))
		r.Get("/rooms/{code}", handleGetRoom(deps.Rooms))
		r.Get("/leaderboard", handleLeaderboard(logger, deps.Leaderboard))
		r.Get("/matches", handleRecentMatches(logger, deps.Leaderboard))

		r.Route("/admin", func(r chi.Router) {
			r.Use(adminAuthMiddleware(logger, deps.AdminPasswordHash))
			r.Delete("/rooms/{code}", handleAdminCloseRoom(logger, deps.Rooms))
			r.Get("/scenarios", handleAdminListScenarios(deps.Scenarios))
			r.Post("/scenarios", handleAdminCreateScenario(logger, deps.Scenarios))
			r.Get("/scenarios/{id}", handleAdminGetScenario(deps.Scenarios))
		})
	})
}
