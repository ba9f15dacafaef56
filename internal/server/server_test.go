package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/playperu/quizarena/internal/arena"
	"github.com/playperu/quizarena/internal/coordinator"
	"github.com/playperu/quizarena/internal/database"
	"github.com/playperu/quizarena/internal/gateway"
	"github.com/playperu/quizarena/internal/leaderboard"
	"github.com/playperu/quizarena/internal/migrations"
	"github.com/playperu/quizarena/internal/scenario"
)

const adminPassword = "s3cret"

type fakeBoard struct {
	entries []leaderboard.Entry
	err     error
	limit   int
}

func (f *fakeBoard) Top(_ context.Context, n int) ([]leaderboard.Entry, error) {
	f.limit = n
	return f.entries, f.err
}

func (f *fakeBoard) Recent(_ context.Context, n int) ([]arena.MatchResult, error) {
	f.limit = n
	return []arena.MatchResult{}, f.err
}

type testEnv struct {
	handler http.Handler
	coord   *coordinator.Coordinator
	board   *fakeBoard
}

func newTestEnv(t *testing.T, adminHash string) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := database.Open(context.Background(), database.Memory)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	coord := coordinator.New(logger, scenario.Static{}, gateway.NewHub(logger))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = coord.Shutdown(ctx)
	})

	board := &fakeBoard{}
	srv := New(":0", logger, Deps{
		Rooms:             coord,
		Leaderboard:       board,
		Scenarios:         scenario.NewStore(db),
		AdminPasswordHash: adminHash,
	}, nil)
	return &testEnv{handler: srv.Handler(), coord: coord, board: board}
}

func adminHash(t *testing.T) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	return string(h)
}

func (e *testEnv) do(t *testing.T, method, path string, body any, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if auth {
		req.SetBasicAuth(adminUser, adminPassword)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestListAndGetRooms(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()

	open, err := env.coord.CreateRoom(ctx, "H1", "Host", 4, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.coord.CreateRoom(ctx, "H2", "Hidden", 4, true); err != nil {
		t.Fatalf("create private: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/api/rooms", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var list RoomListResponse
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(list.Rooms) != 1 || list.Rooms[0].Code != open.Room.Code {
		t.Errorf("rooms = %+v, want only %s", list.Rooms, open.Room.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/rooms/"+strings.ToLower(open.Room.Code), nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var view arena.RoomView
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if view.Room.HostID != "H1" || len(view.Players) != 1 {
		t.Errorf("view = %+v", view)
	}

	if rec := env.do(t, http.MethodGet, "/api/rooms/NOPE00", nil, false); rec.Code != http.StatusNotFound {
		t.Errorf("missing room status = %d, want 404", rec.Code)
	}
}

func TestLeaderboard(t *testing.T) {
	env := newTestEnv(t, "")
	env.board.entries = []leaderboard.Entry{{Rank: 1, PlayerID: "p1", Name: "Ann", Points: 300, Wins: 2}}

	tests := []struct {
		query      string
		wantStatus int
		wantLimit  int
	}{
		{"", http.StatusOK, defaultLimit},
		{"?limit=3", http.StatusOK, 3},
		{"?limit=1000", http.StatusOK, maxLimit},
		{"?limit=0", http.StatusBadRequest, 0},
		{"?limit=ten", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			env.board.limit = 0
			rec := env.do(t, http.MethodGet, "/api/leaderboard"+tt.query, nil, false)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if env.board.limit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", env.board.limit, tt.wantLimit)
			}
		})
	}

	rec := env.do(t, http.MethodGet, "/api/leaderboard", nil, false)
	var resp LeaderboardResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(resp.Entries) != 1 || resp.Entries[0].Wins != 2 {
		t.Errorf("entries = %+v", resp.Entries)
	}

	env.board.err = errors.New("redis down")
	for _, path := range []string{"/api/leaderboard", "/api/matches"} {
		if rec := env.do(t, http.MethodGet, path, nil, false); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s with store down: status = %d, want 503", path, rec.Code)
		}
	}
}

func TestAdminAuth(t *testing.T) {
	disabled := newTestEnv(t, "")
	if rec := disabled.do(t, http.MethodGet, "/api/admin/scenarios", nil, true); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("unconfigured admin: status = %d, want 503", rec.Code)
	}

	env := newTestEnv(t, adminHash(t))
	if rec := env.do(t, http.MethodGet, "/api/admin/scenarios", nil, false); rec.Code != http.StatusUnauthorized {
		t.Errorf("no credentials: status = %d, want 401", rec.Code)
	} else if rec.Header().Get("WWW-Authenticate") == "" {
		t.Error("missing WWW-Authenticate challenge")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/scenarios", nil)
	req.SetBasicAuth(adminUser, "wrong")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status = %d, want 401", rec.Code)
	}

	if rec := env.do(t, http.MethodGet, "/api/admin/scenarios", nil, true); rec.Code != http.StatusOK {
		t.Errorf("valid credentials: status = %d, want 200", rec.Code)
	}
}

func TestAdminCloseRoom(t *testing.T) {
	env := newTestEnv(t, adminHash(t))
	v, err := env.coord.CreateRoom(context.Background(), "H", "Host", 2, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	rec := env.do(t, http.MethodDelete, "/api/admin/rooms/"+v.Room.Code, nil, true)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if _, err := env.coord.Room(v.Room.Code); !errors.Is(err, arena.ErrNotFound) {
		t.Errorf("room still exists: %v", err)
	}
	if _, ok := env.coord.RoomOf("H"); ok {
		t.Error("host still bound after close")
	}

	if rec := env.do(t, http.MethodDelete, "/api/admin/rooms/"+v.Room.Code, nil, true); rec.Code != http.StatusNotFound {
		t.Errorf("closing twice: status = %d, want 404", rec.Code)
	}
}

func TestAdminScenarios(t *testing.T) {
	env := newTestEnv(t, adminHash(t))

	invalid := scenario.Scenario{Name: "broken", Rounds: []scenario.Round{{Prompt: "p"}}}
	if rec := env.do(t, http.MethodPost, "/api/admin/scenarios", invalid, true); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid scenario: status = %d, want 400", rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/api/admin/scenarios", scenario.Demo(), true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	var created scenario.Scenario
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decoding: %v", err)
	}

	rec = env.do(t, http.MethodGet, "/api/admin/scenarios", nil, true)
	var list []scenario.Summary
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID || list[0].Rounds != len(created.Rounds) {
		t.Errorf("list = %+v", list)
	}

	if rec := env.do(t, http.MethodGet, "/api/admin/scenarios/"+created.ID, nil, true); rec.Code != http.StatusOK {
		t.Errorf("get status = %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/admin/scenarios/missing", nil, true); rec.Code != http.StatusNotFound {
		t.Errorf("missing scenario status = %d, want 404", rec.Code)
	}
}

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{arena.ErrNotFound, http.StatusNotFound},
		{arena.ErrRejected, http.StatusConflict},
		{arena.ErrForbidden, http.StatusForbidden},
		{arena.ErrUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeDomainError(rec, tt.err)
		if rec.Code != tt.want {
			t.Errorf("%v: status = %d, want %d", tt.err, rec.Code, tt.want)
		}
	}
}
