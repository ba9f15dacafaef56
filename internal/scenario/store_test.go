package scenario

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/playperu/quizarena/internal/arena"
	"github.com/playperu/quizarena/internal/database"
	"github.com/playperu/quizarena/internal/migrations"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	return NewStore(db)
}

func TestFetchRoundsEmptyStore(t *testing.T) {
	s := newTestStore(t)

	_, err := s.FetchRounds(context.Background(), 5)
	if !errors.Is(err, arena.ErrUnavailable) {
		t.Fatalf("err = %v, want unavailable", err)
	}
}

func TestSeedDemoAndFetch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := s.SeedDemo(ctx, logger); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// Seeding twice is a no-op.
	if err := s.SeedDemo(ctx, logger); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	list, err := s.ListScenarios(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != demoScenarioID || list[0].Rounds != 5 {
		t.Fatalf("list = %+v", list)
	}

	rounds, err := s.FetchRounds(ctx, 3)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(rounds) != 3 {
		t.Fatalf("got %d rounds, want 3", len(rounds))
	}
	demo := Demo()
	for i, r := range rounds {
		if r.Prompt != demo.Rounds[i].Prompt {
			t.Errorf("round %d out of order: %q", i+1, r.Prompt)
		}
		if q, ok := r.QualityOf(r.BestChoice); !ok || q != arena.QualityOptimal {
			t.Errorf("round %d best choice grades as %q", i+1, q)
		}
	}

	rounds, err = s.FetchRounds(ctx, 50)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(rounds) != 5 {
		t.Errorf("got %d rounds, want all 5", len(rounds))
	}
}

func TestCreateAndGetScenario(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := Scenario{
		Name: "Short",
		Rounds: []Round{{
			Prompt:           "Pick one",
			Choices:          []arena.Choice{{ID: "x", Text: "X"}, {ID: "y", Text: "Y"}},
			BestChoice:       "y",
			TimeLimitSeconds: 15,
		}},
	}
	created, err := s.CreateScenario(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.CreatedAt == "" {
		t.Fatalf("created = %+v", created)
	}

	got, err := s.GetScenario(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Short" || len(got.Rounds) != 1 || got.Rounds[0].BestChoice != "y" {
		t.Errorf("got = %+v", got)
	}

	rounds, err := s.FetchRounds(ctx, 5)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(rounds) != 1 || rounds[0].TimeLimit != 15*time.Second {
		t.Errorf("rounds = %+v", rounds)
	}

	if _, err := s.GetScenario(ctx, "missing"); !errors.Is(err, arena.ErrNotFound) {
		t.Errorf("missing scenario: err = %v, want not found", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Scenario {
		return Scenario{
			Name: "ok",
			Rounds: []Round{{
				Prompt:     "p",
				Choices:    []arena.Choice{{ID: "a"}, {ID: "b"}},
				BestChoice: "a",
			}},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Scenario)
		ok     bool
	}{
		{"valid", func(*Scenario) {}, true},
		{"missing name", func(s *Scenario) { s.Name = " " }, false},
		{"no rounds", func(s *Scenario) { s.Rounds = nil }, false},
		{"missing prompt", func(s *Scenario) { s.Rounds[0].Prompt = "" }, false},
		{"single choice", func(s *Scenario) { s.Rounds[0].Choices = s.Rounds[0].Choices[:1] }, false},
		{"duplicate choice", func(s *Scenario) { s.Rounds[0].Choices[1].ID = "a" }, false},
		{"best choice not offered", func(s *Scenario) { s.Rounds[0].BestChoice = "z" }, false},
		{"unknown quality", func(s *Scenario) { s.Rounds[0].Choices[1].Quality = "great" }, false},
		{"negative time limit", func(s *Scenario) { s.Rounds[0].TimeLimitSeconds = -1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := valid()
			tt.mutate(&sc)
			err := Validate(sc)
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestStatic(t *testing.T) {
	var src Static
	if _, err := src.FetchRounds(context.Background(), 3); !errors.Is(err, arena.ErrUnavailable) {
		t.Errorf("empty static source: err = %v, want unavailable", err)
	}

	rounds := []arena.Round{{Prompt: "1"}, {Prompt: "2"}, {Prompt: "3"}}
	got, err := Static(rounds).FetchRounds(context.Background(), 2)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	got[0].Prompt = "changed"
	if len(got) != 2 || rounds[0].Prompt != "1" {
		t.Errorf("static source returned %+v and leaked writes", got)
	}
}
