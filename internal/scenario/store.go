package scenario

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/playperu/quizarena/internal/arena"
)

// Store keeps scenarios as JSONB documents in the scenarios table.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// FetchRounds picks a random scenario with rounds and returns up to count
// of them in order. Any storage failure is reported as unavailable.
func (s *Store) FetchRounds(ctx context.Context, count int) ([]arena.Round, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `
		SELECT json(data) FROM scenarios
		WHERE json_array_length(data, '$.rounds') > 0
		ORDER BY random()
		LIMIT 1
	`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no scenarios with rounds", arena.ErrUnavailable)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: loading scenario: %w", arena.ErrUnavailable, err)
	}

	var sc Scenario
	if err := json.Unmarshal([]byte(data), &sc); err != nil {
		return nil, fmt.Errorf("%w: decoding scenario: %w", arena.ErrUnavailable, err)
	}

	n := min(count, len(sc.Rounds))
	rounds := make([]arena.Round, n)
	for i := range n {
		rounds[i] = sc.Rounds[i].Arena()
	}
	return rounds, nil
}

func (s *Store) CreateScenario(ctx context.Context, sc Scenario) (Scenario, error) {
	if err := Validate(sc); err != nil {
		return Scenario{}, err
	}
	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	sc.CreatedAt = ""

	data, err := json.Marshal(sc)
	if err != nil {
		return Scenario{}, err
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO scenarios (id, name, data) VALUES (?, ?, jsonb(?))
		RETURNING created_at
	`, sc.ID, sc.Name, string(data)).Scan(&sc.CreatedAt)
	if err != nil {
		return Scenario{}, fmt.Errorf("inserting scenario: %w", err)
	}
	return sc, nil
}

func (s *Store) GetScenario(ctx context.Context, id string) (Scenario, error) {
	var data, createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT json(data), created_at FROM scenarios WHERE id = ?
	`, id).Scan(&data, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Scenario{}, fmt.Errorf("%w: scenario %s", arena.ErrNotFound, id)
	}
	if err != nil {
		return Scenario{}, err
	}

	var sc Scenario
	if err := json.Unmarshal([]byte(data), &sc); err != nil {
		return Scenario{}, err
	}
	sc.CreatedAt = createdAt
	return sc, nil
}

func (s *Store) ListScenarios(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, json_array_length(data, '$.rounds'), created_at
		FROM scenarios
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Summary{}
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.ID, &sm.Name, &sm.Rounds, &sm.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, sm)
	}
	return list, rows.Err()
}

// SeedDemo inserts the demo scenario if the store is empty.
func (s *Store) SeedDemo(ctx context.Context, logger *slog.Logger) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scenarios`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	sc, err := s.CreateScenario(ctx, Demo())
	if err != nil {
		return fmt.Errorf("seeding demo scenario: %w", err)
	}
	logger.Info("demo scenario seeded", "scenario", sc.ID, "rounds", len(sc.Rounds))
	return nil
}
