// Package scenario stores decision scenarios in SQLite and hands their
// rounds to new sessions.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/playperu/quizarena/internal/arena"
)

// ErrInvalid reports a scenario that failed validation.
var ErrInvalid = errors.New("invalid scenario")

type Scenario struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Rounds      []Round `json:"rounds"`
	CreatedAt   string  `json:"createdAt,omitempty"`
}

type Round struct {
	Prompt           string         `json:"prompt"`
	Choices          []arena.Choice `json:"choices"`
	BestChoice       string         `json:"bestChoice"`
	Rationale        string         `json:"rationale,omitempty"`
	TimeLimitSeconds int            `json:"timeLimitSeconds,omitempty"`
}

// Summary is the catalogue entry of a scenario.
type Summary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Rounds    int    `json:"rounds"`
	CreatedAt string `json:"createdAt"`
}

// Arena converts a stored round to the form sessions play. A zero time
// limit is left for the session to default.
func (r Round) Arena() arena.Round {
	return arena.Round{
		Prompt:     r.Prompt,
		Choices:    slices.Clone(r.Choices),
		BestChoice: r.BestChoice,
		Rationale:  r.Rationale,
		TimeLimit:  time.Duration(r.TimeLimitSeconds) * time.Second,
	}
}

// Validate checks that every round can be played and scored.
func Validate(sc Scenario) error {
	if strings.TrimSpace(sc.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if len(sc.Rounds) == 0 {
		return fmt.Errorf("%w: at least one round is required", ErrInvalid)
	}
	for i, r := range sc.Rounds {
		n := i + 1
		if strings.TrimSpace(r.Prompt) == "" {
			return fmt.Errorf("%w: round %d: prompt is required", ErrInvalid, n)
		}
		if len(r.Choices) < 2 {
			return fmt.Errorf("%w: round %d: at least two choices are required", ErrInvalid, n)
		}
		seen := make(map[string]bool, len(r.Choices))
		for _, c := range r.Choices {
			if c.ID == "" || seen[c.ID] {
				return fmt.Errorf("%w: round %d: choice ids must be unique and non-empty", ErrInvalid, n)
			}
			seen[c.ID] = true
			switch c.Quality {
			case "", arena.QualityOptimal, arena.QualityAdequate, arena.QualityPoor:
			default:
				return fmt.Errorf("%w: round %d: unknown quality %q", ErrInvalid, n, c.Quality)
			}
		}
		if !seen[r.BestChoice] {
			return fmt.Errorf("%w: round %d: best choice %q is not offered", ErrInvalid, n, r.BestChoice)
		}
		if r.TimeLimitSeconds < 0 {
			return fmt.Errorf("%w: round %d: time limit must not be negative", ErrInvalid, n)
		}
	}
	return nil
}

// Static serves a fixed round list. Useful for tests and offline play.
type Static []arena.Round

func (s Static) FetchRounds(_ context.Context, count int) ([]arena.Round, error) {
	if len(s) == 0 || count <= 0 {
		return nil, fmt.Errorf("%w: no rounds available", arena.ErrUnavailable)
	}
	return slices.Clone(s[:min(count, len(s))]), nil
}
