package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/quizarena.db"`
	RedisURL string     `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// AdminPasswordHash is a bcrypt hash. Admin endpoints are disabled
	// when it is empty.
	AdminPasswordHash string   `env:"ADMIN_PASSWORD_HASH"`
	PaidTiers         []string `env:"PAID_TIERS" envSeparator:"," envDefault:"premium,pro"`

	Game Game `envPrefix:"GAME_"`
}

// Game holds session pacing.
type Game struct {
	Rounds           int           `env:"ROUNDS" envDefault:"5"`
	CountdownSeconds int           `env:"COUNTDOWN_SECONDS" envDefault:"3"`
	ReviewInterval   time.Duration `env:"REVIEW_INTERVAL" envDefault:"5s"`
	RoundTimeLimit   time.Duration `env:"ROUND_TIME_LIMIT" envDefault:"20s"`
	SeedDemo         bool          `env:"SEED_DEMO" envDefault:"true"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Game.Rounds < 1:
		return fmt.Errorf("GAME_ROUNDS must be at least 1, got %d", c.Game.Rounds)
	case c.Game.CountdownSeconds < 0:
		return fmt.Errorf("GAME_COUNTDOWN_SECONDS must not be negative, got %d", c.Game.CountdownSeconds)
	case c.Game.ReviewInterval < 0:
		return fmt.Errorf("GAME_REVIEW_INTERVAL must not be negative, got %s", c.Game.ReviewInterval)
	case c.Game.RoundTimeLimit <= 0:
		return fmt.Errorf("GAME_ROUND_TIME_LIMIT must be positive, got %s", c.Game.RoundTimeLimit)
	}

	tiers := c.PaidTiers[:0]
	for _, t := range c.PaidTiers {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" && !slices.Contains(tiers, t) {
			tiers = append(tiers, t)
		}
	}
	c.PaidTiers = tiers
	return nil
}
