package config

import (
	"log/slog"
	"slices"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if !slices.Equal(cfg.PaidTiers, []string{"premium", "pro"}) {
		t.Errorf("PaidTiers = %v", cfg.PaidTiers)
	}
	want := Game{Rounds: 5, CountdownSeconds: 3, ReviewInterval: 5 * time.Second, RoundTimeLimit: 20 * time.Second, SeedDemo: true}
	if cfg.Game != want {
		t.Errorf("Game = %+v, want %+v", cfg.Game, want)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("PAID_TIERS", " Gold ,gold,, silver")
	t.Setenv("GAME_ROUNDS", "3")
	t.Setenv("GAME_REVIEW_INTERVAL", "250ms")
	t.Setenv("GAME_SEED_DEMO", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if !slices.Equal(cfg.PaidTiers, []string{"gold", "silver"}) {
		t.Errorf("PaidTiers = %v", cfg.PaidTiers)
	}
	if cfg.Game.Rounds != 3 || cfg.Game.ReviewInterval != 250*time.Millisecond || cfg.Game.SeedDemo {
		t.Errorf("Game = %+v", cfg.Game)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"GAME_ROUNDS", "0"},
		{"GAME_COUNTDOWN_SECONDS", "-1"},
		{"GAME_ROUND_TIME_LIMIT", "0s"},
		{"GAME_ROUNDS", "many"},
		{"LOG_LEVEL", "LOUD"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
