package migrations_test

import (
	"context"
	"testing"

	"github.com/playperu/quizarena/internal/database"
	"github.com/playperu/quizarena/internal/migrations"
)

func TestMigrations(t *testing.T) {
	db, err := database.Open(context.Background(), database.Memory)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	var name string
	err = db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?", "scenarios",
	).Scan(&name)
	if err != nil {
		t.Errorf("table scenarios not found: %v", err)
	}

	// jsonb round trip through the documents column.
	if _, err := db.Exec(
		`INSERT INTO scenarios (id, name, data) VALUES (?, ?, jsonb(?))`,
		"s1", "one", `{"rounds":[{"prompt":"p"}]}`,
	); err != nil {
		t.Fatalf("insert: %v", err)
	}
	var rounds int
	if err := db.QueryRow(`SELECT json_array_length(data, '$.rounds') FROM scenarios WHERE id = 's1'`).Scan(&rounds); err != nil {
		t.Fatalf("query: %v", err)
	}
	if rounds != 1 {
		t.Errorf("rounds = %d, want 1", rounds)
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	db, err := database.Open(context.Background(), database.Memory)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := migrations.Run(db); err != nil {
		t.Fatalf("second run (should be no-op): %v", err)
	}
}
