package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestNewDatabaseCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "board.db")

	db, err := NewDatabase(path)
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Fatalf("parent directory not created: %v", err)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	db, err := NewDatabase(filepath.Join(t.TempDir(), "board.db"))
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("first Migrate: %v", err)
	}
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	if _, err := db.ExecContext(ctx, "INSERT INTO ads (title) VALUES ('test')"); err != nil {
		t.Fatalf("insert after migrations: %v", err)
	}
}

func TestSeedIfEmptyRunsExactlyOnce(t *testing.T) {
	db, err := NewDatabase(filepath.Join(t.TempDir(), "board.db"))
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	seeded, err := SeedIfEmpty(ctx, db)
	if err != nil {
		t.Fatalf("first SeedIfEmpty: %v", err)
	}
	if seeded == 0 {
		t.Fatal("expected seed rows on an empty store")
	}

	again, err := SeedIfEmpty(ctx, db)
	if err != nil {
		t.Fatalf("second SeedIfEmpty: %v", err)
	}
	if again != 0 {
		t.Fatalf("second seed inserted %d rows, want 0", again)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ads").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != seeded {
		t.Fatalf("store has %d rows, want %d", count, seeded)
	}
}

func TestSeedIfEmptySkipsNonEmptyStore(t *testing.T) {
	db, err := NewDatabase(filepath.Join(t.TempDir(), "board.db"))
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO ads (title) VALUES ('existing')"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	seeded, err := SeedIfEmpty(ctx, db)
	if err != nil {
		t.Fatalf("SeedIfEmpty: %v", err)
	}
	if seeded != 0 {
		t.Fatalf("seeded %d rows into a non-empty store, want 0", seeded)
	}
}
