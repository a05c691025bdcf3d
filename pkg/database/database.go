// Package database owns the embedded SQLite store: opening the database
// file, creating the schema and seeding demo data on first run.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS ads (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	description TEXT,
	price       INTEGER DEFAULT 0,
	image_url   TEXT,
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_ads_created_at ON ads(created_at);
`

// NewDatabase opens (creating if necessary) the SQLite database at path.
// The parent directory is created first so a fresh checkout works without
// manual setup. The returned handle is shared for the process lifetime;
// a single connection keeps SQLite's writer serialization trivial.
func NewDatabase(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", path, err)
	}

	return db, nil
}

// Migrate creates the ads table and its index. Safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to run schema migration: %w", err)
	}
	return nil
}

var seedAds = []struct {
	Title       string
	Description string
	Price       int64
	ImageURL    string
}{
	{
		Title:       "Fender Stratocaster, Sunburst",
		Description: "Klassiker aus 2018, wenig gespielt, inkl. Gigbag.",
		Price:       650,
		ImageURL:    "/static/img/strat.jpg",
	},
	{
		Title:       "Yamaha Stage Custom Schlagzeug",
		Description: "Komplettes Shellset ohne Becken, Kesseln in gutem Zustand.",
		Price:       420,
		ImageURL:    "",
	},
	{
		Title:       "Suche Bassist:in für Jam-Sessions",
		Description: "Wir proben dienstags in Kreuzberg. Stilrichtung Indie/Funk.",
		Price:       0,
		ImageURL:    "",
	},
}

// SeedIfEmpty inserts the demo ads when the table has no rows at all.
// Count and insert run in one transaction so the empty-check stays atomic;
// a store that already contains any row is left untouched. Returns the
// number of rows inserted.
func SeedIfEmpty(ctx context.Context, db *sql.DB) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM ads").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count ads: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO ads (title, description, price, image_url) VALUES (?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare seed insert: %w", err)
	}
	defer stmt.Close()

	for _, ad := range seedAds {
		if _, err := stmt.ExecContext(ctx, ad.Title, ad.Description, ad.Price, ad.ImageURL); err != nil {
			return 0, fmt.Errorf("failed to insert seed ad %q: %w", ad.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit seed transaction: %w", err)
	}
	return len(seedAds), nil
}
