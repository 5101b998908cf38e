// Package sqlite provides the SQLite-backed reading-list entry store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens (creating if necessary) the reading-list database at path and
// bootstraps the schema. WAL mode keeps the worker's writes from blocking a
// concurrent reader such as the sqlite3 CLI.
func Open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=ON&_synchronous=NORMAL", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	slog.Info("reading-list database opened", slog.String("path", path))
	return db, nil
}

// OpenFromEnv opens the database at READLIST_DB_PATH, defaulting to
// readlist.db in the working directory.
func OpenFromEnv() (*sql.DB, error) {
	path := os.Getenv("READLIST_DB_PATH")
	if path == "" {
		path = "readlist.db"
	}
	return Open(path)
}

// migrate creates the entries table. Timestamps are stored as Unix
// milliseconds so day arithmetic stays exact across timezones.
func migrate(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS entries (
    url              TEXT PRIMARY KEY,
    title            TEXT NOT NULL DEFAULT '',
    has_been_read    INTEGER NOT NULL DEFAULT 0,
    creation_time    INTEGER NOT NULL,
    last_update_time INTEGER NOT NULL
)`
	if _, err := db.Exec(schema); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_entries_has_been_read ON entries(has_been_read)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_creation_time ON entries(creation_time)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}
	return nil
}
