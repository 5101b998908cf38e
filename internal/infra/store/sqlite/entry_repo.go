package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"readlist-reconciler/internal/domain/entity"
	"readlist-reconciler/internal/repository"
)

// EntryRepo implements the EntryRepository interface using SQLite.
type EntryRepo struct{ db *sql.DB }

// NewEntryRepo creates a new SQLite-backed entry repository.
func NewEntryRepo(db *sql.DB) repository.EntryRepository {
	return &EntryRepo{db: db}
}

// List retrieves all entries ordered by creation time (oldest first), so a
// capped pass works through the backlog front to back.
func (repo *EntryRepo) List(ctx context.Context) ([]*entity.ReadingListEntry, error) {
	const query = `
SELECT url, title, has_been_read, creation_time, last_update_time
FROM entries
ORDER BY creation_time ASC
`

	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]*entity.ReadingListEntry, 0, 100)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows.Err: %w", err)
	}

	return entries, nil
}

// Get retrieves one entry by URL. Returns entity.ErrNotFound when no entry
// exists for the URL.
func (repo *EntryRepo) Get(ctx context.Context, url string) (*entity.ReadingListEntry, error) {
	const query = `
SELECT url, title, has_been_read, creation_time, last_update_time
FROM entries
WHERE url = ?
LIMIT 1
`
	if url == "" {
		return nil, fmt.Errorf("Get: %w: empty url", entity.ErrInvalidInput)
	}
	row := repo.db.QueryRowContext(ctx, query, url)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, fmt.Errorf("Get: QueryRowContext: %w", err)
	}
	return entry, nil
}

// Add inserts a new entry. The URL must not already exist.
func (repo *EntryRepo) Add(ctx context.Context, entry *entity.ReadingListEntry) error {
	if entry == nil {
		return fmt.Errorf("Add: %w: nil entry", entity.ErrInvalidInput)
	}
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("Add: %w", err)
	}

	const query = `
INSERT INTO entries
(url, title, has_been_read, creation_time, last_update_time)
VALUES (?, ?, ?, ?, ?)
`
	_, err := repo.db.ExecContext(ctx, query,
		entry.URL, entry.Title, entry.HasBeenRead,
		entry.CreationTime.UnixMilli(), entry.LastUpdateTime.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("Add: ExecContext: %w", err)
	}
	return nil
}

// MarkRead flips an entry to read and bumps its last update time. Returns
// entity.ErrNotFound when no entry exists for the URL.
func (repo *EntryRepo) MarkRead(ctx context.Context, url string) error {
	const query = `
UPDATE entries SET
	has_been_read    = 1,
	last_update_time = ?
WHERE url = ?
`
	res, err := repo.db.ExecContext(ctx, query, time.Now().UnixMilli(), url)
	if err != nil {
		return fmt.Errorf("MarkRead: ExecContext: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("MarkRead: RowsAffected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("MarkRead %q: %w", url, entity.ErrNotFound)
	}
	return nil
}

// Remove deletes an entry by URL. Returns entity.ErrNotFound when no entry
// exists for the URL.
func (repo *EntryRepo) Remove(ctx context.Context, url string) error {
	const query = `DELETE FROM entries WHERE url = ?`

	res, err := repo.db.ExecContext(ctx, query, url)
	if err != nil {
		return fmt.Errorf("Remove: ExecContext: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Remove: RowsAffected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("Remove %q: %w", url, entity.ErrNotFound)
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanEntry.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*entity.ReadingListEntry, error) {
	var (
		entry        entity.ReadingListEntry
		creationMs   int64
		lastUpdateMs int64
	)
	if err := s.Scan(&entry.URL, &entry.Title, &entry.HasBeenRead, &creationMs, &lastUpdateMs); err != nil {
		return nil, err
	}
	entry.CreationTime = time.UnixMilli(creationMs)
	entry.LastUpdateTime = time.UnixMilli(lastUpdateMs)
	return &entry, nil
}
