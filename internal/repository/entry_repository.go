// Package repository defines the persistence interfaces consumed by the use
// case layer. Concrete implementations live under internal/infra.
package repository

import (
	"context"

	"readlist-reconciler/internal/domain/entity"
)

// EntryRepository manages reading-list entries.
//
// The reconciler treats the store as the source of truth and works on
// read-then-act snapshots: entries may change between List and a mutation, so
// MarkRead and Remove must tolerate already-read and already-removed entries
// by returning entity.ErrNotFound rather than corrupting state.
type EntryRepository interface {
	// List retrieves all entries in insertion order (oldest first).
	List(ctx context.Context) ([]*entity.ReadingListEntry, error)

	// Get retrieves one entry by URL.
	// Returns entity.ErrNotFound if no entry has that URL.
	Get(ctx context.Context, url string) (*entity.ReadingListEntry, error)

	// Add saves a new entry. The entry URL must be unique within the list.
	Add(ctx context.Context, entry *entity.ReadingListEntry) error

	// MarkRead transitions the entry with the given URL to the read state and
	// refreshes its last-update timestamp.
	// Returns entity.ErrNotFound if no entry has that URL.
	MarkRead(ctx context.Context, url string) error

	// Remove deletes the entry with the given URL.
	// Returns entity.ErrNotFound if no entry has that URL.
	Remove(ctx context.Context, url string) error
}
