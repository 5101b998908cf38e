// Package reconcile implements the reading-list reconciliation pass:
// aging unread entries are marked read (with optional extraction, summary,
// and webhook notification), and old read entries are deleted.
package reconcile

import (
	"time"

	"readlist-reconciler/internal/domain/entity"
	"readlist-reconciler/internal/pkg/config"
)

const hoursPerDay = 24

// daysSince returns the age of t at now in real-valued days. No rounding:
// 29.96 days is not yet 30.
func daysSince(t, now time.Time) float64 {
	return now.Sub(t).Hours() / hoursPerDay
}

// ShouldMarkAsRead reports whether an unread entry has aged past
// daysUntilRead since its creation. An exactly-equal age counts as
// eligible.
func ShouldMarkAsRead(entry *entity.ReadingListEntry, now time.Time, daysUntilRead int) bool {
	if entry.HasBeenRead {
		return false
	}
	return daysSince(entry.CreationTime, now) >= float64(daysUntilRead)
}

// ShouldDelete reports whether a read entry has aged past daysUntilDelete
// since its last update. The -1 sentinel disables deletion entirely. An
// exactly-equal age counts as eligible.
func ShouldDelete(entry *entity.ReadingListEntry, now time.Time, daysUntilDelete int) bool {
	if daysUntilDelete == config.DaysUntilDeleteDisabled {
		return false
	}
	if !entry.HasBeenRead {
		return false
	}
	return daysSince(entry.LastUpdateTime, now) >= float64(daysUntilDelete)
}

// Partition splits entries into the read-transition and deletion sets.
// toMarkAsRead is truncated to maxEntriesPerRun in source order; toDelete
// is not capped, since a disabled threshold already bounds it and deletions
// are cheap single calls.
func Partition(entries []*entity.ReadingListEntry, now time.Time, settings config.ReconciliationSettings) (toMarkAsRead, toDelete []*entity.ReadingListEntry) {
	for _, entry := range entries {
		switch {
		case ShouldMarkAsRead(entry, now, settings.DaysUntilRead):
			if len(toMarkAsRead) < settings.MaxEntriesPerRun {
				toMarkAsRead = append(toMarkAsRead, entry)
			}
		case ShouldDelete(entry, now, settings.DaysUntilDelete):
			toDelete = append(toDelete, entry)
		}
	}
	return toMarkAsRead, toDelete
}
