package reconcile

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"readlist-reconciler/internal/domain/entity"
	"readlist-reconciler/internal/infra/extractor"
	"readlist-reconciler/internal/infra/summarizer"
	"readlist-reconciler/internal/pkg/config"
	"readlist-reconciler/internal/repository"
)

// Extractor fetches the readable body of a page. Satisfied by
// extractor.Adapter.
type Extractor interface {
	Extract(ctx context.Context, pageURL string) (*extractor.Extraction, error)
}

// Notifier posts per-entry outcome notifications. Satisfied by
// notifier.Webhook.
type Notifier interface {
	NotifySuccess(ctx context.Context, title, url, model, summary string) error
	NotifyFailure(ctx context.Context, title, url, model, errMsg string) error
}

// MetricsRecorder receives the stats of each completed pass.
type MetricsRecorder interface {
	RecordPass(stats *PassStats)
}

// PassStats summarizes one reconciliation pass.
type PassStats struct {
	StartedAt         time.Time     `json:"started_at"`
	Duration          time.Duration `json:"duration_ns"`
	TotalEntries      int           `json:"total_entries"`
	MarkedRead        int           `json:"marked_read"`
	Deleted           int           `json:"deleted"`
	ReadFailures      int           `json:"read_failures"`
	DeleteFailures    int           `json:"delete_failures"`
	NotificationsSent int           `json:"notifications_sent"`
	NotifyFailures    int           `json:"notify_failures"`
	FetchFailed       bool          `json:"fetch_failed"`
}

// Service runs reconciliation passes over the reading list.
//
// Entries are processed strictly sequentially; the only concurrency concern
// is the overlap guard, which lets at most one pass run at a time whether
// triggered by the scheduler or manually.
type Service struct {
	repo       repository.EntryRepository
	settings   config.SettingsLoader
	extractor  Extractor             // nil when no provider is configured
	summarizer summarizer.Summarizer // nil when summarization is disabled
	notifier   Notifier              // nil when no webhook is configured
	metrics    MetricsRecorder       // nil disables metrics

	passMu sync.Mutex
}

// NewService wires a reconciliation service. extractor, summarizer,
// notifier, and metrics may each be nil to disable the corresponding stage.
func NewService(repo repository.EntryRepository, settings config.SettingsLoader, ext Extractor, sum summarizer.Summarizer, not Notifier, metrics MetricsRecorder) *Service {
	return &Service{
		repo:       repo,
		settings:   settings,
		extractor:  ext,
		summarizer: sum,
		notifier:   not,
		metrics:    metrics,
	}
}

// RunPass executes one reconciliation pass and never returns an error:
// pass-level failures degrade (defaults, empty set) and per-entry failures
// are isolated and counted.
//
// A nil return means the pass was skipped because another pass was already
// in flight.
func (s *Service) RunPass(ctx context.Context) *PassStats {
	if !s.passMu.TryLock() {
		slog.WarnContext(ctx, "reconciliation pass already in flight, skipping")
		return nil
	}
	defer s.passMu.Unlock()

	stats := &PassStats{StartedAt: time.Now()}
	defer func() {
		stats.Duration = time.Since(stats.StartedAt)
		if s.metrics != nil {
			s.metrics.RecordPass(stats)
		}
		slog.InfoContext(ctx, "reconciliation pass finished",
			slog.Int("total_entries", stats.TotalEntries),
			slog.Int("marked_read", stats.MarkedRead),
			slog.Int("deleted", stats.Deleted),
			slog.Int("read_failures", stats.ReadFailures),
			slog.Int("delete_failures", stats.DeleteFailures),
			slog.Duration("duration", stats.Duration))
	}()

	settings := s.settings.Load()
	slog.InfoContext(ctx, "reconciliation pass started",
		slog.Int("days_until_read", settings.DaysUntilRead),
		slog.Int("days_until_delete", settings.DaysUntilDelete),
		slog.Int("max_entries_per_run", settings.MaxEntriesPerRun))

	entries, err := s.repo.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "entry fetch failed, aborting pass",
			slog.String("error", err.Error()))
		stats.FetchFailed = true
		return stats
	}
	stats.TotalEntries = len(entries)

	toMarkAsRead, toDelete := Partition(entries, time.Now(), settings)

	for _, entry := range toMarkAsRead {
		s.processReadTransition(ctx, entry, stats)
	}
	for _, entry := range toDelete {
		if err := s.repo.Remove(ctx, entry.URL); err != nil {
			slog.WarnContext(ctx, "entry removal failed",
				slog.String("url", entry.URL),
				slog.String("error", err.Error()))
			stats.DeleteFailures++
			continue
		}
		stats.Deleted++
	}

	return stats
}

// processReadTransition marks one entry read and, when an extraction
// provider is configured, extracts, summarizes, and notifies. Every
// failure is contained to this entry; a panic in any stage is recovered so
// the pass continues with the next entry.
func (s *Service) processReadTransition(ctx context.Context, entry *entity.ReadingListEntry, stats *PassStats) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic while processing entry",
				slog.String("url", entry.URL),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			stats.ReadFailures++
		}
	}()

	if err := s.repo.MarkRead(ctx, entry.URL); err != nil {
		slog.WarnContext(ctx, "mark-read failed",
			slog.String("url", entry.URL),
			slog.String("error", err.Error()))
		stats.ReadFailures++
		return
	}
	stats.MarkedRead++

	if s.extractor == nil || s.summarizer == nil {
		return
	}

	title := entry.DisplayTitle()

	extraction, err := s.extractor.Extract(ctx, entry.URL)
	if err != nil {
		slog.WarnContext(ctx, "extraction failed",
			slog.String("url", entry.URL),
			slog.String("error", err.Error()))
		s.notifyFailure(ctx, title, entry.URL, s.summarizer.ModelName(), err.Error(), stats)
		return
	}
	if extraction.Title != "" {
		title = extraction.Title
	}

	result, err := s.summarizer.Summarize(ctx, title, entry.URL, extraction.Content)
	if err != nil {
		model := s.summarizer.ModelName()
		if result != nil && result.Model != "" {
			model = result.Model
		}
		slog.WarnContext(ctx, "summarization failed",
			slog.String("url", entry.URL),
			slog.Int("attempts", attemptsOf(result)),
			slog.String("error", err.Error()))
		s.notifyFailure(ctx, title, entry.URL, model, err.Error(), stats)
		return
	}

	slog.InfoContext(ctx, "entry summarized",
		slog.String("url", entry.URL),
		slog.Int("attempts", result.Attempts),
		slog.String("model", result.Model))

	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifySuccess(ctx, title, entry.URL, result.Model, result.Summary); err != nil {
		slog.WarnContext(ctx, "success notification failed",
			slog.String("url", entry.URL),
			slog.String("error", err.Error()))
		stats.NotifyFailures++
		return
	}
	stats.NotificationsSent++
}

func (s *Service) notifyFailure(ctx context.Context, title, url, model, errMsg string, stats *PassStats) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyFailure(ctx, title, url, model, errMsg); err != nil {
		slog.WarnContext(ctx, "failure notification failed",
			slog.String("url", url),
			slog.String("error", err.Error()))
		stats.NotifyFailures++
		return
	}
	stats.NotificationsSent++
}

func attemptsOf(result *summarizer.Result) int {
	if result == nil {
		return 0
	}
	return result.Attempts
}
