package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"readlist-reconciler/internal/infra/extractor"
	"readlist-reconciler/internal/infra/notifier"
	"readlist-reconciler/internal/infra/store/sqlite"
	"readlist-reconciler/internal/infra/summarizer"
	workerPkg "readlist-reconciler/internal/infra/worker"
	"readlist-reconciler/internal/observability/logging"
	"readlist-reconciler/internal/observability/metrics"
	"readlist-reconciler/internal/pkg/config"
	"readlist-reconciler/internal/usecase/reconcile"
)

func main() {
	logger := logging.NewLoggerFromEnv()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewMetrics()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("pass_timeout", workerConfig.PassTimeout),
		slog.Int("health_port", workerConfig.HealthPort),
		slog.Int("metrics_port", workerConfig.MetricsPort))

	database, err := sqlite.OpenFromEnv()
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	service := buildService(logger, database)

	startMetricsServer(ctx, logger, workerConfig.MetricsPort)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	httpServer := workerPkg.NewServer(healthAddr, service, workerConfig.PassTimeout, workerMetrics, logger)
	go func() {
		if err := httpServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("worker http server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health/trigger server started", slog.String("addr", healthAddr))

	runScheduler(ctx, logger, service, workerConfig, workerMetrics, httpServer)
}

// buildService wires the reconciliation service from environment
// configuration. Extraction, summarization and notification stages are
// optional: a missing or disabled stage leaves its slot nil and the
// pass degrades to marking entries read without enrichment.
func buildService(logger *slog.Logger, database *sql.DB) *reconcile.Service {
	repo := sqlite.NewEntryRepo(database)
	settings := config.NewEnvSettingsLoader()

	ext := buildExtractor(logger)
	sum := buildSummarizer(logger)
	not := buildNotifier(logger)

	return reconcile.NewService(repo, settings, ext, sum, not, metrics.NewRecorder())
}

func buildExtractor(logger *slog.Logger) reconcile.Extractor {
	cfg, err := extractor.LoadConfigFromEnv()
	if err != nil {
		logger.Warn("content extraction disabled", slog.Any("error", err))
		return nil
	}
	adapter, err := extractor.New(cfg)
	if err != nil {
		logger.Warn("content extraction disabled", slog.Any("error", err))
		return nil
	}
	logger.Info("content extractor initialized", slog.String("provider", adapter.Provider()))
	return adapter
}

func buildSummarizer(logger *slog.Logger) summarizer.Summarizer {
	cfg := summarizer.LoadConfigFromEnv()
	sum, err := summarizer.New(cfg)
	if err != nil {
		logger.Warn("summarization disabled", slog.Any("error", err))
		return nil
	}
	if sum == nil {
		logger.Info("summarization disabled via configuration")
		return nil
	}
	logger.Info("summarizer initialized",
		slog.String("backend", string(cfg.Backend)),
		slog.String("model", sum.ModelName()))
	return sum
}

// buildNotifier loads the webhook notifier from WEBHOOK_URL. The URL
// must be HTTPS; an invalid URL disables notifications rather than
// aborting startup.
func buildNotifier(logger *slog.Logger) reconcile.Notifier {
	webhookURL := strings.TrimSpace(os.Getenv("WEBHOOK_URL"))
	if webhookURL == "" {
		logger.Info("webhook notifications disabled")
		return nil
	}

	u, err := url.Parse(webhookURL)
	if err != nil {
		logger.Warn("invalid webhook URL, disabling notifications", slog.Any("error", err))
		return nil
	}
	if u.Scheme != "https" {
		logger.Warn("webhook URL must use HTTPS, disabling notifications")
		return nil
	}

	logger.Info("webhook notifier initialized", slog.String("host", u.Host))
	return notifier.NewWebhook(notifier.WebhookConfig{
		WebhookURL: webhookURL,
		Timeout:    30 * time.Second,
	})
}

// runScheduler starts the cron scheduler and blocks until the context
// is cancelled.
func runScheduler(ctx context.Context, logger *slog.Logger, service *reconcile.Service, cfg *workerPkg.Config, workerMetrics *workerPkg.Metrics, httpServer *workerPkg.Server) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runScheduledPass(logger, service, cfg, workerMetrics)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	httpServer.SetReady(true)
	logger.Info("worker started",
		slog.String("schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone))

	<-ctx.Done()

	httpServer.SetReady(false)
	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(cfg.PassTimeout):
		logger.Warn("in-flight pass did not finish before shutdown deadline")
	}
	logger.Info("worker stopped")
}

// runScheduledPass executes one reconciliation pass with the
// configured timeout.
func runScheduledPass(logger *slog.Logger, service *reconcile.Service, cfg *workerPkg.Config, workerMetrics *workerPkg.Metrics) {
	startTime := time.Now()
	logger.Info("scheduled reconciliation pass started")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PassTimeout)
	defer cancel()

	stats := service.RunPass(ctx)
	if stats == nil {
		logger.Warn("pass skipped, previous pass still running")
		workerMetrics.RecordScheduledRun("skipped")
		metrics.RecordSkippedPass()
		return
	}

	workerMetrics.RecordScheduledRunDuration(time.Since(startTime).Seconds())
	if stats.FetchFailed {
		workerMetrics.RecordScheduledRun("failure")
		logger.Error("pass failed to fetch the reading list")
		return
	}

	workerMetrics.RecordScheduledRun("success")
	workerMetrics.RecordLastSuccess()
	logger.Info("scheduled reconciliation pass completed",
		slog.Int("total_entries", stats.TotalEntries),
		slog.Int("marked_read", stats.MarkedRead),
		slog.Int("deleted", stats.Deleted),
		slog.Int("read_failures", stats.ReadFailures),
		slog.Int("delete_failures", stats.DeleteFailures),
		slog.Int("notifications_sent", stats.NotificationsSent),
		slog.Duration("duration", stats.Duration),
	)
}
