package worker

import (
	"fmt"
	"log/slog"
	"time"

	"readlist-reconciler/internal/pkg/config"
)

// Config holds the configuration for the reconciler worker.
// It controls the cron schedule, timezone, per-pass timeout and the
// port of the health/trigger HTTP server.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
//
// All fields have defaults and validation rules so the worker can
// start safely even with missing or invalid configuration.
type Config struct {
	// CronSchedule is the cron expression for scheduled passes.
	// Format: "minute hour day month weekday"
	// Example: "0 6 * * *" (every day at 6:00)
	// Default: "0 6 * * *"
	CronSchedule string

	// Timezone is the IANA timezone name used for cron scheduling.
	// Example: "Asia/Tokyo", "UTC"
	// Default: "Asia/Tokyo"
	Timezone string

	// PassTimeout is the maximum duration of a single reconciliation
	// pass. Scheduled runs are cancelled when it elapses.
	// Default: 15 minutes
	PassTimeout time.Duration

	// HealthPort is the port of the health/trigger HTTP server.
	// Range: 1024-65535
	// Default: 9091
	HealthPort int

	// MetricsPort is the port of the Prometheus metrics server.
	// Range: 1024-65535
	// Default: 9090
	MetricsPort int
}

// DefaultConfig returns a Config with production defaults: a daily
// pass at 6:00 JST, a 15-minute pass timeout and the usual exporter
// ports.
func DefaultConfig() Config {
	return Config{
		CronSchedule: "0 6 * * *",
		Timezone:     "Asia/Tokyo",
		PassTimeout:  15 * time.Minute,
		HealthPort:   9091,
		MetricsPort:  9090,
	}
}

// Validate checks the configuration values with the reusable
// validators from internal/pkg/config. All field errors are collected
// and returned together.
func (c *Config) Validate() error {
	var errors []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errors = append(errors, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errors = append(errors, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.PassTimeout); err != nil {
		errors = append(errors, fmt.Errorf("pass timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errors = append(errors, fmt.Errorf("health port: %w", err))
	}
	if err := config.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errors = append(errors, fmt.Errorf("metrics port: %w", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation failed: %v", errors)
	}
	return nil
}

// LoadConfigFromEnv loads the worker configuration from environment
// variables with validation and automatic fallback to defaults.
//
// It follows the fail-open strategy: each field starts from
// DefaultConfig(), is loaded and validated individually, and falls
// back to its default on failure with a warning log and a metrics
// increment. The function never returns an error.
//
// Environment variables:
//   - RECONCILE_CRON_SCHEDULE: cron expression (default "0 6 * * *")
//   - WORKER_TIMEZONE: IANA timezone name (default "Asia/Tokyo")
//   - PASS_TIMEOUT: duration string, e.g. "15m" (default 15 minutes)
//   - WORKER_HEALTH_PORT: integer 1024-65535 (default 9091)
//   - WORKER_METRICS_PORT: integer 1024-65535 (default 9090)
func LoadConfigFromEnv(logger *slog.Logger, metrics *Metrics) (*Config, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	warn := func(field string, result config.ConfigLoadResult) {
		fallbackApplied = true
		metrics.RecordValidationError(field)
		metrics.RecordFallback(field, "default")
		for _, warning := range result.Warnings {
			logger.Warn("configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", warning))
		}
	}

	result := config.LoadEnvWithFallback("RECONCILE_CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = result.Value.(string)
	if result.FallbackApplied {
		warn("cron_schedule", result)
	}

	result = config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	if result.FallbackApplied {
		warn("timezone", result)
	}

	// Pass timeout is capped at 2h so a wedged provider cannot stall
	// the scheduler across runs.
	result = config.LoadEnvDuration("PASS_TIMEOUT", cfg.PassTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 1*time.Minute, 2*time.Hour)
	})
	cfg.PassTimeout = result.Value.(time.Duration)
	if result.FallbackApplied {
		warn("pass_timeout", result)
	}

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	if result.FallbackApplied {
		warn("health_port", result)
	}

	result = config.LoadEnvInt("WORKER_METRICS_PORT", cfg.MetricsPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.MetricsPort = result.Value.(int)
	if result.FallbackApplied {
		warn("metrics_port", result)
	}

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}
