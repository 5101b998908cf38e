package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// DaysUntilDeleteDisabled is the sentinel disabling deletion entirely.
const DaysUntilDeleteDisabled = -1

// ReconciliationSettings holds the per-pass thresholds. The reconciler
// reads settings fresh at the start of each pass; they are never persisted
// by this service.
type ReconciliationSettings struct {
	// DaysUntilRead is the age (from creation) after which an unread entry
	// is marked read. Must be >= 1.
	DaysUntilRead int `yaml:"days_until_read"`

	// DaysUntilDelete is the age (from last update) after which a read
	// entry is deleted. -1 disables deletion; otherwise must be >= 1.
	DaysUntilDelete int `yaml:"days_until_delete"`

	// MaxEntriesPerRun caps how many read transitions one pass performs.
	// Deletions are not capped.
	MaxEntriesPerRun int `yaml:"max_entries_per_run"`
}

// DefaultSettings returns the built-in thresholds used whenever settings
// cannot be loaded or fail validation.
func DefaultSettings() ReconciliationSettings {
	return ReconciliationSettings{
		DaysUntilRead:    30,
		DaysUntilDelete:  DaysUntilDeleteDisabled,
		MaxEntriesPerRun: 3,
	}
}

// Validate checks threshold ranges.
func (s ReconciliationSettings) Validate() error {
	if s.DaysUntilRead < 1 {
		return fmt.Errorf("days_until_read must be >= 1, got %d", s.DaysUntilRead)
	}
	if s.DaysUntilDelete != DaysUntilDeleteDisabled && s.DaysUntilDelete < 1 {
		return fmt.Errorf("days_until_delete must be -1 or >= 1, got %d", s.DaysUntilDelete)
	}
	if s.MaxEntriesPerRun < 1 {
		return fmt.Errorf("max_entries_per_run must be >= 1, got %d", s.MaxEntriesPerRun)
	}
	return nil
}

// SettingsLoader loads ReconciliationSettings for each pass. Load never
// fails: on any internal error the built-in defaults are returned.
type SettingsLoader interface {
	Load() ReconciliationSettings
}

// EnvSettingsLoader reads settings from an optional YAML file, with
// environment variables taking precedence per field.
//
// Environment variables:
//   - RECONCILE_DAYS_UNTIL_READ (default: 30, >= 1)
//   - RECONCILE_DAYS_UNTIL_DELETE (default: -1 = disabled, or >= 1)
//   - RECONCILE_MAX_ENTRIES_PER_RUN (default: 3, >= 1)
//   - RECONCILE_SETTINGS_FILE: YAML file path (optional)
type EnvSettingsLoader struct {
	metrics *ConfigMetrics
}

// NewEnvSettingsLoader creates the environment-backed settings loader.
func NewEnvSettingsLoader() *EnvSettingsLoader {
	return &EnvSettingsLoader{metrics: NewConfigMetrics("reconciler")}
}

// Load implements SettingsLoader. Every fallback is logged and recorded in
// metrics; the caller always receives usable settings.
func (l *EnvSettingsLoader) Load() ReconciliationSettings {
	settings := DefaultSettings()

	if path := os.Getenv("RECONCILE_SETTINGS_FILE"); path != "" {
		settings = l.loadFile(path, settings)
	}

	settings.DaysUntilRead = l.intFromEnv("RECONCILE_DAYS_UNTIL_READ", settings.DaysUntilRead, func(v int) error {
		if v < 1 {
			return fmt.Errorf("must be >= 1, got %d", v)
		}
		return nil
	})
	settings.DaysUntilDelete = l.intFromEnv("RECONCILE_DAYS_UNTIL_DELETE", settings.DaysUntilDelete, func(v int) error {
		if v != DaysUntilDeleteDisabled && v < 1 {
			return fmt.Errorf("must be -1 or >= 1, got %d", v)
		}
		return nil
	})
	settings.MaxEntriesPerRun = l.intFromEnv("RECONCILE_MAX_ENTRIES_PER_RUN", settings.MaxEntriesPerRun, func(v int) error {
		if v < 1 {
			return fmt.Errorf("must be >= 1, got %d", v)
		}
		return nil
	})

	if err := settings.Validate(); err != nil {
		slog.Warn("loaded settings failed validation, using defaults",
			slog.String("error", err.Error()))
		l.metrics.RecordValidationError("settings")
		return DefaultSettings()
	}

	l.metrics.RecordLoadTimestamp()
	return settings
}

// loadFile merges a YAML settings file over current. A missing or
// malformed file leaves current untouched.
func (l *EnvSettingsLoader) loadFile(path string, current ReconciliationSettings) ReconciliationSettings {
	raw, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("settings file unreadable, using defaults",
			slog.String("path", path),
			slog.String("error", err.Error()))
		l.metrics.RecordFallback("settings_file", "unreadable")
		return current
	}

	merged := current
	if err := yaml.Unmarshal(raw, &merged); err != nil {
		slog.Warn("settings file malformed, using defaults",
			slog.String("path", path),
			slog.String("error", err.Error()))
		l.metrics.RecordFallback("settings_file", "malformed")
		return current
	}
	return merged
}

func (l *EnvSettingsLoader) intFromEnv(key string, def int, validate func(int) error) int {
	result := LoadEnvInt(key, def, validate)
	for _, warning := range result.Warnings {
		slog.Warn("settings fallback applied", slog.String("warning", warning))
	}
	if result.FallbackApplied {
		l.metrics.RecordFallback(key, "invalid_value")
	}
	return result.Value.(int)
}
