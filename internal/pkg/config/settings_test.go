package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	assert.Equal(t, 30, settings.DaysUntilRead)
	assert.Equal(t, DaysUntilDeleteDisabled, settings.DaysUntilDelete)
	assert.Equal(t, 3, settings.MaxEntriesPerRun)
	assert.NoError(t, settings.Validate())
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings ReconciliationSettings
		wantErr  bool
	}{
		{"defaults", DefaultSettings(), false},
		{"delete enabled", ReconciliationSettings{DaysUntilRead: 7, DaysUntilDelete: 60, MaxEntriesPerRun: 3}, false},
		{"zero days until read", ReconciliationSettings{DaysUntilRead: 0, DaysUntilDelete: -1, MaxEntriesPerRun: 3}, true},
		{"zero days until delete", ReconciliationSettings{DaysUntilRead: 30, DaysUntilDelete: 0, MaxEntriesPerRun: 3}, true},
		{"zero cap", ReconciliationSettings{DaysUntilRead: 30, DaysUntilDelete: -1, MaxEntriesPerRun: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEnvSettingsLoader_FromEnv(t *testing.T) {
	t.Setenv("RECONCILE_DAYS_UNTIL_READ", "14")
	t.Setenv("RECONCILE_DAYS_UNTIL_DELETE", "60")
	t.Setenv("RECONCILE_MAX_ENTRIES_PER_RUN", "5")

	settings := NewEnvSettingsLoader().Load()

	assert.Equal(t, 14, settings.DaysUntilRead)
	assert.Equal(t, 60, settings.DaysUntilDelete)
	assert.Equal(t, 5, settings.MaxEntriesPerRun)
}

func TestEnvSettingsLoader_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("RECONCILE_DAYS_UNTIL_READ", "0")
	t.Setenv("RECONCILE_DAYS_UNTIL_DELETE", "-2")
	t.Setenv("RECONCILE_MAX_ENTRIES_PER_RUN", "banana")

	settings := NewEnvSettingsLoader().Load()

	assert.Equal(t, DefaultSettings(), settings)
}

func TestEnvSettingsLoader_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "days_until_read: 7\ndays_until_delete: 90\nmax_entries_per_run: 10\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RECONCILE_SETTINGS_FILE", path)

	settings := NewEnvSettingsLoader().Load()

	assert.Equal(t, 7, settings.DaysUntilRead)
	assert.Equal(t, 90, settings.DaysUntilDelete)
	assert.Equal(t, 10, settings.MaxEntriesPerRun)
}

func TestEnvSettingsLoader_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("days_until_read: 7\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RECONCILE_SETTINGS_FILE", path)
	t.Setenv("RECONCILE_DAYS_UNTIL_READ", "21")

	settings := NewEnvSettingsLoader().Load()

	assert.Equal(t, 21, settings.DaysUntilRead)
}

func TestEnvSettingsLoader_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("RECONCILE_SETTINGS_FILE", "/nonexistent/settings.yaml")

	settings := NewEnvSettingsLoader().Load()

	assert.Equal(t, DefaultSettings(), settings)
}
