package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnvString(t *testing.T) {
	t.Setenv("TEST_STRING", "custom_value")
	assert.Equal(t, "custom_value", LoadEnvString("TEST_STRING", "default"))

	assert.Equal(t, "default", LoadEnvString("TEST_STRING_UNSET", "default"))
}

func TestLoadEnvWithFallback_ValidValue(t *testing.T) {
	t.Setenv("TEST_CRON", "0 6 * * *")

	result := LoadEnvWithFallback("TEST_CRON", "30 5 * * *", ValidateCronSchedule)

	assert.Equal(t, "0 6 * * *", result.Value)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvWithFallback_InvalidValueFallsBack(t *testing.T) {
	t.Setenv("TEST_CRON", "not a cron expression")

	result := LoadEnvWithFallback("TEST_CRON", "30 5 * * *", ValidateCronSchedule)

	assert.Equal(t, "30 5 * * *", result.Value)
	assert.Len(t, result.Warnings, 1)
	assert.True(t, result.FallbackApplied)
}

func TestLoadEnvWithFallback_UnsetUsesDefaultSilently(t *testing.T) {
	result := LoadEnvWithFallback("TEST_CRON_UNSET", "30 5 * * *", ValidateCronSchedule)

	assert.Equal(t, "30 5 * * *", result.Value)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvDuration(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		want         time.Duration
		wantFallback bool
	}{
		{"valid duration", "45m", 45 * time.Minute, false},
		{"unparsable duration", "eleventy", 30 * time.Minute, true},
		{"negative duration rejected by validator", "-5m", 30 * time.Minute, true},
		{"unset uses default", "", 30 * time.Minute, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv("TEST_DURATION", tt.envValue)
			}

			result := LoadEnvDuration("TEST_DURATION", 30*time.Minute, ValidatePositiveDuration)

			assert.Equal(t, tt.want, result.Value)
			assert.Equal(t, tt.wantFallback, result.FallbackApplied)
		})
	}
}

func TestLoadEnvInt(t *testing.T) {
	validator := func(v int) error { return ValidateIntRange(v, 1, 100) }

	t.Setenv("TEST_INT", "42")
	result := LoadEnvInt("TEST_INT", 3, validator)
	assert.Equal(t, 42, result.Value)
	assert.False(t, result.FallbackApplied)

	t.Setenv("TEST_INT", "9000")
	result = LoadEnvInt("TEST_INT", 3, validator)
	assert.Equal(t, 3, result.Value)
	assert.True(t, result.FallbackApplied)

	t.Setenv("TEST_INT", "not-a-number")
	result = LoadEnvInt("TEST_INT", 3, validator)
	assert.Equal(t, 3, result.Value)
	assert.True(t, result.FallbackApplied)
}

func TestLoadEnvBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	result := LoadEnvBool("TEST_BOOL", false)
	assert.Equal(t, true, result.Value)

	t.Setenv("TEST_BOOL", "maybe")
	result = LoadEnvBool("TEST_BOOL", false)
	assert.Equal(t, false, result.Value)
	assert.True(t, result.FallbackApplied)
}
