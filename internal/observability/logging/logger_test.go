package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
	}{
		{"default log level", ""},
		{"debug log level", "debug"},
		{"warn log level", "warn"},
		{"invalid log level defaults to info", "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.logLevel != "" {
				t.Setenv("LOG_LEVEL", tt.logLevel)
			}
			assert.NotNil(t, NewLogger())
		})
	}
}

func TestNewLoggerFromEnv(t *testing.T) {
	t.Run("default is JSON", func(t *testing.T) {
		logger := NewLoggerFromEnv()
		require.NotNil(t, logger)
		_, ok := logger.Handler().(*slog.JSONHandler)
		assert.True(t, ok, "expected JSON handler, got %T", logger.Handler())
	})

	t.Run("LOG_FORMAT=text selects the text handler", func(t *testing.T) {
		t.Setenv("LOG_FORMAT", "text")
		logger := NewLoggerFromEnv()
		require.NotNil(t, logger)
		_, ok := logger.Handler().(*slog.TextHandler)
		assert.True(t, ok, "expected text handler, got %T", logger.Handler())
	})
}

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run("LOG_LEVEL="+tt.value, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("LOG_LEVEL", tt.value)
			}
			assert.Equal(t, tt.want, levelFromEnv())
		})
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	logger := WithFields(base, map[string]interface{}{
		"component": "reconciler",
		"pass":      1,
	})
	logger.Info("message")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "reconciler", record["component"])
	assert.Equal(t, float64(1), record["pass"])
}

func TestLoggerContextRoundTrip(t *testing.T) {
	base := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	ctx := WithLogger(context.Background(), base)
	assert.Same(t, base, FromContext(ctx))

	// Without a stored logger, the default is returned.
	assert.Equal(t, slog.Default(), FromContext(context.Background()))
}
