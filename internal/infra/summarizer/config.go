package summarizer

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Backend selects which completion API serves summarization requests.
type Backend string

const (
	BackendOpenAI Backend = "openai"
	BackendClaude Backend = "claude"
	BackendNoop   Backend = "noop"
	BackendNone   Backend = "none"
)

var (
	// ErrInvalidBackend indicates an unrecognized SUMMARIZER_BACKEND value.
	ErrInvalidBackend = errors.New("invalid summarizer backend")

	// ErrMissingAPIKey indicates the selected backend has no credential.
	// Configuration errors are terminal and never retried.
	ErrMissingAPIKey = errors.New("missing summarizer api key")
)

// Config holds configuration for the completion-API summarizers.
// Loaded from environment variables with fallback to defaults.
type Config struct {
	// Backend selects the completion provider. Default: openai.
	Backend Backend

	// OpenAIAPIKey authenticates against the OpenAI API.
	OpenAIAPIKey string

	// AnthropicAPIKey authenticates against the Anthropic API.
	AnthropicAPIKey string

	// Model is the provider model identifier. Empty selects the backend
	// default.
	Model string

	// MaxTokens caps the completion response size.
	MaxTokens int

	// Timeout bounds a single summarization call including retries.
	Timeout time.Duration
}

// DefaultConfig returns the built-in summarizer configuration.
func DefaultConfig() Config {
	return Config{
		Backend:   BackendOpenAI,
		MaxTokens: 1024,
		Timeout:   60 * time.Second,
	}
}

// Validate checks backend selection and credential presence.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OpenAI APIキーが設定されていません", ErrMissingAPIKey)
		}
	case BackendClaude:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("%w: Anthropic APIキーが設定されていません", ErrMissingAPIKey)
		}
	case BackendNoop, BackendNone:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.Backend)
	}

	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// LoadConfigFromEnv loads summarizer configuration from environment
// variables.
//
// Environment variables:
//   - SUMMARIZER_BACKEND: openai, claude, noop, or none (default: openai)
//   - OPENAI_API_KEY: OpenAI credential
//   - ANTHROPIC_API_KEY: Anthropic credential
//   - SUMMARIZER_MODEL: model identifier override
//   - SUMMARIZER_MAX_TOKENS: completion token cap (default: 1024)
//   - SUMMARIZER_TIMEOUT: per-call timeout (default: 60s)
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()

	if backend := os.Getenv("SUMMARIZER_BACKEND"); backend != "" {
		cfg.Backend = Backend(backend)
	}
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.Model = os.Getenv("SUMMARIZER_MODEL")

	if raw := os.Getenv("SUMMARIZER_MAX_TOKENS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			cfg.MaxTokens = parsed
		}
	}
	if raw := os.Getenv("SUMMARIZER_TIMEOUT"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			cfg.Timeout = parsed
		}
	}
	return cfg
}

// New builds the Summarizer selected by cfg.Backend. A nil return with a
// nil error means summarization is disabled (BackendNone).
func New(cfg Config) (Summarizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case BackendOpenAI:
		return NewOpenAI(cfg), nil
	case BackendClaude:
		return NewClaude(cfg), nil
	case BackendNoop:
		return NewNoOp(), nil
	case BackendNone:
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidBackend, cfg.Backend)
}
