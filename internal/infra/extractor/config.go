package extractor

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"
)

// Provider identifies a content-extraction backend.
type Provider string

// Supported extraction providers.
const (
	ProviderJina        Provider = "jina"
	ProviderFirecrawl   Provider = "firecrawl"
	ProviderReadability Provider = "readability"
)

// Configuration errors. All of them are terminal: they are reported before
// any network attempt and never retried.
var (
	ErrInvalidProvider = errors.New("invalid extraction provider")
	ErrInvalidBaseURL  = errors.New("invalid extraction base URL")
	ErrMissingAPIKey   = errors.New("extraction API key not configured")
)

// Default provider endpoints.
const (
	defaultJinaBaseURL      = "https://r.jina.ai"
	defaultFirecrawlBaseURL = "https://api.firecrawl.dev"
)

// Config holds configuration for the extraction adapter.
// Exactly one provider is selected; only that provider's credential is used.
type Config struct {
	// Provider selects the extraction backend.
	Provider Provider

	// JinaAPIKey authenticates against the Jina Reader API.
	JinaAPIKey string

	// JinaBaseURL is the Jina Reader endpoint. Default: https://r.jina.ai
	JinaBaseURL string

	// FirecrawlAPIKey authenticates against the Firecrawl API.
	FirecrawlAPIKey string

	// FirecrawlBaseURL is the Firecrawl endpoint. Default: https://api.firecrawl.dev
	FirecrawlBaseURL string

	// Timeout bounds one extraction including all retry attempts.
	Timeout time.Duration

	// MaxBodySize limits HTTP response bodies read by the local readability
	// provider, in bytes.
	MaxBodySize int64

	// Client is the HTTP client used for provider calls. A default client
	// with TLS 1.2+ is created when nil.
	Client *http.Client
}

// DefaultConfig returns the default extraction configuration.
func DefaultConfig() Config {
	return Config{
		Provider:         ProviderJina,
		JinaBaseURL:      defaultJinaBaseURL,
		FirecrawlBaseURL: defaultFirecrawlBaseURL,
		Timeout:          60 * time.Second,
		MaxBodySize:      10 * 1024 * 1024, // 10MB
	}
}

// Validate checks provider selection and credentials.
// Selecting a remote provider without a usable API key is itself a failure,
// reported without any network attempt.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderJina:
		if c.JinaAPIKey == "" {
			return fmt.Errorf("%w: Jina AI APIキーが設定されていません", ErrMissingAPIKey)
		}
	case ProviderFirecrawl:
		if c.FirecrawlAPIKey == "" {
			return fmt.Errorf("%w: Firecrawl APIキーが設定されていません", ErrMissingAPIKey)
		}
	case ProviderReadability:
		// No credential required.
	default:
		return fmt.Errorf("%w: %q", ErrInvalidProvider, c.Provider)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	return nil
}

// LoadConfigFromEnv loads extraction configuration from environment variables.
//
// Environment variables:
//   - EXTRACTOR_PROVIDER: "jina", "firecrawl" or "readability" (default: jina)
//   - JINA_API_KEY / JINA_BASE_URL
//   - FIRECRAWL_API_KEY / FIRECRAWL_BASE_URL
//   - EXTRACTOR_TIMEOUT: duration string (default: 60s)
//   - EXTRACTOR_MAX_BODY_SIZE: integer in bytes (default: 10485760)
//
// Unset base URLs fall back to the provider defaults; an explicitly set but
// malformed base URL surfaces as an error from New, never a silent default.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if val := os.Getenv("EXTRACTOR_PROVIDER"); val != "" {
		cfg.Provider = Provider(val)
	}
	cfg.JinaAPIKey = os.Getenv("JINA_API_KEY")
	if val := os.Getenv("JINA_BASE_URL"); val != "" {
		cfg.JinaBaseURL = val
	}
	cfg.FirecrawlAPIKey = os.Getenv("FIRECRAWL_API_KEY")
	if val := os.Getenv("FIRECRAWL_BASE_URL"); val != "" {
		cfg.FirecrawlBaseURL = val
	}

	if val := os.Getenv("EXTRACTOR_TIMEOUT"); val != "" {
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid EXTRACTOR_TIMEOUT: %v (expected format: '60s', '2m')", err)
		}
		cfg.Timeout = parsed
	}

	if val := os.Getenv("EXTRACTOR_MAX_BODY_SIZE"); val != "" {
		parsed, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid EXTRACTOR_MAX_BODY_SIZE: %v", err)
		}
		cfg.MaxBodySize = parsed
	}

	return cfg, nil
}

// httpClient returns the configured client or a default with enforced TLS 1.2+.
func (c *Config) httpClient() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12, // Enforce TLS 1.2+
			},
		},
	}
}
