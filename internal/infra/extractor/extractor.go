// Package extractor provides article content extraction behind a single
// provider-polymorphic adapter. Remote providers (Jina Reader, Firecrawl)
// return markdown over HTTP; the local readability provider fetches the page
// itself and converts the extracted article to markdown.
//
// All provider calls go through a circuit breaker and the shared retry
// executor. The adapter never panics; every failure is returned as an error.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"readlist-reconciler/internal/resilience/circuitbreaker"
	"readlist-reconciler/internal/resilience/retry"
)

// ErrEmptyContent indicates the provider returned no usable body text.
// Treated as transient: extraction services occasionally return empty bodies
// for pages that succeed on a later attempt.
var ErrEmptyContent = errors.New("抽出された本文が空です")

// Extraction is the outcome of a successful content extraction.
type Extraction struct {
	// Content is the extracted article body as markdown. Never empty.
	Content string

	// Title is the article title. Falls back to the URL hostname when the
	// provider supplies none.
	Title string
}

// provider is the capability a single extraction backend must offer.
// Implementations report transient failures with retry-classifiable errors.
type provider interface {
	extract(ctx context.Context, pageURL string) (*Extraction, error)
	name() string
}

// Adapter dispatches extraction to the configured provider with retry and
// circuit breaker protection.
type Adapter struct {
	provider        provider
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	timeout         time.Duration
	metricsRecorder ExtractionMetricsRecorder
}

// New creates an extraction adapter for the provider selected in cfg.
//
// Configuration problems are terminal and reported here, before any network
// attempt: an unknown provider name, a missing API key for a remote provider,
// or a malformed base URL. Invalid explicit configuration is never silently
// replaced with defaults.
func New(cfg Config) (*Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var p provider
	switch cfg.Provider {
	case ProviderJina:
		base, err := parseBaseURL(cfg.JinaBaseURL)
		if err != nil {
			return nil, err
		}
		p = &jinaProvider{client: cfg.httpClient(), apiKey: cfg.JinaAPIKey, baseURL: base}
	case ProviderFirecrawl:
		base, err := parseBaseURL(cfg.FirecrawlBaseURL)
		if err != nil {
			return nil, err
		}
		p = &firecrawlProvider{client: cfg.httpClient(), apiKey: cfg.FirecrawlAPIKey, baseURL: base}
	case ProviderReadability:
		p = newReadabilityProvider(cfg.httpClient(), cfg.MaxBodySize)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidProvider, cfg.Provider)
	}

	slog.Info("content extractor initialized",
		slog.String("provider", p.name()))

	return &Adapter{
		provider:        p,
		circuitBreaker:  circuitbreaker.New(circuitbreaker.ExtractionAPIConfig(p.name())),
		retryConfig:     retry.ExtractionConfig(),
		timeout:         cfg.Timeout,
		metricsRecorder: NewPrometheusExtractionMetrics(),
	}, nil
}

// Provider returns the name of the configured provider.
func (a *Adapter) Provider() string {
	return a.provider.name()
}

// Extract fetches the article at pageURL through the configured provider.
//
// The provider call is retried with exponential backoff; an empty body after
// trimming counts as a retryable failure. On exhaustion the last attempt's
// error is returned. A missing provider title is replaced with the URL
// hostname.
func (a *Adapter) Extract(ctx context.Context, pageURL string) (*Extraction, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	startTime := time.Now()
	var result *Extraction

	err := retry.WithBackoff(ctx, a.retryConfig, func() error {
		cbResult, err := a.circuitBreaker.Execute(func() (interface{}, error) {
			return a.provider.extract(ctx, pageURL)
		})
		if err != nil {
			return err
		}

		extraction := cbResult.(*Extraction)
		if strings.TrimSpace(extraction.Content) == "" {
			return retry.Transient(ErrEmptyContent)
		}

		result = extraction
		return nil
	})
	if err != nil {
		a.metricsRecorder.RecordExtraction(a.provider.name(), time.Since(startTime), false)
		slog.Warn("content extraction failed",
			slog.String("provider", a.provider.name()),
			slog.String("url", pageURL),
			slog.Any("error", err))
		return nil, err
	}

	if strings.TrimSpace(result.Title) == "" {
		result.Title = hostnameOf(pageURL)
	}

	a.metricsRecorder.RecordExtraction(a.provider.name(), time.Since(startTime), true)

	slog.Info("content extraction succeeded",
		slog.String("provider", a.provider.name()),
		slog.String("url", pageURL),
		slog.Int("content_length", len(result.Content)))

	return result, nil
}

// parseBaseURL validates an explicitly configured provider base URL.
// Malformed values are terminal configuration errors, not retried.
func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, raw)
	}
	return u, nil
}

func hostnameOf(pageURL string) string {
	if u, err := url.Parse(pageURL); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	return pageURL
}
