// Package summarizer provides AI-powered article summarization implementations.
// It includes adapters for OpenAI and Claude (Anthropic) chat-completion APIs
// with retry, circuit breaker, and Prometheus observability.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"readlist-reconciler/internal/resilience/retry"
	"readlist-reconciler/internal/utils/text"
)

// ErrEmptySummary indicates the completion API returned an empty or
// whitespace-only summary. It is treated the same as an API error and
// retried.
var ErrEmptySummary = errors.New("要約結果が空です")

// Result holds the outcome of a summarization request.
//
// Attempts is the 1-based number of the attempt that terminated the retry
// loop: 1 when the first call succeeded, up to the configured maximum when
// every attempt failed. It is populated on failure as well so callers can
// report how many calls were spent.
type Result struct {
	Summary  string
	Attempts int
	Model    string
}

// Summarizer generates a short Japanese summary for an article.
type Summarizer interface {
	// Summarize produces a summary of content for the article at url.
	// On failure the returned Result is still non-nil and carries the
	// attempt count and model name; the error holds the last attempt's
	// failure unchanged.
	Summarize(ctx context.Context, title, url, content string) (*Result, error)

	// ModelName returns the configured model identifier, used in
	// notification headers.
	ModelName() string
}

// systemPrompt is the fixed instruction sent with every summarization
// request. The three-line shape matches the notification message layout.
const systemPrompt = "あなたは技術記事を要約するアシスタントです。" +
	"与えられた記事の本文を日本語で3行に要約してください。" +
	"各行は独立した簡潔な一文とし、行ごとに改行で区切ってください。"

// maxInputChars bounds the article body embedded in the user message so the
// request stays well under the completion models' context limits.
const maxInputChars = 10000

// buildUserMessage embeds the article metadata and (possibly truncated)
// body into the user-turn prompt.
func buildUserMessage(title, url, content string) string {
	if length := text.CountRunes(content); length > maxInputChars {
		content = text.TruncateRunes(content, maxInputChars) + "...\n(内容が長いため切り詰めました)"
		slog.Warn("article body truncated for completion api",
			slog.Int("original_length", length),
			slog.Int("truncated_length", maxInputChars))
	}
	return fmt.Sprintf("タイトル: %s\nURL: %s\n\n本文:\n%s", title, url, content)
}

// summarizeWithRetry drives the retry loop for a single completion backend.
//
// The loop is implemented here rather than delegated to retry.WithBackoff
// because the attempt count must be reported in the Result; the generic
// executor does not expose it. Backoff semantics are the same: after failed
// attempt k the loop sleeps cfg.InitialDelay * cfg.Multiplier^(k-1).
//
// An empty or whitespace-only completion counts as a failed attempt
// (ErrEmptySummary). After the final attempt the last error is returned
// unchanged alongside a Result carrying the total attempt count.
func summarizeWithRetry(ctx context.Context, cfg retry.Config, model string, call func(context.Context) (string, error)) (*Result, error) {
	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		summary, err := call(ctx)
		if err == nil && strings.TrimSpace(summary) == "" {
			err = ErrEmptySummary
		}
		if err == nil {
			return &Result{Summary: summary, Attempts: attempt, Model: model}, nil
		}

		lastErr = err
		slog.WarnContext(ctx, "summarization attempt failed",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", cfg.MaxAttempts),
			slog.String("model", model),
			slog.String("error", err.Error()))

		if attempt == cfg.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return &Result{Attempts: attempt, Model: model}, ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	slog.ErrorContext(ctx, "summarization failed after all attempts",
		slog.Int("attempts", cfg.MaxAttempts),
		slog.String("model", model),
		slog.String("error", lastErr.Error()))

	return &Result{Attempts: cfg.MaxAttempts, Model: model}, lastErr
}
