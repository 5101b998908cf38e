package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// WebhookConfig contains configuration for webhook notifications.
type WebhookConfig struct {
	// WebhookURL is the incoming-webhook URL, including any auth token.
	WebhookURL string

	// Timeout is the HTTP request timeout for one post.
	Timeout time.Duration
}

// Webhook sends notifications to a Slack-compatible incoming webhook.
//
// Posts are rate-limited to 1 request per second (the incoming-webhook
// limit) but never retried: any non-2xx response or network failure is
// returned to the caller.
type Webhook struct {
	config      WebhookConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewWebhook creates a Webhook notifier with the given configuration.
func NewWebhook(config WebhookConfig) *Webhook {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &Webhook{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: NewRateLimiter(1.0, 1),
	}
}

// webhookPayload is the JSON body sent to the webhook.
type webhookPayload struct {
	Text string `json:"text"`
}

// NotifySuccess implements Notifier.
func (w *Webhook) NotifySuccess(ctx context.Context, title, url, model, summary string) error {
	return w.Post(ctx, FormatSuccessMessage(title, url, model, summary))
}

// NotifyFailure implements Notifier.
func (w *Webhook) NotifyFailure(ctx context.Context, title, url, model, errMsg string) error {
	return w.Post(ctx, FormatFailureMessage(title, url, model, errMsg))
}

// Post sends one message to the webhook as {"text": message}.
//
// A non-2xx response becomes a typed error embedding the status code and
// status text; network-level errors propagate wrapped with %w so callers
// can still unwrap the transport error.
func (w *Webhook) Post(ctx context.Context, message string) error {
	requestID := uuid.New().String()

	jsonData, err := json.Marshal(webhookPayload{Text: message})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.WebhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := w.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	start := time.Now()
	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	duration := time.Since(start)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		slog.InfoContext(ctx, "webhook notification sent",
			slog.String("request_id", requestID),
			slog.Int("status", resp.StatusCode),
			slog.Duration("duration", duration))
		return nil
	}

	slog.WarnContext(ctx, "webhook notification rejected",
		slog.String("request_id", requestID),
		slog.Int("status", resp.StatusCode),
		slog.String("body", string(body)),
		slog.Duration("duration", duration))

	statusLine := fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{
			RetryAfter: retryAfterOf(resp),
			Message:    fmt.Sprintf("webhook rate limited: %s", statusLine),
		}
	}
	if resp.StatusCode >= 500 {
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("webhook server error: %s", statusLine),
		}
	}
	return &ClientError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("webhook client error: %s", statusLine),
	}
}

// retryAfterOf reads the Retry-After header, defaulting to one second.
func retryAfterOf(resp *http.Response) time.Duration {
	if raw := resp.Header.Get("Retry-After"); raw != "" {
		if secs, err := time.ParseDuration(raw + "s"); err == nil && secs > 0 {
			return secs
		}
	}
	return time.Second
}
