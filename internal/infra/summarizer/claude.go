package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sony/gobreaker"

	"readlist-reconciler/internal/resilience/circuitbreaker"
	"readlist-reconciler/internal/resilience/retry"
	"readlist-reconciler/internal/utils/text"
)

var defaultClaudeModel = string(anthropic.ModelClaudeSonnet4_5_20250929)

// Claude implements Summarizer using Anthropic's Messages API.
type Claude struct {
	client          anthropic.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	model           string
	maxTokens       int
	timeout         time.Duration
	metricsRecorder SummaryMetricsRecorder
}

// NewClaude creates a Claude summarizer from cfg. The API key must already
// be validated by Config.Validate.
func NewClaude(cfg Config) *Claude {
	model := cfg.Model
	if model == "" {
		model = defaultClaudeModel
	}

	slog.Info("initialized claude summarizer",
		slog.String("model", model),
		slog.Int("max_tokens", cfg.MaxTokens))

	return &Claude{
		client:          anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey)),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.CompletionAPIConfig()),
		retryConfig:     retry.CompletionConfig(),
		model:           model,
		maxTokens:       cfg.MaxTokens,
		timeout:         cfg.Timeout,
		metricsRecorder: NewPrometheusSummaryMetrics(),
	}
}

// ModelName implements Summarizer.
func (c *Claude) ModelName() string {
	return c.model
}

// Summarize implements Summarizer.
func (c *Claude) Summarize(ctx context.Context, title, url, content string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	userMessage := buildUserMessage(title, url, content)

	return summarizeWithRetry(ctx, c.retryConfig, c.model, func(ctx context.Context) (string, error) {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.complete(ctx, userMessage)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("completion api circuit breaker open, request rejected",
					slog.String("state", c.circuitBreaker.State().String()))
				return "", fmt.Errorf("completion api unavailable: circuit breaker open")
			}
			return "", err
		}
		return cbResult.(string), nil
	})
}

// complete performs one Messages API call without retry or breaker.
func (c *Claude) complete(ctx context.Context, userMessage string) (string, error) {
	start := time.Now()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(userMessage),
			),
		},
	})

	duration := time.Since(start)

	if err != nil {
		c.metricsRecorder.RecordFailure(c.model)
		return "", fmt.Errorf("claude api error: %w", err)
	}
	if len(message.Content) == 0 {
		c.metricsRecorder.RecordFailure(c.model)
		return "", fmt.Errorf("claude api returned no content")
	}

	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		c.metricsRecorder.RecordFailure(c.model)
		return "", fmt.Errorf("claude api returned unexpected content type")
	}

	summary := textBlock.Text
	c.metricsRecorder.RecordLength(text.CountRunes(summary))
	c.metricsRecorder.RecordDuration(duration)

	slog.InfoContext(ctx, "completion received",
		slog.String("model", c.model),
		slog.Int("summary_length", text.CountRunes(summary)),
		slog.Duration("duration", duration))

	return summary, nil
}
