package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"readlist-reconciler/internal/resilience/circuitbreaker"
	"readlist-reconciler/internal/resilience/retry"
	"readlist-reconciler/internal/utils/text"
)

const defaultOpenAIModel = openai.GPT4oMini

// OpenAI implements Summarizer using OpenAI's chat completion API.
// Calls go through a circuit breaker shared with the Claude backend profile,
// and the package-level retry loop so attempt counts are reported.
type OpenAI struct {
	client          *openai.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	model           string
	maxTokens       int
	timeout         time.Duration
	metricsRecorder SummaryMetricsRecorder
}

// NewOpenAI creates an OpenAI summarizer from cfg. The API key must already
// be validated by Config.Validate.
func NewOpenAI(cfg Config) *OpenAI {
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	slog.Info("initialized openai summarizer",
		slog.String("model", model),
		slog.Int("max_tokens", cfg.MaxTokens))

	return &OpenAI{
		client:          openai.NewClient(cfg.OpenAIAPIKey),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.CompletionAPIConfig()),
		retryConfig:     retry.CompletionConfig(),
		model:           model,
		maxTokens:       cfg.MaxTokens,
		timeout:         cfg.Timeout,
		metricsRecorder: NewPrometheusSummaryMetrics(),
	}
}

// ModelName implements Summarizer.
func (o *OpenAI) ModelName() string {
	return o.model
}

// Summarize implements Summarizer.
func (o *OpenAI) Summarize(ctx context.Context, title, url, content string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	userMessage := buildUserMessage(title, url, content)

	return summarizeWithRetry(ctx, o.retryConfig, o.model, func(ctx context.Context) (string, error) {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.complete(ctx, userMessage)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("completion api circuit breaker open, request rejected",
					slog.String("state", o.circuitBreaker.State().String()))
				return "", fmt.Errorf("completion api unavailable: circuit breaker open")
			}
			return "", err
		}
		return cbResult.(string), nil
	})
}

// complete performs one chat-completion call without retry or breaker.
func (o *OpenAI) complete(ctx context.Context, userMessage string) (string, error) {
	start := time.Now()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.model,
		MaxTokens: o.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
	})

	duration := time.Since(start)

	if err != nil {
		o.metricsRecorder.RecordFailure(o.model)
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		o.metricsRecorder.RecordFailure(o.model)
		return "", fmt.Errorf("openai api returned no choices")
	}

	summary := resp.Choices[0].Message.Content
	o.metricsRecorder.RecordLength(text.CountRunes(summary))
	o.metricsRecorder.RecordDuration(duration)

	slog.InfoContext(ctx, "completion received",
		slog.String("model", o.model),
		slog.Int("summary_length", text.CountRunes(summary)),
		slog.Duration("duration", duration))

	return summary, nil
}
