package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"studyforge/internal/resilience/circuitbreaker"
	"studyforge/internal/resilience/retry"
	"studyforge/internal/utils/text"
)

// ClaudeConfig holds configuration parameters for the Claude completion client.
type ClaudeConfig struct {
	// Model is the Anthropic model identifier to use.
	Model string

	// MaxTokens is the maximum number of tokens for the model response.
	MaxTokens int

	// Timeout is the maximum duration for a single completion API call.
	Timeout time.Duration
}

// LoadClaudeConfig loads Claude configuration from environment variables.
//
// Environment variables:
//   - CLAUDE_MODEL: model identifier (default: claude-sonnet-4-5-20250929)
func LoadClaudeConfig() ClaudeConfig {
	config := ClaudeConfig{
		Model:     string(anthropic.ModelClaudeSonnet4_5_20250929),
		MaxTokens: 2048,
		Timeout:   60 * time.Second,
	}

	if v := os.Getenv("CLAUDE_MODEL"); v != "" {
		config.Model = v
	}

	return config
}

// Claude implements the Client interface using Anthropic's Messages API.
// It includes circuit breaker and retry logic for improved reliability.
type Claude struct {
	client          anthropic.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	config          ClaudeConfig
	metricsRecorder CompletionMetricsRecorder
}

// NewClaude creates a new Claude completion client with the given API key.
func NewClaude(apiKey string) *Claude {
	config := LoadClaudeConfig()

	slog.Info("Initialized Claude completion client",
		slog.String("model", config.Model))

	return &Claude{
		client:          anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.CompletionAPIConfig()),
		retryConfig:     retry.CompletionAPIConfig(),
		config:          config,
		metricsRecorder: NewPrometheusCompletionMetrics(),
	}
}

// Complete sends the prompts to Claude and returns the completion text.
func (c *Claude) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var result string

	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doComplete(ctx, systemPrompt, userPrompt)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("claude api circuit breaker open, request rejected",
					slog.String("service", "claude-api"),
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("claude api unavailable: circuit breaker open")
			}
			return err
		}

		result = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		c.metricsRecorder.RecordFailure()
		return "", fmt.Errorf("claude completion failed after retries: %w", retryErr)
	}

	return result, nil
}

// Ping reports the hosted API as reachable. Anthropic's API has no cheap
// probe endpoint, so reachability surfaces on the first real request.
func (c *Claude) Ping(_ context.Context) error {
	return nil
}

// doComplete performs the actual API call without retry or circuit breaker.
func (c *Claude) doComplete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	// Generate unique request ID for tracing
	requestID := uuid.New().String()

	slog.InfoContext(ctx, "Starting completion request",
		slog.String("request_id", requestID),
		slog.String("model", c.config.Model),
		slog.Int("user_length", text.CountRunes(userPrompt)))

	start := time.Now()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(userPrompt),
			),
		},
	})

	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "Completion request failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		slog.ErrorContext(ctx, "Claude API returned empty response",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration))
		return "", fmt.Errorf("claude api returned empty response")
	}

	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		slog.ErrorContext(ctx, "Claude API returned unexpected response type",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration))
		return "", fmt.Errorf("claude api returned unexpected response type")
	}

	output := textBlock.Text

	slog.InfoContext(ctx, "Completion request finished",
		slog.String("request_id", requestID),
		slog.Int("output_length", text.CountRunes(output)),
		slog.Duration("duration", duration))

	c.metricsRecorder.RecordResponseLength(text.CountRunes(output))
	c.metricsRecorder.RecordDuration(duration)

	return output, nil
}
