package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"studyforge/internal/resilience/circuitbreaker"
	"studyforge/internal/resilience/retry"
	"studyforge/internal/utils/text"
)

// OpenAICompatible implements the Client interface against any server that
// speaks the OpenAI chat-completion wire format, including locally hosted
// model servers. It includes circuit breaker and retry logic and records
// request metrics for observability.
type OpenAICompatible struct {
	client          *openai.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	config          *Config
	metricsRecorder CompletionMetricsRecorder
}

// NewOpenAICompatible creates a completion client for the configured endpoint.
// It automatically configures circuit breaker, retry logic, and metrics recording.
func NewOpenAICompatible(config *Config) *OpenAICompatible {
	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(config.BaseURL, "/") + "/v1"

	slog.Info("Initialized completion client",
		slog.String("base_url", config.BaseURL),
		slog.String("model", config.Model))

	return &OpenAICompatible{
		client:          openai.NewClientWithConfig(clientConfig),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.CompletionAPIConfig()),
		retryConfig:     retry.CompletionAPIConfig(),
		config:          config,
		metricsRecorder: NewPrometheusCompletionMetrics(),
	}
}

// Complete sends the prompts to the model and returns the completion text.
// It uses circuit breaker and retry logic for improved reliability.
func (o *OpenAICompatible) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	var result string

	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doComplete(ctx, systemPrompt, userPrompt)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("completion api circuit breaker open, request rejected",
					slog.String("service", "completion-api"),
					slog.String("state", o.circuitBreaker.State().String()))
				return fmt.Errorf("completion api unavailable: circuit breaker open")
			}
			return err
		}

		result = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		o.metricsRecorder.RecordFailure()
		return "", fmt.Errorf("completion failed after retries: %w", retryErr)
	}

	return result, nil
}

// Ping probes the models listing endpoint to check server reachability.
func (o *OpenAICompatible) Ping(ctx context.Context) error {
	if _, err := o.client.ListModels(ctx); err != nil {
		return fmt.Errorf("completion endpoint unreachable at %s: %w", o.config.BaseURL, err)
	}
	return nil
}

// doComplete performs the actual API call without retry or circuit breaker.
func (o *OpenAICompatible) doComplete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	slog.InfoContext(ctx, "Starting completion request",
		slog.String("model", o.config.Model),
		slog.Int("system_length", text.CountRunes(systemPrompt)),
		slog.Int("user_length", text.CountRunes(userPrompt)))

	start := time.Now()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.config.Model,
		MaxTokens:   o.config.MaxTokens,
		Temperature: o.config.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
	})

	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "Completion request failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("completion api error: %w", err)
	}

	// Validate response structure (safety check to prevent panic on array access)
	if len(resp.Choices) == 0 {
		slog.ErrorContext(ctx, "Completion API returned empty response",
			slog.Duration("duration", duration))
		return "", fmt.Errorf("completion api returned empty response")
	}

	output := resp.Choices[0].Message.Content

	slog.InfoContext(ctx, "Completion request finished",
		slog.Int("output_length", text.CountRunes(output)),
		slog.Duration("duration", duration))

	o.metricsRecorder.RecordResponseLength(text.CountRunes(output))
	o.metricsRecorder.RecordDuration(duration)

	return output, nil
}
