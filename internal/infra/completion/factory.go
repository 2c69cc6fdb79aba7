package completion

import (
	"fmt"
	"log/slog"
	"os"
)

// NewFromEnv creates a completion client based on the COMPLETION_PROVIDER
// environment variable.
//
// Providers:
//   - "openai" (default): OpenAI-compatible endpoint, configured via COMPLETION_* vars
//   - "claude": Anthropic's hosted API, requires ANTHROPIC_API_KEY
//   - "noop": no model calls, for wiring without an endpoint
func NewFromEnv(logger *slog.Logger) (Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	provider := os.Getenv("COMPLETION_PROVIDER")
	if provider == "" {
		provider = "openai"
	}

	switch provider {
	case "openai":
		config, err := LoadConfig()
		if err != nil {
			return nil, fmt.Errorf("load completion configuration: %w", err)
		}
		logger.Info("Using OpenAI-compatible completion endpoint",
			slog.String("base_url", config.BaseURL),
			slog.String("model", config.Model))
		return NewOpenAICompatible(config), nil
	case "claude":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required when COMPLETION_PROVIDER=claude")
		}
		logger.Info("Using Claude API for completions")
		return NewClaude(apiKey), nil
	case "noop":
		logger.Warn("Using no-op completion client; no model will be called")
		return NewNoOp(), nil
	default:
		return nil, fmt.Errorf("invalid COMPLETION_PROVIDER %q (expected openai, claude or noop)", provider)
	}
}
