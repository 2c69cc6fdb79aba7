package completion

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds configuration parameters for completion clients.
// Configuration is loaded from environment variables with fallback to defaults.
type Config struct {
	// BaseURL is the root URL of an OpenAI-compatible server.
	// The client appends /v1/chat/completions for completions and
	// /v1/models for reachability probes.
	// Loaded from COMPLETION_BASE_URL. Default: http://localhost:1234.
	BaseURL string

	// APIKey is the bearer token sent with each request.
	// Locally hosted servers typically accept any value.
	// Loaded from COMPLETION_API_KEY.
	APIKey string

	// Model is the model identifier passed in each completion request.
	// Loaded from COMPLETION_MODEL.
	Model string

	// MaxTokens is the maximum number of tokens for the model response.
	// Loaded from COMPLETION_MAX_TOKENS. Default: 2048.
	MaxTokens int

	// Temperature controls sampling randomness (0.0-2.0).
	Temperature float32

	// Timeout is the maximum duration for a single completion API call.
	Timeout time.Duration
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}

	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be within [0, 2], got %v", c.Temperature)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	return nil
}

// LoadConfig loads completion client configuration from environment variables.
// Returns an error if any configured value is invalid (fail-closed behavior).
//
// Environment variables:
//   - COMPLETION_BASE_URL: server root URL (default: http://localhost:1234)
//   - COMPLETION_API_KEY: bearer token (default: not-needed)
//   - COMPLETION_MODEL: model identifier (default: local-model)
//   - COMPLETION_MAX_TOKENS: response token limit (default: 2048)
func LoadConfig() (*Config, error) {
	const (
		defaultBaseURL   = "http://localhost:1234"
		defaultAPIKey    = "not-needed"
		defaultModel     = "local-model"
		defaultMaxTokens = 2048
	)

	config := &Config{
		BaseURL:     defaultBaseURL,
		APIKey:      defaultAPIKey,
		Model:       defaultModel,
		MaxTokens:   defaultMaxTokens,
		Temperature: 0.7,
		Timeout:     60 * time.Second,
	}

	if v := os.Getenv("COMPLETION_BASE_URL"); v != "" {
		config.BaseURL = v
	}

	if v := os.Getenv("COMPLETION_API_KEY"); v != "" {
		config.APIKey = v
	}

	if v := os.Getenv("COMPLETION_MODEL"); v != "" {
		config.Model = v
	}

	if v := os.Getenv("COMPLETION_MAX_TOKENS"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid COMPLETION_MAX_TOKENS format: %s: %w", v, err)
		}
		config.MaxTokens = parsed
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid completion configuration: %w", err)
	}

	return config, nil
}
