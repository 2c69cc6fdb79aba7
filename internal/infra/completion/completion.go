// Package completion provides clients for LLM chat-completion endpoints.
// It supports OpenAI-compatible servers (including locally hosted ones such
// as LM Studio or Ollama) and Anthropic's hosted Claude API, with circuit
// breaker and retry logic for improved reliability.
package completion

import "context"

// Client is the interface for LLM completion providers.
// Implementations send a system prompt and a user prompt to the model
// and return the raw text of the first completion choice.
type Client interface {
	// Complete sends the prompts to the model and returns the completion text.
	// The returned string is the raw model output; callers are responsible
	// for any parsing (e.g. extracting JSON from conversational wrapping).
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Ping checks whether the completion endpoint is reachable.
	// For OpenAI-compatible servers this probes the models listing endpoint.
	Ping(ctx context.Context) error
}
