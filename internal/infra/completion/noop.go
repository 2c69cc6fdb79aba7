package completion

import (
	"context"
)

// NoOp is a completion client that echoes the user prompt without calling
// any model. This is useful for testing and development when a model server
// is not available.
type NoOp struct{}

// NewNoOp creates a new NoOp completion client.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Complete returns the user prompt truncated to a reasonable length.
func (n *NoOp) Complete(_ context.Context, _, userPrompt string) (string, error) {
	const maxLength = 500
	if len(userPrompt) <= maxLength {
		return userPrompt, nil
	}
	return userPrompt[:maxLength] + "...", nil
}

// Ping always succeeds.
func (n *NoOp) Ping(_ context.Context) error {
	return nil
}
