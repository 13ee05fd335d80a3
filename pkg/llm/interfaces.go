// Package llm provides text-generation clients behind a common interface.
package llm

import (
	"context"
)

// Client defines the interface for text-generation operations.
// Use this interface for dependency injection to enable mocking in tests.
type Client interface {
	// Generate produces a completion for the given system instruction and
	// user prompt. Blocks for the full network round trip.
	Generate(ctx context.Context, systemMessage string, prompt string) (string, error)

	// GetModel returns the configured model name.
	GetModel() string
}
