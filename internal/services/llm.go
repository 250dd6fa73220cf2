package services

import (
	"context"

	"github.com/azurepeak/cultivation-engine/pkg/chat"
)

// ChatOptions carries the per-call generation parameters.
type ChatOptions struct {
	Temperature float64
	MaxTokens   int
}

// LLMService is the completion capability the turn pipeline runs
// against. Implementations may load the model asynchronously; callers
// gate on ModelProgress reaching 1 before issuing turns.
type LLMService interface {
	// InitModel makes the configured model available, pulling it if
	// necessary. Progress is observable via ModelProgress while this
	// runs.
	InitModel(ctx context.Context) error

	// Chat generates a completion for the given role-tagged messages.
	Chat(ctx context.Context, messages []chat.Message, opts ChatOptions) (*chat.Response, error)

	// ModelProgress reports model load progress as a fraction in [0,1]
	// plus a human-readable status line. A fraction >= 1 means the model
	// is ready to accept turns.
	ModelProgress() (float64, string)
}
