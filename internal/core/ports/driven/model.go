package driven

import "context"

// ModelClient calls a remote inference provider.
//
// Implementations translate provider failures into the domain taxonomy:
// network errors, 429s and 5xx responses wrap domain.ErrModelTransient;
// auth and quota failures wrap domain.ErrModelTerminal.
type ModelClient interface {
	// Generate produces a completion for the request.
	Generate(ctx context.Context, req GenerateRequest) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}

// GenerateRequest is a single completion request.
type GenerateRequest struct {
	// System is the system prompt.
	System string

	// Prompt is the user message.
	Prompt string

	// Image is an optional PNG attachment for vision requests.
	Image []byte

	// MaxTokens bounds the completion length.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// Stop are sequences that end generation when produced.
	Stop []string
}
