package driving

import (
	"context"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
)

// PipelineState names a stage of event processing.
type PipelineState string

// Pipeline states.
const (
	StateIdle              PipelineState = "idle"
	StateClassifying       PipelineState = "classifying"
	StateRetrievingContext PipelineState = "retrieving_context"
	StateAwaitingModel     PipelineState = "awaiting_model"
	StateDelivering        PipelineState = "delivering"
	StateFailed            PipelineState = "failed"
)

// String returns the string representation.
func (s PipelineState) String() string {
	return string(s)
}

// Pipeline turns clipboard and screenshot events into delivered answers.
type Pipeline interface {
	// Submit hands a new event to the pipeline. A newer event supersedes
	// an in-flight one: the running pass is cancelled cooperatively at
	// its next suspension point. Submit never blocks on processing.
	Submit(event domain.ClipboardEvent)

	// Run processes submitted events until the context is cancelled.
	// Errors in one event's processing never affect subsequent events.
	Run(ctx context.Context) error

	// Process runs one event through the full pipeline synchronously and
	// returns the produced answer. Used by the one-shot CLI path.
	// Returns domain.ErrNotAQuestion when the content is not a question.
	Process(ctx context.Context, event domain.ClipboardEvent) (*domain.Answer, error)

	// State reports the current pipeline state.
	State() PipelineState
}
