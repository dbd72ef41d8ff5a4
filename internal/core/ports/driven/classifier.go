package driven

import (
	"context"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
)

// Classifier decides whether captured text is a question and of what kind.
// The exact heuristics are a pluggable policy; implementations may combine
// pattern matching with model calls.
type Classifier interface {
	// Classify returns the question kind and the text to answer. For
	// MCQs the returned text may be a reformatted version of the input
	// (numbered options). Kind QuestionNone means no further processing.
	Classify(ctx context.Context, text string) (domain.Question, error)
}
