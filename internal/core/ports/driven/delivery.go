package driven

import (
	"context"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
)

// Deliverer hands a finished answer to the user. Open-ended answers go to
// the OS clipboard; MCQ answers are encoded into the status icon.
type Deliverer interface {
	// Deliver publishes the answer on the channel selected by its kind.
	Deliver(ctx context.Context, answer domain.Answer) error
}

// Notifier surfaces pipeline failures to the user.
type Notifier interface {
	// NotifyFailure reports an unrecoverable pipeline error. It must
	// never block for long and never panic.
	NotifyFailure(err error)
}
