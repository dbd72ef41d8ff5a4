// Package delivery publishes finished answers to the user. Open-ended
// answers land on the system clipboard; short MCQ answers go to the status
// line, which stands in for the status-bar icon of a desktop build.
package delivery

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driven"
	"github.com/clipbrd-labs/clipbrd-cli/internal/logger"
)

// Ensure Clipboard implements the interface.
var _ driven.Deliverer = (*Clipboard)(nil)

// Clipboard delivers answers via the system clipboard. MCQ answers are
// too short to be worth a clipboard overwrite; they go to the status line.
type Clipboard struct {
	status *Status
}

// NewClipboard creates a clipboard deliverer.
func NewClipboard() *Clipboard {
	return &Clipboard{status: NewStatus()}
}

// Deliver publishes the answer on the channel selected by its kind.
func (c *Clipboard) Deliver(ctx context.Context, answer domain.Answer) error {
	if answer.Kind == domain.QuestionMCQ {
		return c.status.Deliver(ctx, answer)
	}

	if err := clipboard.WriteAll(answer.Text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	logger.Debug("Answer copied to clipboard (%d bytes)", len(answer.Text))
	return nil
}

// Ensure Status implements the interface.
var _ driven.Deliverer = (*Status)(nil)

// Status delivers answers on the status line. It is the CLI stand-in for
// the desktop status-bar icon, so answers must stay glanceable.
type Status struct {
	out io.Writer
}

// NewStatus creates a status line deliverer writing to stdout.
func NewStatus() *Status {
	return &Status{out: os.Stdout}
}

// SetOutput redirects the status line, mainly for tests.
func (s *Status) SetOutput(w io.Writer) {
	s.out = w
}

// Deliver prints the answer to the status line.
func (s *Status) Deliver(_ context.Context, answer domain.Answer) error {
	if answer.Kind == domain.QuestionMCQ {
		_, err := fmt.Fprintf(s.out, "Answer: %s\n", answer.Text)
		return err
	}
	_, err := fmt.Fprintln(s.out, answer.Text)
	return err
}

// Ensure Notifier implements the interface.
var _ driven.Notifier = (*LogNotifier)(nil)

// LogNotifier reports pipeline failures through the logger. It never blocks
// and never fails.
type LogNotifier struct{}

// NewLogNotifier creates a logger-backed notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// NotifyFailure reports an unrecoverable pipeline error.
func (n *LogNotifier) NotifyFailure(err error) {
	logger.Error("Processing failed: %v", err)
}
