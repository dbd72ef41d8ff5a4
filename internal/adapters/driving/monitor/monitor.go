// Package monitor feeds the pipeline with clipboard and screenshot
// events observed on the local machine.
package monitor

import (
	"context"
	"time"

	"github.com/atotto/clipboard"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driving"
	"github.com/clipbrd-labs/clipbrd-cli/internal/logger"
)

const defaultInterval = 500 * time.Millisecond

// Monitor polls the system clipboard and submits changed content to the
// pipeline. The clipboard has no change notification API on most
// platforms, so polling it is.
type Monitor struct {
	pipeline driving.Pipeline
	interval time.Duration
	read     func() (string, error)

	lastSeen string
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithInterval overrides the polling interval.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithReadFunc replaces the clipboard read call. Used in tests.
func WithReadFunc(read func() (string, error)) Option {
	return func(m *Monitor) {
		m.read = read
	}
}

// New creates a clipboard monitor feeding pipeline.
func New(pipeline driving.Pipeline, opts ...Option) *Monitor {
	m := &Monitor{
		pipeline: pipeline,
		interval: defaultInterval,
		read:     clipboard.ReadAll,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run polls the clipboard until ctx is cancelled. Content present when
// the monitor starts is treated as already seen and never submitted.
func (m *Monitor) Run(ctx context.Context) error {
	if initial, err := m.read(); err == nil {
		m.lastSeen = domain.NormalizeText(initial)
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.poll()
		}
	}
}

// poll reads the clipboard once and submits new content.
func (m *Monitor) poll() {
	text, err := m.read()
	if err != nil {
		// Clipboard can be briefly unavailable while another
		// application holds it. Try again next tick.
		logger.Debug("Clipboard read failed: %v", err)
		return
	}

	normalized := domain.NormalizeText(text)
	if normalized == "" || normalized == m.lastSeen {
		return
	}
	m.lastSeen = normalized

	logger.Debug("Clipboard changed: %d chars", len(text))
	m.pipeline.Submit(domain.ClipboardEvent{
		Kind:       domain.EventClipboard,
		Text:       text,
		CapturedAt: time.Now(),
	})
}
