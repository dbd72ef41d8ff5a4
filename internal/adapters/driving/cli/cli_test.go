package cli

import (
	"bytes"
	"context"
	"errors"

	"github.com/clipbrd-labs/clipbrd-cli/internal/adapters/driven/storage/memory"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driving"
)

// execute runs the root command with args and returns its output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// withServices installs mock services for the duration of a test.
func withServices(pipeline driving.Pipeline, index driving.IndexManager) func() {
	oldPipeline, oldIndex, oldConfig := pipelineService, indexService, configService
	oldSettings := appSettings

	pipelineService = pipeline
	indexService = index
	configService = memory.NewConfigStore()
	appSettings = domain.DefaultSettings()

	return func() {
		pipelineService, indexService, configService = oldPipeline, oldIndex, oldConfig
		appSettings = oldSettings
	}
}

// mockPipeline returns scripted answers from Process.
type mockPipeline struct {
	answer    *domain.Answer
	err       error
	lastEvent domain.ClipboardEvent
}

func (m *mockPipeline) Submit(_ domain.ClipboardEvent) {}

func (m *mockPipeline) Run(ctx context.Context) error { <-ctx.Done(); return ctx.Err() }

func (m *mockPipeline) Process(_ context.Context, event domain.ClipboardEvent) (*domain.Answer, error) {
	m.lastEvent = event
	return m.answer, m.err
}

func (m *mockPipeline) State() driving.PipelineState { return driving.StateIdle }

// mockIndex returns scripted scan reports and query results.
type mockIndex struct {
	report  *driving.ScanReport
	results []driving.ContextChunk
	err     error
	lastK   int
}

func (m *mockIndex) Scan(_ context.Context) (*driving.ScanReport, error) {
	return m.report, m.err
}

func (m *mockIndex) Query(_ context.Context, _ string, k int) ([]driving.ContextChunk, error) {
	m.lastK = k
	return m.results, m.err
}

func (m *mockIndex) Start(ctx context.Context) error { <-ctx.Done(); return nil }

var errMock = errors.New("mock failure")
