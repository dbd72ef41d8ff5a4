package driving

import (
	"context"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
)

// IndexManager keeps the lexical index synchronized with the watched folder
// and is the single retrieval entry point for the rest of the system.
type IndexManager interface {
	// Scan enumerates the watched folder once, re-indexing new and
	// changed files and dropping vanished ones. Per-file conversion
	// failures are skipped and counted, not fatal.
	Scan(ctx context.Context) (*ScanReport, error)

	// Query returns the top-k context chunks for text, hydrated with
	// their content and origin. A query against an empty index returns
	// an empty slice, not an error.
	Query(ctx context.Context, text string, k int) ([]ContextChunk, error)

	// Start runs the background scan loop (filesystem notifications
	// plus a periodic timer) until the context is cancelled.
	Start(ctx context.Context) error
}

// ScanReport summarises one folder scan.
type ScanReport struct {
	// FilesSeen is how many candidate files the scan enumerated.
	FilesSeen int

	// Indexed is how many files were (re-)indexed.
	Indexed int

	// Removed is how many vanished documents were dropped.
	Removed int

	// Skipped is how many files failed conversion and were skipped.
	Skipped int

	// ChunkCount is the index size after the scan.
	ChunkCount int
}

// ContextChunk is a retrieved chunk hydrated for prompt assembly.
type ContextChunk struct {
	// Chunk is the matched chunk.
	Chunk domain.Chunk

	// Score is the retrieval score.
	Score float64

	// Path is the filesystem path of the owning document.
	Path string
}
