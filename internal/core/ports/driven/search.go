package driven

import (
	"context"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
)

// SearchIndex provides lexical BM25 search over chunks.
//
// Implementations must guarantee per-chunk atomicity: a concurrent query
// observes any given chunk's postings either fully present or fully absent,
// never partially applied.
type SearchIndex interface {
	// Add inserts a chunk's token frequencies into the postings and
	// updates global statistics. Adding an existing chunk ID replaces it.
	Add(ctx context.Context, chunk domain.Chunk) error

	// Remove deletes all postings referencing the chunk and updates
	// statistics. No-op if the chunk is absent.
	Remove(ctx context.Context, chunkID string) error

	// Query tokenizes text the same way as ingestion and returns the
	// top-k chunk IDs by descending BM25 score. Ties break by
	// most-recently-indexed first. Returns fewer than k when fewer
	// candidates match, and an empty slice when nothing matches.
	Query(ctx context.Context, text string, k int) ([]SearchHit, error)

	// Len returns the number of indexed chunks.
	Len() int

	// Close releases resources.
	Close() error
}

// SearchHit is a single ranked result from the index.
type SearchHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Score is the BM25 relevance score.
	Score float64
}
