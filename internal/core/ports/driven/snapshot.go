package driven

import (
	"context"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
)

// SnapshotVersion is the current snapshot schema version. A persisted
// snapshot with any other version is discarded wholesale.
const SnapshotVersion = 1

// IndexSnapshot is a point-in-time copy of everything needed to restore the
// index without rescanning the corpus: the document hash table and the chunk
// records (postings are rebuilt from chunk tokens on load).
type IndexSnapshot struct {
	// Version is the schema version the snapshot was written with.
	Version int

	// Documents is the document hash table.
	Documents []domain.Document

	// Chunks are all chunk records, including tokens.
	Chunks []domain.Chunk
}

// SnapshotStore persists index snapshots for fast restart.
type SnapshotStore interface {
	// Save atomically replaces the stored snapshot.
	Save(ctx context.Context, snap *IndexSnapshot) error

	// Load returns the stored snapshot. Returns domain.ErrNotFound when
	// no snapshot exists and domain.ErrSnapshotVersion when the stored
	// version is incompatible.
	Load(ctx context.Context) (*IndexSnapshot, error)

	// Close releases resources.
	Close() error
}
