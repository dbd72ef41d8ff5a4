package driven

import (
	"context"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
)

// DocumentStore persists documents and their chunks.
// The index manager uses it to track which file produced which chunks and
// the pipeline uses it to hydrate retrieved chunk IDs into content.
type DocumentStore interface {
	// SaveDocument stores or updates a document record.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetDocumentByPath retrieves a document by its filesystem path.
	GetDocumentByPath(ctx context.Context, path string) (*domain.Document, error)

	// ListDocuments returns all tracked documents.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// SaveChunks stores the chunks for a document, replacing any
	// previous set. An empty set clears the document's chunks.
	SaveChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// GetChunk retrieves a specific chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetChunks retrieves all chunks for a document.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)
}
