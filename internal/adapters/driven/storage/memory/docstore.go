package memory

import (
	"context"
	"sync"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// It backs the default single-process deployment; the index snapshot
// provides persistence across restarts.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	byPath    map[string]string
	chunks    map[string][]domain.Chunk
	chunkIdx  map[string]string // chunk ID -> document ID
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		byPath:    make(map[string]string),
		chunks:    make(map[string][]domain.Chunk),
		chunkIdx:  make(map[string]string),
	}
}

// SaveDocument stores or updates a document record.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A path can only belong to one document.
	if prevID, ok := s.byPath[doc.Path]; ok && prevID != doc.ID {
		s.deleteLocked(prevID)
	}

	s.documents[doc.ID] = *doc
	s.byPath[doc.Path] = doc.ID
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetDocumentByPath retrieves a document by its filesystem path.
func (s *DocumentStore) GetDocumentByPath(_ context.Context, path string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byPath[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc := s.documents[id]
	return &doc, nil
}

// ListDocuments returns all tracked documents.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		result = append(result, doc)
	}
	return result, nil
}

// DeleteDocument removes a document and its chunks.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteLocked(id)
	return nil
}

func (s *DocumentStore) deleteLocked(id string) {
	if doc, ok := s.documents[id]; ok {
		if s.byPath[doc.Path] == id {
			delete(s.byPath, doc.Path)
		}
	}
	for _, chunk := range s.chunks[id] {
		delete(s.chunkIdx, chunk.ID)
	}
	delete(s.documents, id)
	delete(s.chunks, id)
}

// SaveChunks stores chunks for a document, replacing any previous set.
// An empty set clears the document's chunks.
func (s *DocumentStore) SaveChunks(_ context.Context, documentID string, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, old := range s.chunks[documentID] {
		delete(s.chunkIdx, old.ID)
	}
	if len(chunks) == 0 {
		delete(s.chunks, documentID)
		return nil
	}
	s.chunks[documentID] = append([]domain.Chunk(nil), chunks...)
	for _, chunk := range chunks {
		s.chunkIdx[chunk.ID] = documentID
	}
	return nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *DocumentStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docID, ok := s.chunkIdx[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	for _, chunk := range s.chunks[docID] {
		if chunk.ID == id {
			return &chunk, nil
		}
	}
	return nil, domain.ErrNotFound
}

// GetChunks retrieves all chunks for a document.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks, ok := s.chunks[documentID]
	if !ok {
		return nil, nil
	}
	return append([]domain.Chunk(nil), chunks...), nil
}
