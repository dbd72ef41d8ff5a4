package domain

import "time"

// Document represents a file in the watched folder that has been indexed.
// It is the unit of synchronisation: when the content hash changes, all of
// the document's chunks are replaced; when the file disappears, they are
// removed.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Path is the absolute filesystem path of the source file.
	Path string

	// ContentHash is the SHA-256 hex digest of the file content at the
	// time it was last indexed.
	ContentHash string

	// ModifiedAt is the file's last-modified timestamp when indexed.
	ModifiedAt time.Time

	// ChunkIDs are the identifiers of the chunks produced from this
	// document, in document order.
	ChunkIDs []string

	// IndexedAt is when the document was last (re-)indexed.
	IndexedAt time.Time
}

// Chunk is the unit of indexing and retrieval: a window of tokens cut from
// a document, overlapping its neighbours.
type Chunk struct {
	// ID is the unique identifier for the chunk within the index.
	ID string

	// DocumentID links back to the owning Document. The document owns the
	// chunk; this reference is for lookup only.
	DocumentID string

	// Content is the raw text of the window, kept for prompt assembly.
	Content string

	// Tokens are the normalised tokens in window order.
	Tokens []string

	// Position is the ordinal position within the document.
	Position int
}

// Length returns the token count of the chunk.
func (c Chunk) Length() int {
	return len(c.Tokens)
}

// TermFrequencies returns the per-token occurrence counts for scoring.
func (c Chunk) TermFrequencies() map[string]int {
	freqs := make(map[string]int, len(c.Tokens))
	for _, tok := range c.Tokens {
		freqs[tok]++
	}
	return freqs
}
