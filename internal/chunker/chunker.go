// Package chunker splits extracted document text into overlapping token
// windows, the unit of indexing and retrieval.
package chunker

import (
	"github.com/google/uuid"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
)

// DefaultChunkTokens is the default window size in tokens.
const DefaultChunkTokens = 200

// DefaultOverlapTokens is the default overlap between consecutive windows.
const DefaultOverlapTokens = 40

// Chunker cuts normalised text into fixed-size overlapping token windows.
type Chunker struct {
	chunkTokens   int
	overlapTokens int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkTokens sets the window size in tokens.
func WithChunkTokens(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.chunkTokens = n
		}
	}
}

// WithOverlapTokens sets the overlap between windows in tokens.
func WithOverlapTokens(o int) Option {
	return func(c *Chunker) {
		if o >= 0 {
			c.overlapTokens = o
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkTokens:   DefaultChunkTokens,
		overlapTokens: DefaultOverlapTokens,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Overlap must leave the window a positive stride
	if c.overlapTokens >= c.chunkTokens {
		c.overlapTokens = c.chunkTokens / 4
	}

	return c
}

// Split cuts text into chunks owned by documentID. Boundaries are
// deterministic: identical text always yields identical windows. Empty or
// token-free text yields no chunks; text shorter than one window yields a
// single chunk with all tokens.
func (c *Chunker) Split(text, documentID string) []domain.Chunk {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	stride := c.chunkTokens - c.overlapTokens
	estimated := len(tokens)/stride + 1
	chunks := make([]domain.Chunk, 0, estimated)

	position := 0
	for start := 0; start < len(tokens); start += stride {
		end := start + c.chunkTokens
		if end > len(tokens) {
			end = len(tokens)
		}

		window := tokens[start:end]
		terms := make([]string, len(window))
		for i, tok := range window {
			terms[i] = tok.Term
		}

		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: documentID,
			Content:    text[window[0].Start:window[len(window)-1].End],
			Tokens:     terms,
			Position:   position,
		})
		position++

		if end == len(tokens) {
			break
		}
	}

	return chunks
}
