// Package bm25 provides an in-memory inverted index with BM25 ranking.
// It implements the driven.SearchIndex port and is the keyword retrieval
// engine behind the index manager.
package bm25

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/clipbrd-labs/clipbrd-cli/internal/chunker"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driven"
	"github.com/clipbrd-labs/clipbrd-cli/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.SearchIndex = (*Index)(nil)

// DefaultK1 is the default term-frequency saturation constant.
const DefaultK1 = 1.5

// DefaultB is the default length-normalisation constant.
const DefaultB = 0.75

// chunkEntry is the per-chunk bookkeeping needed to undo an add.
type chunkEntry struct {
	length int
	terms  map[string]int
	seq    int64 // insertion order, used for tie-breaking
}

// Index is an inverted index from token to postings with BM25 scoring.
//
// A single RWMutex guards all state: every add and remove applies a chunk's
// postings entirely inside the write lock, so a concurrent query observes
// each chunk either fully present or fully absent.
type Index struct {
	k1 float64
	b  float64

	mu          sync.RWMutex
	postings    map[string]map[string]int // token -> chunkID -> tf
	chunks      map[string]chunkEntry     // chunkID -> bookkeeping
	totalTokens int
	nextSeq     int64
}

// Option configures the index.
type Option func(*Index)

// WithK1 sets the term-frequency saturation constant.
func WithK1(k1 float64) Option {
	return func(idx *Index) {
		if k1 >= 0 {
			idx.k1 = k1
		}
	}
}

// WithB sets the length-normalisation constant.
func WithB(b float64) Option {
	return func(idx *Index) {
		if b >= 0 && b <= 1 {
			idx.b = b
		}
	}
}

// New creates an empty index with the given options.
func New(opts ...Option) *Index {
	idx := &Index{
		k1:       DefaultK1,
		b:        DefaultB,
		postings: make(map[string]map[string]int),
		chunks:   make(map[string]chunkEntry),
	}

	for _, opt := range opts {
		opt(idx)
	}

	return idx
}

// Add inserts the chunk's token frequencies into the postings and updates
// global statistics. Adding an existing chunk ID replaces the previous
// postings for that chunk.
func (idx *Index) Add(_ context.Context, chunk domain.Chunk) error {
	if chunk.ID == "" {
		return domain.ErrInvalidInput
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	// Replace semantics: drop the old postings first.
	idx.removeLocked(chunk.ID)

	freqs := chunk.TermFrequencies()
	for term, tf := range freqs {
		posting, ok := idx.postings[term]
		if !ok {
			posting = make(map[string]int)
			idx.postings[term] = posting
		}
		posting[chunk.ID] = tf
	}

	idx.nextSeq++
	idx.chunks[chunk.ID] = chunkEntry{
		length: chunk.Length(),
		terms:  freqs,
		seq:    idx.nextSeq,
	}
	idx.totalTokens += chunk.Length()

	return nil
}

// Remove deletes all postings referencing the chunk and updates statistics.
// No-op if the chunk is absent.
func (idx *Index) Remove(_ context.Context, chunkID string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(chunkID)
	return nil
}

// removeLocked drops a chunk's postings. Caller holds the write lock.
func (idx *Index) removeLocked(chunkID string) {
	entry, ok := idx.chunks[chunkID]
	if !ok {
		return
	}

	for term := range entry.terms {
		posting := idx.postings[term]
		delete(posting, chunkID)
		if len(posting) == 0 {
			delete(idx.postings, term)
		}
	}

	idx.totalTokens -= entry.length
	delete(idx.chunks, chunkID)
}

// Query tokenizes text with the ingestion tokenizer and returns the top-k
// chunk IDs by descending BM25 score. Ties break by most-recently-indexed
// chunk first. An empty index or a query with no matching token returns an
// empty slice.
func (idx *Index) Query(_ context.Context, text string, k int) ([]driven.SearchHit, error) {
	if k <= 0 {
		return []driven.SearchHit{}, nil
	}

	queryTerms := chunker.Terms(text)
	if len(queryTerms) == 0 {
		return []driven.SearchHit{}, nil
	}

	// Query-side term frequency weights repeated terms.
	weights := make(map[string]int, len(queryTerms))
	for _, term := range queryTerms {
		weights[term]++
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	chunkCount := len(idx.chunks)
	if chunkCount == 0 {
		return []driven.SearchHit{}, nil
	}
	avgLength := float64(idx.totalTokens) / float64(chunkCount)

	scores := make(map[string]float64)
	for term, queryTF := range weights {
		posting, ok := idx.postings[term]
		if !ok {
			continue
		}

		idf := idx.idf(len(posting), chunkCount)
		if idf == 0 {
			continue
		}

		for chunkID, tf := range posting {
			length := float64(idx.chunks[chunkID].length)
			numerator := float64(tf) * (idx.k1 + 1)
			denominator := float64(tf) + idx.k1*(1-idx.b+idx.b*length/avgLength)
			scores[chunkID] += idf * numerator / denominator * float64(queryTF)
		}
	}

	hits := make([]driven.SearchHit, 0, len(scores))
	for chunkID, score := range scores {
		hits = append(hits, driven.SearchHit{ChunkID: chunkID, Score: score})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return idx.chunks[hits[i].ChunkID].seq > idx.chunks[hits[j].ChunkID].seq
	})

	if len(hits) > k {
		hits = hits[:k]
	}

	logger.Debug("BM25 query: %d terms, %d candidates, returning %d", len(weights), len(scores), len(hits))
	return hits, nil
}

// idf computes the inverse document frequency for a term. The +0.5
// smoothing keeps the value finite and non-negative even when the term
// appears in every chunk (df == chunkCount) or in none.
func (idx *Index) idf(df, chunkCount int) float64 {
	if df == 0 {
		return 0
	}
	return math.Log(1 + (float64(chunkCount)-float64(df)+0.5)/(float64(df)+0.5))
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.chunks)
}

// Close releases resources. The in-memory index has none.
func (idx *Index) Close() error {
	return nil
}
