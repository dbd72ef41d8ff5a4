package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c := New()
		assert.Equal(t, DefaultChunkTokens, c.chunkTokens)
		assert.Equal(t, DefaultOverlapTokens, c.overlapTokens)
	})

	t.Run("custom values", func(t *testing.T) {
		c := New(WithChunkTokens(50), WithOverlapTokens(10))
		assert.Equal(t, 50, c.chunkTokens)
		assert.Equal(t, 10, c.overlapTokens)
	})

	t.Run("overlap clamped below chunk size", func(t *testing.T) {
		c := New(WithChunkTokens(20), WithOverlapTokens(30))
		assert.Less(t, c.overlapTokens, c.chunkTokens)
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		c := New(WithChunkTokens(0), WithOverlapTokens(-1))
		assert.Equal(t, DefaultChunkTokens, c.chunkTokens)
		assert.Equal(t, DefaultOverlapTokens, c.overlapTokens)
	})
}

func makeText(tokens int) string {
	words := make([]string, tokens)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	return strings.Join(words, " ")
}

func TestChunker_Split(t *testing.T) {
	c := New(WithChunkTokens(10), WithOverlapTokens(2))

	t.Run("empty text yields no chunks", func(t *testing.T) {
		assert.Empty(t, c.Split("", "doc-1"))
		assert.Empty(t, c.Split("  \n ", "doc-1"))
	})

	t.Run("short text yields one chunk", func(t *testing.T) {
		chunks := c.Split("just three tokens", "doc-1")
		require.Len(t, chunks, 1)
		assert.Equal(t, 3, chunks[0].Length())
		assert.Equal(t, "doc-1", chunks[0].DocumentID)
		assert.Equal(t, 0, chunks[0].Position)
	})

	t.Run("window sizes within bounds", func(t *testing.T) {
		chunks := c.Split(makeText(25), "doc-1")
		require.NotEmpty(t, chunks)
		for _, ch := range chunks {
			assert.GreaterOrEqual(t, ch.Length(), 1)
			assert.LessOrEqual(t, ch.Length(), 10)
		}
	})

	t.Run("consecutive chunks overlap", func(t *testing.T) {
		chunks := c.Split(makeText(30), "doc-1")
		require.GreaterOrEqual(t, len(chunks), 2)
		for i := 1; i < len(chunks); i++ {
			prev := chunks[i-1].Tokens
			tail := prev[len(prev)-2:]
			assert.Equal(t, tail, chunks[i].Tokens[:2],
				"chunk %d should start with the last 2 tokens of chunk %d", i, i-1)
		}
	})

	t.Run("positions are ordinal", func(t *testing.T) {
		chunks := c.Split(makeText(30), "doc-1")
		for i, ch := range chunks {
			assert.Equal(t, i, ch.Position)
		}
	})

	t.Run("content preserves source text", func(t *testing.T) {
		text := "Paris, the capital of France! Berlin is in Germany."
		chunks := New(WithChunkTokens(5), WithOverlapTokens(1)).Split(text, "doc-1")
		require.NotEmpty(t, chunks)
		for _, ch := range chunks {
			assert.Contains(t, text, ch.Content)
		}
	})
}

func TestChunker_Deterministic(t *testing.T) {
	c := New(WithChunkTokens(8), WithOverlapTokens(3))
	text := makeText(100)

	first := c.Split(text, "doc-1")
	for range 5 {
		again := c.Split(text, "doc-1")
		require.Len(t, again, len(first))
		for i := range first {
			// IDs differ per run; boundaries must not.
			assert.Equal(t, first[i].Tokens, again[i].Tokens)
			assert.Equal(t, first[i].Content, again[i].Content)
			assert.Equal(t, first[i].Position, again[i].Position)
		}
	}
}

func TestChunker_NoOverlap(t *testing.T) {
	c := New(WithChunkTokens(10), WithOverlapTokens(0))
	chunks := c.Split(makeText(30), "doc-1")
	require.Len(t, chunks, 3)

	seen := make(map[string]bool)
	for _, ch := range chunks {
		for _, tok := range ch.Tokens {
			assert.False(t, seen[tok], "token %s appears in two chunks with zero overlap", tok)
			seen[tok] = true
		}
	}
}
