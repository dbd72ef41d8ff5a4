package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "parís is in france", Normalize("ParÍs IS in France"))
	assert.Equal(t, "espana", Normalize("España"))
	assert.Equal(t, "resume", Normalize("résumé"))
}

func TestTokenize(t *testing.T) {
	t.Run("splits on whitespace and punctuation", func(t *testing.T) {
		terms := Terms("The cat, sat; on-the mat!")
		assert.Equal(t, []string{"the", "cat", "sat", "on", "the", "mat"}, terms)
	})

	t.Run("keeps digits", func(t *testing.T) {
		assert.Equal(t, []string{"option", "42"}, Terms("option 42."))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Terms(""))
		assert.Empty(t, Terms("  ... !! "))
	})

	t.Run("spans cover source bytes", func(t *testing.T) {
		text := "cat  mat"
		tokens := Tokenize(text)
		assert.Len(t, tokens, 2)
		assert.Equal(t, "cat", text[tokens[0].Start:tokens[0].End])
		assert.Equal(t, "mat", text[tokens[1].Start:tokens[1].End])
	})

	t.Run("trailing token flushed", func(t *testing.T) {
		tokens := Tokenize("cat mat")
		assert.Equal(t, "mat", tokens[len(tokens)-1].Term)
	})
}

func TestTokenize_Deterministic(t *testing.T) {
	text := "Paris is the capital of France. París, dit-on."
	first := Tokenize(text)
	for range 10 {
		assert.Equal(t, first, Tokenize(text))
	}
}
