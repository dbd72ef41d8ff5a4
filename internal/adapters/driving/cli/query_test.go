package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driving"
)

func TestQueryCmd_PrintsResults(t *testing.T) {
	index := &mockIndex{
		results: []driving.ContextChunk{
			{
				Chunk: domain.Chunk{ID: "c1", Content: "Paris is the capital of France."},
				Score: 4.2,
				Path:  "/docs/geography.md",
			},
			{
				Chunk: domain.Chunk{ID: "c2", Content: "France borders Spain."},
				Score: 1.1,
				Path:  "/docs/borders.txt",
			},
		},
	}
	restore := withServices(&mockPipeline{}, index)
	defer restore()

	out, err := execute("query", "capital of France")

	assert.NoError(t, err)
	assert.Contains(t, out, "/docs/geography.md")
	assert.Contains(t, out, "Paris is the capital of France.")
	assert.Contains(t, out, "4.20")
	assert.Contains(t, out, "/docs/borders.txt")
}

func TestQueryCmd_NoResults(t *testing.T) {
	restore := withServices(&mockPipeline{}, &mockIndex{})
	defer restore()

	out, err := execute("query", "nothing matches this")

	assert.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestQueryCmd_LimitFlag(t *testing.T) {
	index := &mockIndex{}
	restore := withServices(&mockPipeline{}, index)
	defer restore()

	_, err := execute("query", "anything", "--limit", "3")

	assert.NoError(t, err)
	assert.Equal(t, 3, index.lastK)
}

func TestQueryCmd_Error(t *testing.T) {
	restore := withServices(&mockPipeline{}, &mockIndex{err: errMock})
	defer restore()

	_, err := execute("query", "anything")

	assert.ErrorIs(t, err, errMock)
}

func TestQueryCmd_RequiresArgument(t *testing.T) {
	restore := withServices(&mockPipeline{}, &mockIndex{})
	defer restore()

	_, err := execute("query")

	assert.Error(t, err)
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short text", snippet("short   text", 40))
	assert.Equal(t, "multi line flattened", snippet("multi\nline\nflattened", 40))

	long := snippet("aaaa bbbb cccc dddd eeee", 10)
	assert.Equal(t, "aaaa bbbb ...", long)
}
