package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driven"
)

type fakeModel struct {
	reply string
	err   error
	got   driven.GenerateRequest
}

func (m *fakeModel) Generate(_ context.Context, req driven.GenerateRequest) (string, error) {
	m.got = req
	return m.reply, m.err
}

func (m *fakeModel) ModelName() string { return "fake" }
func (m *fakeModel) Close() error      { return nil }

func TestExtractText(t *testing.T) {
	ctx := context.Background()
	png := []byte{0x89, 'P', 'N', 'G'}

	t.Run("returns extracted text", func(t *testing.T) {
		model := &fakeModel{reply: "What is 2+2?\n1. 3\n2. 4"}
		text, err := New(model).ExtractText(ctx, png)
		require.NoError(t, err)
		assert.Equal(t, "What is 2+2?\n1. 3\n2. 4", text)
		assert.Equal(t, png, model.got.Image)
	})

	t.Run("empty image", func(t *testing.T) {
		_, err := New(&fakeModel{}).ExtractText(ctx, nil)
		assert.ErrorIs(t, err, domain.ErrOCR)
	})

	t.Run("no readable text", func(t *testing.T) {
		_, err := New(&fakeModel{reply: "NO_TEXT"}).ExtractText(ctx, png)
		assert.ErrorIs(t, err, domain.ErrOCR)
	})

	t.Run("model failure wraps ocr error", func(t *testing.T) {
		_, err := New(&fakeModel{err: errors.New("backend down")}).ExtractText(ctx, png)
		assert.ErrorIs(t, err, domain.ErrOCR)
	})
}
