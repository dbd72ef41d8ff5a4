package classify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driven"
)

// scriptedModel answers detector prompts from a fixed script.
type scriptedModel struct {
	answers map[string]string // system prompt -> reply
	err     error
}

func (m *scriptedModel) Generate(_ context.Context, req driven.GenerateRequest) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if answer, ok := m.answers[req.System]; ok {
		return answer, nil
	}
	return "no", nil
}

func (m *scriptedModel) ModelName() string { return "scripted" }
func (m *scriptedModel) Close() error      { return nil }

func TestReformatMCQ(t *testing.T) {
	t.Run("numbered options pass through unchanged", func(t *testing.T) {
		text := "What is the capital of France?\n1. Madrid\n2. Paris\n3. Berlin"
		isMCQ, out := ReformatMCQ(text)
		assert.True(t, isMCQ)
		assert.Equal(t, text, out)
	})

	t.Run("lettered options pass through unchanged", func(t *testing.T) {
		text := "Who wrote Hamlet?\na. Dickens\nb. Shakespeare\nc. Joyce"
		isMCQ, out := ReformatMCQ(text)
		assert.True(t, isMCQ)
		assert.Equal(t, text, out)
	})

	t.Run("parenthesis markers pass through", func(t *testing.T) {
		text := "Pick one:?\na) first\nb) second"
		isMCQ, _ := ReformatMCQ(text)
		assert.True(t, isMCQ)
	})

	t.Run("unnumbered options get numbers", func(t *testing.T) {
		text := "Who discovered penicillin?\nMarie Curie\nAlexander Fleming\nLouis Pasteur"
		isMCQ, out := ReformatMCQ(text)
		require.True(t, isMCQ)
		assert.Contains(t, out, "1. Marie Curie")
		assert.Contains(t, out, "2. Alexander Fleming")
		assert.Contains(t, out, "3. Louis Pasteur")
		assert.True(t, strings.HasPrefix(out, "Who discovered penicillin?"))
	})

	t.Run("blank line separated options", func(t *testing.T) {
		text := "Which year did WW2 start?\n\n1914\n\n1939\n\n1945"
		isMCQ, out := ReformatMCQ(text)
		require.True(t, isMCQ)
		assert.Contains(t, out, "2. 1939")
	})

	t.Run("too few options", func(t *testing.T) {
		isMCQ, _ := ReformatMCQ("Is this a question?\nYes")
		assert.False(t, isMCQ)
	})

	t.Run("multi-line prose without question mark is not an MCQ", func(t *testing.T) {
		text := "Meeting notes\nItem one discussed\nItem two postponed"
		isMCQ, out := ReformatMCQ(text)
		assert.False(t, isMCQ)
		assert.Equal(t, text, out)
	})

	t.Run("single line is not an MCQ", func(t *testing.T) {
		isMCQ, _ := ReformatMCQ("What is the capital of France?")
		assert.False(t, isMCQ)
	})
}

func TestClassify(t *testing.T) {
	ctx := context.Background()

	t.Run("regex MCQ short-circuits the model", func(t *testing.T) {
		classifier := New(&scriptedModel{err: errors.New("must not be called")})
		q, err := classifier.Classify(ctx, "Capital of France?\n1. Madrid\n2. Paris")
		require.NoError(t, err)
		assert.Equal(t, domain.QuestionMCQ, q.Kind)
	})

	t.Run("model detects unformatted MCQ", func(t *testing.T) {
		classifier := New(&scriptedModel{answers: map[string]string{mcqDetectPrompt: "yes"}})
		q, err := classifier.Classify(ctx, "The capital of France is Madrid or Paris")
		require.NoError(t, err)
		assert.Equal(t, domain.QuestionMCQ, q.Kind)
	})

	t.Run("model detects open ended question", func(t *testing.T) {
		classifier := New(&scriptedModel{answers: map[string]string{
			mcqDetectPrompt:      "no",
			questionDetectPrompt: "Yes",
		}})
		q, err := classifier.Classify(ctx, "Explain how photosynthesis works")
		require.NoError(t, err)
		assert.Equal(t, domain.QuestionOpenEnded, q.Kind)
	})

	t.Run("model rejects non-question", func(t *testing.T) {
		classifier := New(&scriptedModel{})
		q, err := classifier.Classify(ctx, "just a random note to self")
		require.NoError(t, err)
		assert.Equal(t, domain.QuestionNone, q.Kind)
	})

	t.Run("model failure surfaces", func(t *testing.T) {
		classifier := New(&scriptedModel{err: errors.New("backend down")})
		_, err := classifier.Classify(ctx, "Explain something")
		assert.Error(t, err)
	})

	t.Run("without model uses question mark heuristic", func(t *testing.T) {
		classifier := New(nil)

		q, err := classifier.Classify(ctx, "What is the boiling point of water?")
		require.NoError(t, err)
		assert.Equal(t, domain.QuestionOpenEnded, q.Kind)

		q, err = classifier.Classify(ctx, "shopping list eggs milk")
		require.NoError(t, err)
		assert.Equal(t, domain.QuestionNone, q.Kind)
	})

	t.Run("empty text is not a question", func(t *testing.T) {
		classifier := New(nil)
		q, err := classifier.Classify(ctx, "   \n ")
		require.NoError(t, err)
		assert.Equal(t, domain.QuestionNone, q.Kind)
	})
}
