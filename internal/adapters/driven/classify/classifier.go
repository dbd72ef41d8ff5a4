// Package classify decides what kind of question a captured text is.
// A cheap regex pass catches well-formed multiple-choice questions first;
// only ambiguous content costs a model call.
package classify

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driven"
	"github.com/clipbrd-labs/clipbrd-cli/internal/logger"
)

// Ensure Classifier implements the interface.
var _ driven.Classifier = (*Classifier)(nil)

// Detector prompts for the model fallback.
const (
	mcqDetectPrompt = "You are a formatted question detector. Determine if the " +
		"following is a multiple-choice question. Answer only 'yes' or 'no'."

	questionDetectPrompt = "You are a question detector. Determine if the " +
		"following text is a question that can be answered. Answer only 'yes' or 'no'."
)

// numberingRe matches option prefixes: "1.", "a.", "(b)", "c)", "2)", "{{".
var numberingRe = regexp.MustCompile(`^\s*(?:\d+\.|[A-Za-z]\.|\{\{|\([A-Za-z0-9]\)|[A-Za-z0-9]\))\s`)

// segmentRe splits a candidate MCQ into question and options.
var segmentRe = regexp.MustCompile(`\n\s*\n|\n`)

// Classifier classifies captured text, using regex heuristics before falling
// back to the model. The model collaborator is optional; without it
// classification is heuristics only.
type Classifier struct {
	model driven.ModelClient
}

// New creates a classifier. model may be nil.
func New(model driven.ModelClient) *Classifier {
	return &Classifier{model: model}
}

// Classify returns the question kind and the text to answer. For MCQs the
// returned text has numbered options even when the original had none.
func (c *Classifier) Classify(ctx context.Context, text string) (domain.Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Question{Kind: domain.QuestionNone}, nil
	}

	if isMCQ, reformatted := ReformatMCQ(text); isMCQ {
		logger.Debug("MCQ detected by format")
		return domain.Question{Kind: domain.QuestionMCQ, Text: reformatted}, nil
	}

	if c.model != nil {
		if yes, err := c.ask(ctx, mcqDetectPrompt, text); err != nil {
			if ctx.Err() != nil {
				return domain.Question{}, ctx.Err()
			}
			return domain.Question{}, fmt.Errorf("classify mcq: %w", err)
		} else if yes {
			logger.Debug("MCQ detected by model")
			return domain.Question{Kind: domain.QuestionMCQ, Text: text}, nil
		}

		yes, err := c.ask(ctx, questionDetectPrompt, text)
		if err != nil {
			if ctx.Err() != nil {
				return domain.Question{}, ctx.Err()
			}
			return domain.Question{}, fmt.Errorf("classify question: %w", err)
		}
		if yes {
			return domain.Question{Kind: domain.QuestionOpenEnded, Text: text}, nil
		}
		return domain.Question{Kind: domain.QuestionNone}, nil
	}

	// Heuristics only: a question mark anywhere makes it open-ended.
	if strings.Contains(text, "?") {
		return domain.Question{Kind: domain.QuestionOpenEnded, Text: text}, nil
	}
	return domain.Question{Kind: domain.QuestionNone}, nil
}

// ask runs a yes/no detector prompt against the model. Detector calls
// are not rate limited; the limiter budget covers answer calls only.
func (c *Classifier) ask(ctx context.Context, system, text string) (bool, error) {
	answer, err := c.model.Generate(ctx, driven.GenerateRequest{
		System:      system,
		Prompt:      text,
		MaxTokens:   3,
		Temperature: 0.1,
		Stop:        []string{"User:", "Human:", "Assistant:"},
	})
	if err != nil {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(answer), "yes"), nil
}

// ReformatMCQ checks whether text looks like a multiple-choice question:
// a question followed by at least two options, each on its own line or
// paragraph. Unnumbered options get "1.", "2.", ... prefixes so the model
// can answer with an option number. Returns the (possibly rewritten) text.
func ReformatMCQ(text string) (bool, string) {
	segments := segmentRe.Split(text, -1)

	// Drop empty segments produced by trailing newlines.
	parts := segments[:0]
	for _, s := range segments {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) < 3 { // question plus at least two options
		return false, text
	}

	question := strings.TrimSpace(parts[0])
	options := parts[1:]

	numbered := false
	for _, opt := range options {
		if numberingRe.MatchString(opt) {
			numbered = true
			break
		}
	}

	if numbered {
		return true, text
	}

	// Unnumbered candidates need a question mark to count; otherwise any
	// multi-line clip would be treated as an MCQ.
	if !strings.Contains(question, "?") {
		return false, text
	}

	var b strings.Builder
	b.WriteString(question)
	b.WriteString("\n")
	for i, opt := range options {
		b.WriteString(fmt.Sprintf("\n%d. %s", i+1, strings.TrimSpace(opt)))
	}
	return true, b.String()
}
