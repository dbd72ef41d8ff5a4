package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"
)

const unknownDescription = "Unknown"

// EventKind identifies where a pipeline event came from.
type EventKind string

// Available event kinds.
const (
	// EventClipboard is plain text captured from the system clipboard.
	EventClipboard EventKind = "clipboard"

	// EventScreenshot is an image that must go through OCR first.
	EventScreenshot EventKind = "screenshot"
)

// IsValid returns true if the event kind is recognised.
func (k EventKind) IsValid() bool {
	return k == EventClipboard || k == EventScreenshot
}

// String returns the string representation.
func (k EventKind) String() string {
	return string(k)
}

// ClipboardEvent is a single captured clipboard or screenshot occurrence.
// Exactly one of Text or Image is populated, depending on Kind.
type ClipboardEvent struct {
	// Kind says whether this is clipboard text or a screenshot.
	Kind EventKind

	// Text is the clipboard content for EventClipboard.
	Text string

	// Image is the PNG-encoded screenshot for EventScreenshot.
	Image []byte

	// CapturedAt is when the event was observed.
	CapturedAt time.Time
}

// QuestionKind classifies captured content.
type QuestionKind string

// Available question kinds.
const (
	// QuestionMCQ is a multiple-choice question; the answer is a short
	// option label encoded into the status icon.
	QuestionMCQ QuestionKind = "mcq"

	// QuestionOpenEnded is a free-form question; the answer is prose
	// written back to the clipboard.
	QuestionOpenEnded QuestionKind = "open_ended"

	// QuestionNone means the content is not a question. The pipeline
	// returns to idle without output.
	QuestionNone QuestionKind = "not_a_question"
)

// IsValid returns true if the question kind is recognised.
func (k QuestionKind) IsValid() bool {
	switch k {
	case QuestionMCQ, QuestionOpenEnded, QuestionNone:
		return true
	default:
		return false
	}
}

// IsQuestion returns true if the content should be answered.
func (k QuestionKind) IsQuestion() bool {
	return k == QuestionMCQ || k == QuestionOpenEnded
}

// String returns the string representation.
func (k QuestionKind) String() string {
	return string(k)
}

// Description returns a human-readable description of the kind.
func (k QuestionKind) Description() string {
	switch k {
	case QuestionMCQ:
		return "Multiple-choice question"
	case QuestionOpenEnded:
		return "Open-ended question"
	case QuestionNone:
		return "Not a question"
	default:
		return unknownDescription
	}
}

// Question is classified, normalised content ready for answering.
type Question struct {
	// Kind is the classification result.
	Kind QuestionKind

	// Text is the normalised question text. For MCQs this includes the
	// reformatted option list.
	Text string
}

// Answer is the produced response for a question.
type Answer struct {
	// Text is the answer content. For MCQs this is the option label
	// ("2" or "c"); for open-ended questions it is prose.
	Text string

	// Kind is the question kind the answer responds to, selecting the
	// delivery channel.
	Kind QuestionKind

	// FromCache is true when the answer was served without a model call.
	FromCache bool
}

// NormalizeText collapses all whitespace runs in text to single spaces and
// trims the ends. Used for event comparison and fingerprinting.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Fingerprint computes the deterministic identity of a unit of answering
// work: the hash of the normalised question text plus the sorted identifiers
// of the context chunks it will be answered against. Two requests with the
// same fingerprint are the same request.
func Fingerprint(question string, contextChunkIDs []string) string {
	ids := make([]string, len(contextChunkIDs))
	copy(ids, contextChunkIDs)
	sort.Strings(ids)

	h := sha256.New()
	h.Write([]byte(NormalizeText(question)))
	for _, id := range ids {
		h.Write([]byte{0})
		h.Write([]byte(id))
	}
	return hex.EncodeToString(h.Sum(nil))
}
