package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file format no extractor handles.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrConversion indicates text extraction failed for a file.
	// The file is skipped; the folder scan continues.
	ErrConversion = errors.New("conversion failed")

	// ErrScanInProgress indicates a folder scan is already running.
	ErrScanInProgress = errors.New("scan in progress")

	// ErrOCR indicates text could not be extracted from a screenshot.
	// The event is discarded and the pipeline returns to idle.
	ErrOCR = errors.New("ocr failed")

	// ErrNotAQuestion indicates the captured content is not a question.
	// This is a normal outcome, not a failure.
	ErrNotAQuestion = errors.New("not a question")

	// ErrRetrievalTimeout indicates the context query did not finish in
	// time. The pipeline proceeds with empty context.
	ErrRetrievalTimeout = errors.New("retrieval timed out")

	// ErrRateLimited indicates the outbound call budget was exhausted and
	// the bounded wait elapsed. Transient; surfaced to the user.
	ErrRateLimited = errors.New("rate limited")

	// ErrModelTransient indicates a retryable model failure
	// (network error, 429, 5xx).
	ErrModelTransient = errors.New("transient model error")

	// ErrModelTerminal indicates a non-retryable model failure
	// (auth or quota). Surfaced immediately, no retry.
	ErrModelTerminal = errors.New("terminal model error")

	// ErrModelUnavailable indicates no model client is configured.
	ErrModelUnavailable = errors.New("model service unavailable")

	// ErrSnapshotVersion indicates a persisted index snapshot was written
	// by an incompatible version and must be discarded wholesale.
	ErrSnapshotVersion = errors.New("snapshot version mismatch")
)

// IsRetryable reports whether a model call error should be retried with
// backoff. Rate limiting is handled separately and is never retried here.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrModelTransient)
}
