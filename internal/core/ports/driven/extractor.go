package driven

import "context"

// TextExtractor converts a file in the watched folder into plain text.
// Plain formats (.txt, .md) are handled directly; binary formats
// (.pdf, .docx) are delegated to format-specific converters.
type TextExtractor interface {
	// Supports reports whether the file at path can be extracted,
	// judged by its extension.
	Supports(path string) bool

	// Extract returns the text content of the file. A failure wraps
	// domain.ErrConversion; callers skip the file and continue.
	Extract(ctx context.Context, path string) (string, error)
}

// FormatExtractor handles one family of file formats. The extractor
// registry selects by extension.
type FormatExtractor interface {
	// Extensions returns the lower-case file extensions handled,
	// including the leading dot.
	Extensions() []string

	// Extract returns the text content of the file.
	Extract(ctx context.Context, path string) (string, error)
}
