package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.TextExtractor = (*Registry)(nil)

// Registry routes extraction requests to format extractors by extension.
type Registry struct {
	byExt map[string]driven.FormatExtractor
}

// NewRegistry creates a registry with the given format extractors. A later
// extractor wins when two claim the same extension.
func NewRegistry(extractors ...driven.FormatExtractor) *Registry {
	r := &Registry{byExt: make(map[string]driven.FormatExtractor)}
	for _, e := range extractors {
		for _, ext := range e.Extensions() {
			r.byExt[strings.ToLower(ext)] = e
		}
	}
	return r
}

// NewDefault creates a registry with all built-in format extractors.
func NewDefault() *Registry {
	return NewRegistry(
		NewPlaintext(),
		NewMarkdown(),
		NewPDF(),
		NewDocx(),
	)
}

// Supports reports whether the file's extension has a registered extractor.
func (r *Registry) Supports(path string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extract returns the text content of the file. Failures wrap
// domain.ErrConversion so callers can skip the file and continue.
func (r *Registry) Extract(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	extractor, ok := r.byExt[ext]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedType, ext)
	}

	text, err := extractor.Extract(ctx, path)
	if err != nil {
		if errors.Is(err, domain.ErrConversion) {
			return "", err
		}
		return "", fmt.Errorf("%w: %s: %v", domain.ErrConversion, path, err)
	}
	return text, nil
}

// Extensions returns all registered extensions, for status output.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	return exts
}
