package extract

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driven"
)

// Ensure PDF implements the interface.
var _ driven.FormatExtractor = (*PDF)(nil)

// PDF handles PDF files. Encrypted or malformed documents fail with
// domain.ErrConversion and are skipped by the scan.
type PDF struct{}

// NewPDF creates a new PDF extractor.
func NewPDF() *PDF {
	return &PDF{}
}

// Extensions returns the file extensions this extractor handles.
func (e *PDF) Extensions() []string {
	return []string{".pdf"}
}

// Extract returns the plain text content of all pages.
func (e *PDF) Extract(_ context.Context, path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", domain.ErrConversion, err)
	}
	defer f.Close()

	r, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: read pdf text: %v", domain.ErrConversion, err)
	}

	var b strings.Builder
	if _, err := io.Copy(&b, r); err != nil {
		return "", fmt.Errorf("%w: read pdf text: %v", domain.ErrConversion, err)
	}
	return strings.TrimSpace(b.String()), nil
}
