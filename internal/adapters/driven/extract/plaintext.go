package extract

import (
	"context"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driven"
)

// Ensure Plaintext implements the interface.
var _ driven.FormatExtractor = (*Plaintext)(nil)

// Plaintext handles plain text files.
type Plaintext struct{}

// NewPlaintext creates a new plain text extractor.
func NewPlaintext() *Plaintext {
	return &Plaintext{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Plaintext) Extensions() []string {
	return []string{".txt", ".text", ".log"}
}

// Extract returns the file content as-is, with invalid UTF-8 replaced.
func (e *Plaintext) Extract(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return strings.ToValidUTF8(string(data), "�"), nil
	}
	return string(data), nil
}
