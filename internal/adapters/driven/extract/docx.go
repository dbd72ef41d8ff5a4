package extract

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driven"
)

// Ensure Docx implements the interface.
var _ driven.FormatExtractor = (*Docx)(nil)

// Docx handles DOCX files (ZIP archives holding WordprocessingML).
type Docx struct{}

// NewDocx creates a new DOCX extractor.
func NewDocx() *Docx {
	return &Docx{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Docx) Extensions() []string {
	return []string{".docx"}
}

// Extract returns the paragraph text from word/document.xml.
func (e *Docx) Extract(_ context.Context, path string) (string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("%w: open docx: %v", domain.ErrConversion, err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("%w: open document.xml: %v", domain.ErrConversion, err)
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("%w: read document.xml: %v", domain.ErrConversion, err)
		}

		return parseDocumentXML(content), nil
	}

	return "", fmt.Errorf("%w: no word/document.xml in archive", domain.ErrConversion)
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// parseDocumentXML extracts text content from the document XML.
func parseDocumentXML(content []byte) string {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return ""
	}

	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		for _, run := range para.Runs {
			for _, text := range run.Text {
				result.WriteString(text.Content)
			}
		}
	}

	return strings.TrimSpace(result.String())
}
