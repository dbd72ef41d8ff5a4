// Package ocr extracts text from screenshots using a vision-capable model.
package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driven"
)

// Ensure Vision implements the interface.
var _ driven.OCRService = (*Vision)(nil)

const extractPrompt = "Extract the question and any answer options visible in " +
	"this image. Return only the extracted text, preserving line breaks " +
	"between options. If there is no readable text, respond with NO_TEXT."

// noTextMarker is what the model answers for an image without readable text.
const noTextMarker = "NO_TEXT"

// Vision performs OCR by sending the screenshot to a vision-capable model.
type Vision struct {
	model driven.ModelClient
}

// New creates a vision-based OCR service.
func New(model driven.ModelClient) *Vision {
	return &Vision{model: model}
}

// ExtractText returns the text visible in the PNG image.
func (v *Vision) ExtractText(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("%w: empty image", domain.ErrOCR)
	}

	text, err := v.model.Generate(ctx, driven.GenerateRequest{
		Prompt:      extractPrompt,
		Image:       image,
		MaxTokens:   500,
		Temperature: 0.1,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", domain.ErrOCR, err)
	}

	text = strings.TrimSpace(text)
	if text == "" || strings.EqualFold(text, noTextMarker) {
		return "", fmt.Errorf("%w: no readable text in image", domain.ErrOCR)
	}
	return text, nil
}
