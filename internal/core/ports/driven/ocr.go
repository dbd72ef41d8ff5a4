package driven

import "context"

// OCRService extracts text from a screenshot image.
type OCRService interface {
	// ExtractText returns the text visible in the PNG image. A failure
	// wraps domain.ErrOCR; the event is discarded.
	ExtractText(ctx context.Context, image []byte) (string, error)
}
