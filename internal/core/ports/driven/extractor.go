package driven

import "context"

// TextExtractor turns an uploaded file into raw text.
// Unsupported extensions yield empty text and domain.ErrUnsupportedType.
// PDF and image extraction failures are returned alongside whatever text
// was recovered; the caller decides whether to fail the request.
type TextExtractor interface {
	// Extract reads the file at path, using ext (without the dot) as the
	// declared type hint.
	Extract(ctx context.Context, path, ext string) (string, error)
}
