package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file type the extraction gateway cannot handle.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrExtractionFailed indicates the uploaded document could not be read.
	// Reading the primary document is the only stage allowed to fail a request.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrOCRUnavailable indicates the OCR binary is not installed.
	ErrOCRUnavailable = errors.New("ocr tool unavailable")

	// ErrRendererUnavailable indicates the PDF page renderer is not installed.
	// Extraction degrades to whatever the text layer produced.
	ErrRendererUnavailable = errors.New("pdf renderer unavailable")

	// ErrCredentialMissing indicates an external service API key is not configured.
	// Stages gated on the credential are skipped, not failed.
	ErrCredentialMissing = errors.New("credential missing")

	// ErrBlockedHost indicates a URL outside the trusted host allow-list.
	// The fetch is rejected before any connection is made.
	ErrBlockedHost = errors.New("blocked host")

	// ErrRateLimited indicates an external API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
