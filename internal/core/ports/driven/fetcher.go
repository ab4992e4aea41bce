package driven

import "context"

// PageFetcher retrieves informational pages from allow-listed hosts.
// URLs outside the allow-list are rejected before any connection is made.
type PageFetcher interface {
	// Allowed reports whether the URL's host is on the allow-list.
	Allowed(url string) bool

	// FetchText returns the page content with HTML stripped.
	FetchText(ctx context.Context, url string) (string, error)

	// FetchHTML returns the raw page markup.
	FetchHTML(ctx context.Context, url string) (string, error)
}
