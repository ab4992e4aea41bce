package driven

import "context"

// CommandRunner executes an external binary and returns its combined
// output. It exists so extraction tools (pdftotext, pdftoppm, tesseract)
// can be mocked in tests.
type CommandRunner interface {
	// Run executes name with args and returns stdout.
	// The command is killed when ctx is cancelled or its deadline passes.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}
