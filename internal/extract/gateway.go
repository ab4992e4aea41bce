// Package extract implements the text extraction gateway: plain text
// read, PDF text-layer extraction with an OCR fallback for scanned
// documents, and direct OCR for images. External tools (pdftotext,
// pdftoppm, tesseract) are invoked through the CommandRunner port so
// they can be mocked in tests.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/reportlens/internal/core/domain"
	"github.com/custodia-labs/reportlens/internal/core/ports/driven"
	"github.com/custodia-labs/reportlens/internal/logger"
)

// Ensure Gateway implements the interface.
var _ driven.TextExtractor = (*Gateway)(nil)

const (
	// textLayerThreshold is the heuristic for a scanned/image-only PDF:
	// a real text layer yields more than this many characters.
	textLayerThreshold = 50

	// DefaultOCRTimeout bounds a single OCR invocation.
	DefaultOCRTimeout = 30 * time.Second

	// renderDPI is the resolution for rendered PDF pages.
	renderDPI = "150"
)

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// lookPath is swapped in tests to control tool availability.
var lookPath = exec.LookPath

// Gateway converts an uploaded file into raw text.
type Gateway struct {
	runner     driven.CommandRunner
	ocrTimeout time.Duration
}

// New creates a gateway using the real command runner.
func New() *Gateway {
	return NewWithRunner(ExecRunner{})
}

// NewWithRunner creates a gateway with an injected command runner.
func NewWithRunner(runner driven.CommandRunner) *Gateway {
	return &Gateway{
		runner:     runner,
		ocrTimeout: DefaultOCRTimeout,
	}
}

// SetOCRTimeout overrides the per-invocation OCR deadline.
func (g *Gateway) SetOCRTimeout(d time.Duration) {
	if d > 0 {
		g.ocrTimeout = d
	}
}

// Extract reads the file at path using ext as the declared type hint.
// Plain text is read verbatim. PDFs try the text layer first and fall
// back to page rendering plus OCR. Images go straight to OCR. Unknown
// extensions yield empty text and domain.ErrUnsupportedType.
func (g *Gateway) Extract(ctx context.Context, path, ext string) (string, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
		}
		return string(data), nil

	case "pdf":
		return g.extractPDF(ctx, path)

	case "png", "jpg", "jpeg":
		return g.ocrImage(ctx, path)

	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedType, ext)
	}
}

// extractPDF tries the text layer first. A short result means the PDF
// is likely scanned, so each page is rendered to an image and OCRed in
// page order. A missing renderer degrades to the text-layer result.
func (g *Gateway) extractPDF(ctx context.Context, path string) (string, error) {
	if _, err := lookPath("pdftotext"); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, ErrPDFToolNotFound)
	}

	direct := ""
	out, err := g.runner.Run(ctx, "pdftotext", "-layout", "-q", path, "-")
	if err != nil {
		logger.Warn("pdftotext failed for %s: %v", filepath.Base(path), err)
	} else {
		direct = strings.TrimSpace(string(out))
	}

	if len(direct) > textLayerThreshold {
		return direct, nil
	}

	if _, err := lookPath("pdftoppm"); err != nil {
		logger.Warn("pdftoppm unavailable, returning text-layer result (%d chars)", len(direct))
		return direct, nil
	}
	if _, err := lookPath("tesseract"); err != nil {
		logger.Warn("tesseract unavailable, returning text-layer result (%d chars)", len(direct))
		return direct, nil
	}

	outDir := path + "_images"
	if err := os.MkdirAll(outDir, 0o700); err != nil {
		return direct, fmt.Errorf("%w: create page dir: %v", domain.ErrExtractionFailed, err)
	}
	defer os.RemoveAll(outDir)

	if _, err := g.runner.Run(ctx, "pdftoppm", "-png", "-r", renderDPI, path, filepath.Join(outDir, "page")); err != nil {
		return direct, fmt.Errorf("%w: render pages: %v", domain.ErrExtractionFailed, err)
	}

	pages, err := listPageImages(outDir)
	if err != nil {
		return direct, fmt.Errorf("%w: list pages: %v", domain.ErrExtractionFailed, err)
	}

	var sb strings.Builder
	for _, page := range pages {
		text, err := g.ocrImage(ctx, filepath.Join(outDir, page))
		if err != nil {
			return strings.TrimSpace(sb.String()), fmt.Errorf("%w: ocr page %s: %v", domain.ErrExtractionFailed, page, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return strings.TrimSpace(sb.String()), nil
}

// ocrImage runs OCR on a single image under the configured deadline.
// A timed-out OCR yields empty text rather than blocking the request.
func (g *Gateway) ocrImage(ctx context.Context, path string) (string, error) {
	if _, err := lookPath("tesseract"); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrOCRUnavailable, err)
	}

	ocrCtx, cancel := context.WithTimeout(ctx, g.ocrTimeout)
	defer cancel()

	out, err := g.runner.Run(ocrCtx, "tesseract", path, "stdout", "-l", "eng")
	if err != nil {
		if errors.Is(ocrCtx.Err(), context.DeadlineExceeded) {
			logger.Warn("ocr timed out after %s for %s", g.ocrTimeout, filepath.Base(path))
			return "", nil
		}
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	return strings.TrimSpace(string(out)), nil
}

var pageNumber = regexp.MustCompile(`(\d+)\.png$`)

// listPageImages returns the rendered page files in page order.
// pdftoppm names pages page-1.png … page-10.png, so a plain lexical
// sort would misorder double-digit pages.
func listPageImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var pages []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".png") {
			pages = append(pages, e.Name())
		}
	}

	sort.Slice(pages, func(i, j int) bool {
		ni, iok := pageIndex(pages[i])
		nj, jok := pageIndex(pages[j])
		if iok && jok && ni != nj {
			return ni < nj
		}
		return pages[i] < pages[j]
	})

	return pages, nil
}

// pageIndex extracts the numeric page suffix from a rendered file name.
func pageIndex(name string) (int, bool) {
	m := pageNumber.FindStringSubmatch(name)
	if len(m) != 2 {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// CheckAvailable verifies the PDF text extraction tool is installed.
func CheckAvailable() error {
	if _, err := lookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns guidance for installing the external tools.
func InstallInstructions() string {
	return strings.Join([]string{
		"reportlens shells out to poppler and tesseract for PDF and image extraction:",
		"  macOS:  brew install poppler tesseract",
		"  Debian: apt install poppler-utils tesseract-ocr",
		"pdftotext handles the PDF text layer; pdftoppm renders scanned pages for OCR.",
	}, "\n")
}
