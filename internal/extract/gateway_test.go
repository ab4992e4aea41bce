package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

// mockRunner scripts command invocations by binary name.
type mockRunner struct {
	outputs map[string][]byte
	errs    map[string]error
	calls   []string
	onRun   func(ctx context.Context, name string, args []string)
}

func (m *mockRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, name)
	if m.onRun != nil {
		m.onRun(ctx, name, args)
	}
	if err := m.errs[name]; err != nil {
		return nil, err
	}
	return m.outputs[name], nil
}

// allTools makes every external tool appear installed.
func allTools(t *testing.T) {
	t.Helper()
	orig := lookPath
	lookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }
	t.Cleanup(func() { lookPath = orig })
}

// onlyTools limits which external tools appear installed.
func onlyTools(t *testing.T, names ...string) {
	t.Helper()
	orig := lookPath
	lookPath = func(name string) (string, error) {
		for _, n := range names {
			if n == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("not found")
	}
	t.Cleanup(func() { lookPath = orig })
}

func TestExtract_PlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")
	content := "FINDINGS:\nClear lungs.\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	g := NewWithRunner(&mockRunner{})

	got, err := g.Extract(context.Background(), path, "txt")
	require.NoError(t, err)
	assert.Equal(t, content, got, "plain text is read verbatim")
}

func TestExtract_PlainText_Missing(t *testing.T) {
	g := NewWithRunner(&mockRunner{})
	_, err := g.Extract(context.Background(), "/does/not/exist.txt", "txt")
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtract_UnsupportedType(t *testing.T) {
	g := NewWithRunner(&mockRunner{})
	_, err := g.Extract(context.Background(), "report.docx", "docx")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestExtract_ExtensionNormalised(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "r.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	g := NewWithRunner(&mockRunner{})
	_, err := g.Extract(context.Background(), path, ".TXT")
	assert.NoError(t, err)
}

func TestExtract_PDFTextLayer(t *testing.T) {
	allTools(t)

	text := strings.Repeat("Clinical report line with plenty of text. ", 4)
	runner := &mockRunner{outputs: map[string][]byte{"pdftotext": []byte(text)}}
	g := NewWithRunner(runner)

	got, err := g.Extract(context.Background(), "report.pdf", "pdf")
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(text), got)
	assert.Equal(t, []string{"pdftotext"}, runner.calls, "no OCR when the text layer suffices")
}

func TestExtract_PDFNoTool(t *testing.T) {
	onlyTools(t) // nothing installed

	g := NewWithRunner(&mockRunner{})
	_, err := g.Extract(context.Background(), "report.pdf", "pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	assert.Contains(t, err.Error(), "pdftotext not found")
}

// A short text layer triggers the OCR fallback: pages are rendered and
// each page image OCRed in order.
func TestExtract_PDFScannedFallsBackToOCR(t *testing.T) {
	allTools(t)

	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "scan.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF"), 0o600))

	runner := &mockRunner{
		outputs: map[string][]byte{
			"pdftotext": []byte("short"),
			"tesseract": []byte("OCR page text"),
		},
		onRun: func(_ context.Context, name string, _ []string) {
			if name == "pdftoppm" {
				// Simulate the renderer writing page images.
				outDir := pdfPath + "_images"
				_ = os.WriteFile(filepath.Join(outDir, "page-2.png"), []byte("img"), 0o600)
				_ = os.WriteFile(filepath.Join(outDir, "page-1.png"), []byte("img"), 0o600)
			}
		},
	}
	g := NewWithRunner(runner)

	got, err := g.Extract(context.Background(), pdfPath, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "OCR page text\nOCR page text", got)
	assert.Equal(t, []string{"pdftotext", "pdftoppm", "tesseract", "tesseract"}, runner.calls)

	_, statErr := os.Stat(pdfPath + "_images")
	assert.True(t, os.IsNotExist(statErr), "page image dir is cleaned up")
}

// Without a renderer the gateway degrades to the short text-layer
// result instead of failing the request.
func TestExtract_PDFScannedWithoutRenderer(t *testing.T) {
	onlyTools(t, "pdftotext")

	runner := &mockRunner{outputs: map[string][]byte{"pdftotext": []byte("short scan")}}
	g := NewWithRunner(runner)

	got, err := g.Extract(context.Background(), "scan.pdf", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "short scan", got)
}

func TestExtract_Image(t *testing.T) {
	allTools(t)

	runner := &mockRunner{outputs: map[string][]byte{"tesseract": []byte("  image text \n")}}
	g := NewWithRunner(runner)

	got, err := g.Extract(context.Background(), "photo.jpg", "jpg")
	require.NoError(t, err)
	assert.Equal(t, "image text", got)
}

func TestExtract_ImageNoOCRTool(t *testing.T) {
	onlyTools(t)

	g := NewWithRunner(&mockRunner{})
	_, err := g.Extract(context.Background(), "photo.png", "png")
	assert.ErrorIs(t, err, domain.ErrOCRUnavailable)
}

// A timed-out OCR yields empty text, not an error.
func TestExtract_ImageOCRTimeout(t *testing.T) {
	allTools(t)

	runner := &mockRunner{
		errs: map[string]error{"tesseract": errors.New("signal: killed")},
		onRun: func(ctx context.Context, name string, _ []string) {
			if name == "tesseract" {
				<-ctx.Done()
			}
		},
	}
	g := NewWithRunner(runner)
	g.SetOCRTimeout(10 * time.Millisecond)

	got, err := g.Extract(context.Background(), "photo.png", "png")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestListPageImages_NumericOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"page-10.png", "page-2.png", "page-1.png", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}

	pages, err := listPageImages(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"page-1.png", "page-2.png", "page-10.png"}, pages)
}

func TestCheckAvailable(t *testing.T) {
	onlyTools(t, "pdftotext")
	assert.NoError(t, CheckAvailable())

	onlyTools(t)
	assert.ErrorIs(t, CheckAvailable(), ErrPDFToolNotFound)
}
