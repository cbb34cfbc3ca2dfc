package extract

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/vestor-labs/ingest-cli/internal/config"
)

// PDFResult is the extracted text of one stored PDF.
type PDFResult struct {
	Text      string
	PageCount int
	Truncated bool
}

// PDFExtractor reads text out of a PDF addressed by its storage key.
type PDFExtractor interface {
	ExtractText(ctx context.Context, storageKey string) (*PDFResult, error)
}

// NewPDFExtractor builds the extractor named by config.
func NewPDFExtractor(cfg config.PDFConfig, storageRoot string, maxChars int) (PDFExtractor, error) {
	switch cfg.Provider {
	case "", "stub":
		return &StubPDF{}, nil
	case "pdftotext":
		return NewPdfToText(cfg.PdfToTextPath, storageRoot, maxChars), nil
	default:
		return nil, eris.New(fmt.Sprintf("extract: unknown pdf provider %q", cfg.Provider))
	}
}

// PdfToText shells out to the pdftotext CLI against files under the
// storage root.
type PdfToText struct {
	binPath     string
	storageRoot string
	maxChars    int
}

// NewPdfToText creates a PdfToText extractor. If binPath is empty,
// "pdftotext" is used.
func NewPdfToText(binPath, storageRoot string, maxChars int) *PdfToText {
	if binPath == "" {
		binPath = "pdftotext"
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &PdfToText{binPath: binPath, storageRoot: storageRoot, maxChars: maxChars}
}

// ExtractText runs pdftotext -layout on the stored PDF and returns stdout.
// Page count comes from the form feeds pdftotext emits between pages.
func (p *PdfToText) ExtractText(ctx context.Context, storageKey string) (*PDFResult, error) {
	path := filepath.Join(p.storageRoot, filepath.Clean("/"+storageKey))
	if _, err := os.Stat(path); err != nil {
		return nil, eris.Wrapf(err, "extract: stored pdf %s", storageKey)
	}

	cmd := exec.CommandContext(ctx, p.binPath, "-layout", path, "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, eris.Wrapf(ErrTimeout, "extract: pdftotext %s", storageKey)
		}
		return nil, eris.Wrapf(err, "extract: pdftotext failed for %s: %s", storageKey, stderr.String())
	}

	raw := stdout.String()
	pages := strings.Count(raw, "\f") + 1
	text := strings.TrimSpace(strings.ReplaceAll(raw, "\f", "\n\n"))
	text, truncated := truncate(text, p.maxChars)

	return &PDFResult{Text: text, PageCount: pages, Truncated: truncated}, nil
}

// StubPDF produces deterministic placeholder text keyed by the storage key.
// It stands in for a real parser in environments without pdftotext.
type StubPDF struct{}

func (s *StubPDF) ExtractText(_ context.Context, storageKey string) (*PDFResult, error) {
	sum := sha256.Sum256([]byte(storageKey))
	tag := hex.EncodeToString(sum[:])[:12]

	text := fmt.Sprintf(
		"Placeholder extraction for stored document %s.\n\n"+
			"Reference %s. Replace the stub provider with pdftotext to read real content.",
		storageKey, tag,
	)
	return &PDFResult{Text: text, PageCount: 1}, nil
}
