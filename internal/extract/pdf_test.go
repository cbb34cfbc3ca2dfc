package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vestor-labs/ingest-cli/internal/config"
)

func TestStubPDF_Deterministic(t *testing.T) {
	s := &StubPDF{}

	a, err := s.ExtractText(context.Background(), "docs/inv-1/deck.pdf")
	require.NoError(t, err)
	b, err := s.ExtractText(context.Background(), "docs/inv-1/deck.pdf")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, 1, a.PageCount)
	assert.Contains(t, a.Text, "docs/inv-1/deck.pdf")
}

func TestStubPDF_DiffersByKey(t *testing.T) {
	s := &StubPDF{}

	a, err := s.ExtractText(context.Background(), "docs/inv-1/deck.pdf")
	require.NoError(t, err)
	b, err := s.ExtractText(context.Background(), "docs/inv-2/memo.pdf")
	require.NoError(t, err)

	assert.NotEqual(t, a.Text, b.Text)
}

func TestPdfToText_MissingFile(t *testing.T) {
	p := NewPdfToText("", t.TempDir(), 0)

	_, err := p.ExtractText(context.Background(), "nope/missing.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.pdf")
}

func TestNewPDFExtractor_ProviderSelection(t *testing.T) {
	e, err := NewPDFExtractor(config.PDFConfig{}, "/tmp", 0)
	require.NoError(t, err)
	assert.IsType(t, &StubPDF{}, e)

	e, err = NewPDFExtractor(config.PDFConfig{Provider: "pdftotext"}, "/tmp", 0)
	require.NoError(t, err)
	assert.IsType(t, &PdfToText{}, e)

	_, err = NewPDFExtractor(config.PDFConfig{Provider: "textract"}, "/tmp", 0)
	require.Error(t, err)
}
