package ingest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vestor-labs/ingest-cli/internal/extract"
)

// --- URL source mock ---

type mockURLSource struct {
	mock.Mock
}

func (m *mockURLSource) Extract(ctx context.Context, rawURL string) (*extract.URLResult, error) {
	args := m.Called(ctx, rawURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extract.URLResult), args.Error(1)
}

// --- PDF extractor mock ---

type mockPDFExtractor struct {
	mock.Mock
}

func (m *mockPDFExtractor) ExtractText(ctx context.Context, storageKey string) (*extract.PDFResult, error) {
	args := m.Called(ctx, storageKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extract.PDFResult), args.Error(1)
}
