// Package store persists investor profiles, documents, ingestion runs, and
// evidence chunks. Two backends are provided: Postgres (pgx, with pgvector
// columns) for production and SQLite (modernc) for local single-user use.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/vestor-labs/ingest-cli/internal/model"
)

// ErrNotFound marks lookups for rows that do not exist. Callers that care
// test with errors.Is; everything else just propagates the wrapped error.
var ErrNotFound = eris.New("not found")

// RunFilter specifies criteria for listing ingestion runs.
type RunFilter struct {
	InvestorID string          `json:"investor_id,omitempty"`
	Status     model.RunStatus `json:"status,omitempty"`
	Limit      int             `json:"limit,omitempty"`
	Offset     int             `json:"offset,omitempty"`
}

// DocumentStore persists source documents and their extraction results.
type DocumentStore interface {
	CreateDocument(ctx context.Context, doc model.Document) (*model.Document, error)
	GetDocumentByHash(ctx context.Context, userID, contentHash string) (*model.Document, error)
	ListDocuments(ctx context.Context, investorID string) ([]model.Document, error)
	// UpdateDocumentExtraction stores extracted text and metadata and marks
	// the document ready.
	UpdateDocumentExtraction(ctx context.Context, docID, text string, meta *model.DocumentMeta) error
	// UpdateDocumentError marks the document failed with a message.
	UpdateDocumentError(ctx context.Context, docID, message string) error
	UpdateDocumentStatus(ctx context.Context, docID string, status model.DocumentStatus) error
	// UpdateDocumentStatusByInvestor bulk-moves all of an investor's
	// documents from one status to another, returning the count moved.
	UpdateDocumentStatusByInvestor(ctx context.Context, investorID string, from, to model.DocumentStatus) (int, error)
}

// RunStore persists ingestion runs and their step checkpoints.
type RunStore interface {
	CreateRun(ctx context.Context, investorID, userID string) (*model.IngestionRun, error)
	GetRun(ctx context.Context, runID string) (*model.IngestionRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.IngestionRun, error)
	UpdateStepState(ctx context.Context, runID string, state model.StepState) error
	// FinishRun records the terminal status, error message, and finish time.
	FinishRun(ctx context.Context, runID string, status model.RunStatus, errMsg string) error
}

// ChunkStore persists evidence chunks. An investor's chunk set is replaced
// wholesale each run: delete, insert, then embed.
type ChunkStore interface {
	DeleteChunks(ctx context.Context, investorID string) (int, error)
	InsertChunks(ctx context.Context, chunks []model.EvidenceChunk) (int, error)
	ListChunks(ctx context.Context, investorID string) ([]model.EvidenceChunk, error)
	UpdateChunkEmbedding(ctx context.Context, chunkID string, embedding []float32, embeddingModel string) error
}

// ProfileStore persists investor profiles.
type ProfileStore interface {
	CreateProfile(ctx context.Context, p model.InvestorProfile) (*model.InvestorProfile, error)
	GetProfile(ctx context.Context, investorID string) (*model.InvestorProfile, error)
	UpdateProfileFields(ctx context.Context, investorID string, fields model.ProfileFields) error
	UpdateProfileEmbeddings(ctx context.Context, investorID string, thesis, sectors []float32, embeddingModel string, dim int) error
	UpdateCoverage(ctx context.Context, investorID string, score int, missingFields []string, status model.ProfileStatus) error
	UpdateProfileStatus(ctx context.Context, investorID string, status model.ProfileStatus) error
}

// Store is the full persistence interface for the ingestion pipeline.
type Store interface {
	DocumentStore
	RunStore
	ChunkStore
	ProfileStore

	Migrate(ctx context.Context) error
	Close() error
}
