package model

import "time"

// SectionType is the coarse semantic label assigned to a chunk by the
// chunker's keyword heuristic.
type SectionType string

const (
	SectionTypeThesis    SectionType = "thesis"
	SectionTypeCriteria  SectionType = "criteria"
	SectionTypePortfolio SectionType = "portfolio"
	SectionTypeTeam      SectionType = "team"
	SectionTypeGeneral   SectionType = "general"
)

// SourceLocator points back to where a chunk originated for traceability.
type SourceLocator struct {
	URL       string `json:"url,omitempty"`
	Page      int    `json:"page,omitempty"`
	LineStart int    `json:"lineStart,omitempty"`
	LineEnd   int    `json:"lineEnd,omitempty"`
}

// EvidenceChunk is a typed, hashed segment of extracted document text used
// as citable support for a derived profile. The whole set for an investor is
// deleted and rebuilt each run; uniqueness is (investorId, documentId,
// contentHash).
type EvidenceChunk struct {
	ID             string        `json:"id"`
	InvestorID     string        `json:"investor_id"`
	DocumentID     string        `json:"document_id"`
	SectionType    SectionType   `json:"section_type"`
	Title          string        `json:"title,omitempty"`
	Content        string        `json:"content"`
	ContentHash    string        `json:"content_hash"`
	ChunkIndex     int           `json:"chunk_index"`
	SourceLocator  SourceLocator `json:"source_locator"`
	Embedding      []float32     `json:"embedding,omitempty"`
	EmbeddingModel string        `json:"embedding_model,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}
