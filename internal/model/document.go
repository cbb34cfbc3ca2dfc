package model

import "time"

// DocumentType identifies how a source document was provided.
type DocumentType string

const (
	DocumentTypeURL    DocumentType = "url"
	DocumentTypePDF    DocumentType = "pdf"
	DocumentTypePasted DocumentType = "pasted"
)

// DocumentStatus represents a document's position in the ingestion lifecycle.
type DocumentStatus string

const (
	DocumentStatusQueued     DocumentStatus = "queued"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusReady      DocumentStatus = "ready"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// Document is one raw source (web page, PDF, pasted text) owned by an investor.
// ContentHash is unique per owning user and deduplicates re-added sources.
type Document struct {
	ID            string         `json:"id"`
	InvestorID    string         `json:"investor_id"`
	UserID        string         `json:"user_id"`
	Type          DocumentType   `json:"type"`
	URL           string         `json:"url,omitempty"`
	StorageKey    string         `json:"storage_key,omitempty"`
	ContentHash   string         `json:"content_hash"`
	Status        DocumentStatus `json:"status"`
	ExtractedText string         `json:"extracted_text,omitempty"`
	Meta          *DocumentMeta  `json:"meta,omitempty"`
	Error         string         `json:"error,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// DocumentMeta carries extraction metadata persisted alongside the text.
type DocumentMeta struct {
	Source        string    `json:"source,omitempty"`
	FinalURL      string    `json:"final_url,omitempty"`
	Title         string    `json:"title,omitempty"`
	Description   string    `json:"description,omitempty"`
	Truncated     bool      `json:"truncated,omitempty"`
	ContentLength int       `json:"content_length,omitempty"`
	PageCount     int       `json:"page_count,omitempty"`
	StorageKey    string    `json:"storage_key,omitempty"`
	ExtractedAt   time.Time `json:"extracted_at,omitempty"`
}

// SourceRef returns the document's source reference: its URL for url
// documents, otherwise its storage key.
func (d Document) SourceRef() string {
	if d.Type == DocumentTypeURL {
		return d.URL
	}
	return d.StorageKey
}
