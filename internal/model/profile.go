package model

import "time"

// ProfileStatus gates an investor profile through the review workflow.
// It transitions to failed only via the orchestrator's failure path.
type ProfileStatus string

const (
	ProfileStatusDraft       ProfileStatus = "draft"
	ProfileStatusProcessing  ProfileStatus = "processing"
	ProfileStatusNeedsReview ProfileStatus = "needs_review"
	ProfileStatusReady       ProfileStatus = "ready"
	ProfileStatusFailed      ProfileStatus = "failed"
)

// ProfileFields are the content fields rewritten by the profile extractor on
// every run. Nil pointers and empty slices mean "not found in the corpus".
type ProfileFields struct {
	ThesisSummary   string   `json:"thesis_summary,omitempty"`
	CheckSizeMin    *int64   `json:"check_size_min,omitempty"`
	CheckSizeMax    *int64   `json:"check_size_max,omitempty"`
	Stages          []string `json:"stages,omitempty"`
	Geographies     []string `json:"geographies,omitempty"`
	FocusSectors    []string `json:"focus_sectors,omitempty"`
	ExcludedSectors []string `json:"excluded_sectors,omitempty"`
}

// InvestorProfile is the subset of the investor entity the pipeline reads and
// writes: identity fields entered at creation, content fields owned by the
// profile extractor, and coverage/status owned by finalize.
type InvestorProfile struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	Name    string `json:"name"`
	Firm    string `json:"firm,omitempty"`
	Website string `json:"website,omitempty"`

	ProfileFields

	CoverageScore int           `json:"coverage_score"`
	MissingFields []string      `json:"missing_fields,omitempty"`
	Status        ProfileStatus `json:"status"`

	ThesisEmbedding  []float32 `json:"thesis_embedding,omitempty"`
	SectorsEmbedding []float32 `json:"sectors_embedding,omitempty"`
	EmbeddingModel   string    `json:"embedding_model,omitempty"`
	EmbeddingDim     int       `json:"embedding_dim,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
