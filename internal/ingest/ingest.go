// Package ingest orchestrates the document ingestion pipeline: extract
// source documents, chunk them into evidence, derive the investor profile,
// embed, and score coverage. Steps run in a fixed order and any step error
// fails the whole run.
package ingest

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/vestor-labs/ingest-cli/internal/chunker"
	"github.com/vestor-labs/ingest-cli/internal/coverage"
	"github.com/vestor-labs/ingest-cli/internal/embed"
	"github.com/vestor-labs/ingest-cli/internal/extract"
	"github.com/vestor-labs/ingest-cli/internal/model"
	"github.com/vestor-labs/ingest-cli/internal/profile"
	"github.com/vestor-labs/ingest-cli/internal/store"
)

// Step names, in execution order. The persisted checkpoint uses these
// strings, so they are part of the run record's wire format.
const (
	StepLoad           = "load"
	StepMarkProcessing = "mark-processing"
	StepExtractURLs    = "extract-urls"
	StepExtractPDFs    = "extract-pdfs"
	StepMarkReady      = "mark-ready"
	StepChunk          = "chunk"
	StepExtractProfile = "extract-profile"
	StepEmbed          = "embed"
	StepFinalize       = "finalize"
)

// corpusSeparator joins per-document texts for profile extraction.
const corpusSeparator = "\n\n---\n\n"

// URLSource fetches a URL and reduces it to text.
type URLSource interface {
	Extract(ctx context.Context, rawURL string) (*extract.URLResult, error)
}

// RunContext identifies one pipeline execution.
type RunContext struct {
	RunID      string
	InvestorID string
	UserID     string
}

// Options tunes the orchestrator.
type Options struct {
	ChunkOptions   chunker.Options
	Concurrency    int
	EmbedBatchSize int
}

// Orchestrator drives the ingestion steps for one investor at a time.
type Orchestrator struct {
	store    store.Store
	urls     URLSource
	pdfs     extract.PDFExtractor
	embedder embed.Generator
	opts     Options
}

// New creates an Orchestrator with all dependencies.
func New(st store.Store, urls URLSource, pdfs extract.PDFExtractor, embedder embed.Generator, opts Options) *Orchestrator {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.EmbedBatchSize <= 0 {
		opts.EmbedBatchSize = 32
	}
	return &Orchestrator{
		store:    st,
		urls:     urls,
		pdfs:     pdfs,
		embedder: embedder,
		opts:     opts,
	}
}

// runState accumulates per-run working data across steps. Counts are
// monotonically non-decreasing; the mutex guards them during the concurrent
// extraction steps.
type runState struct {
	mu sync.Mutex

	profile   *model.InvestorProfile
	docs      []model.Document
	counts    model.DocumentCounts
	completed []string
	current   string
	chunks    []model.EvidenceChunk
	fields    model.ProfileFields
}

func (st *runState) snapshot() model.StepState {
	st.mu.Lock()
	defer st.mu.Unlock()
	return model.StepState{
		CurrentStep:    st.current,
		CompletedSteps: slices.Clone(st.completed),
		DocumentCounts: st.counts,
		LastUpdated:    time.Now().UTC(),
	}
}

type step struct {
	name string
	fn   func(ctx context.Context, rc RunContext, st *runState) error
}

// Execute runs the full pipeline for one run record. The run must already
// exist in status running. On success the run finishes succeeded and the
// profile moves to ready or needs_review; on any step error the run and
// profile are both marked failed and the error is returned.
func (o *Orchestrator) Execute(ctx context.Context, rc RunContext) error {
	log := zap.L().With(
		zap.String("run_id", rc.RunID),
		zap.String("investor_id", rc.InvestorID),
	)
	log.Info("ingest: starting run")

	st := &runState{}
	steps := []step{
		{StepLoad, o.stepLoad},
		{StepMarkProcessing, o.stepMarkProcessing},
		{StepExtractURLs, o.stepExtractURLs},
		{StepExtractPDFs, o.stepExtractPDFs},
		{StepMarkReady, o.stepMarkReady},
		{StepChunk, o.stepChunk},
		{StepExtractProfile, o.stepExtractProfile},
		{StepEmbed, o.stepEmbed},
		{StepFinalize, o.stepFinalize},
	}

	for _, s := range steps {
		st.mu.Lock()
		st.current = s.name
		st.mu.Unlock()

		if err := o.store.UpdateStepState(ctx, rc.RunID, st.snapshot()); err != nil {
			return o.fail(ctx, rc, s.name, err, log)
		}

		start := time.Now()
		if err := s.fn(ctx, rc, st); err != nil {
			return o.fail(ctx, rc, s.name, err, log)
		}

		st.mu.Lock()
		st.completed = append(st.completed, s.name)
		st.mu.Unlock()

		if err := o.store.UpdateStepState(ctx, rc.RunID, st.snapshot()); err != nil {
			return o.fail(ctx, rc, s.name, err, log)
		}
		log.Info("ingest: step complete",
			zap.String("step", s.name),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	}

	log.Info("ingest: run succeeded",
		zap.Int("documents", st.counts.Total),
		zap.Int("processed", st.counts.Processed),
		zap.Int("failed", st.counts.Failed),
		zap.Int("chunks", len(st.chunks)),
	)
	return nil
}

// fail records the terminal failure on both the run and the profile, then
// returns the wrapped step error. Bookkeeping failures are logged, not
// returned: the original error is what the caller needs.
func (o *Orchestrator) fail(ctx context.Context, rc RunContext, stepName string, err error, log *zap.Logger) error {
	status := model.RunStatusFailed
	if errors.Is(err, context.Canceled) {
		status = model.RunStatusCanceled
	}
	log.Error("ingest: step failed", zap.String("step", stepName), zap.Error(err))

	if finishErr := o.store.FinishRun(ctx, rc.RunID, status, err.Error()); finishErr != nil {
		log.Warn("ingest: failed to finish run", zap.Error(finishErr))
	}
	if statusErr := o.store.UpdateProfileStatus(ctx, rc.InvestorID, model.ProfileStatusFailed); statusErr != nil {
		log.Warn("ingest: failed to update profile status", zap.Error(statusErr))
	}
	return eris.Wrapf(err, "ingest: step %s", stepName)
}

func (o *Orchestrator) stepLoad(ctx context.Context, rc RunContext, st *runState) error {
	p, err := o.store.GetProfile(ctx, rc.InvestorID)
	if err != nil {
		return err
	}
	docs, err := o.store.ListDocuments(ctx, rc.InvestorID)
	if err != nil {
		return err
	}

	st.profile = p
	st.docs = docs
	st.counts.Total = len(docs)
	return nil
}

func (o *Orchestrator) stepMarkProcessing(ctx context.Context, rc RunContext, st *runState) error {
	if err := o.store.UpdateProfileStatus(ctx, rc.InvestorID, model.ProfileStatusProcessing); err != nil {
		return err
	}
	n, err := o.store.UpdateDocumentStatusByInvestor(ctx, rc.InvestorID,
		model.DocumentStatusQueued, model.DocumentStatusProcessing)
	if err != nil {
		return err
	}
	for i := range st.docs {
		if st.docs[i].Status == model.DocumentStatusQueued {
			st.docs[i].Status = model.DocumentStatusProcessing
		}
	}
	zap.L().Debug("ingest: documents marked processing", zap.Int("count", n))
	return nil
}

func (o *Orchestrator) stepExtractURLs(ctx context.Context, rc RunContext, st *runState) error {
	return o.extractDocuments(ctx, rc, st, model.DocumentTypeURL, model.DocumentTypePasted)
}

func (o *Orchestrator) stepExtractPDFs(ctx context.Context, rc RunContext, st *runState) error {
	return o.extractDocuments(ctx, rc, st, model.DocumentTypePDF)
}

func (o *Orchestrator) stepMarkReady(ctx context.Context, rc RunContext, st *runState) error {
	n, err := o.store.UpdateDocumentStatusByInvestor(ctx, rc.InvestorID,
		model.DocumentStatusProcessing, model.DocumentStatusReady)
	if err != nil {
		return err
	}
	for i := range st.docs {
		if st.docs[i].Status == model.DocumentStatusProcessing {
			st.docs[i].Status = model.DocumentStatusReady
		}
	}
	zap.L().Debug("ingest: documents marked ready", zap.Int("count", n))
	return nil
}

// stepChunk rebuilds the investor's evidence chunk set from scratch.
func (o *Orchestrator) stepChunk(ctx context.Context, rc RunContext, st *runState) error {
	var chunks []model.EvidenceChunk
	for _, doc := range st.docs {
		if doc.Status != model.DocumentStatusReady || strings.TrimSpace(doc.ExtractedText) == "" {
			continue
		}
		split := chunker.Split(chunker.Input{
			ExtractedText: doc.ExtractedText,
			DocumentType:  doc.Type,
			URL:           doc.URL,
			StorageKey:    doc.StorageKey,
		}, o.opts.ChunkOptions)

		for _, c := range split {
			chunks = append(chunks, model.EvidenceChunk{
				ID:            uuid.New().String(),
				InvestorID:    rc.InvestorID,
				DocumentID:    doc.ID,
				SectionType:   c.SectionType,
				Title:         c.Title,
				Content:       c.Content,
				ContentHash:   c.ContentHash,
				ChunkIndex:    c.Index,
				SourceLocator: c.SourceLocator,
			})
		}
	}

	if _, err := o.store.DeleteChunks(ctx, rc.InvestorID); err != nil {
		return err
	}
	if _, err := o.store.InsertChunks(ctx, chunks); err != nil {
		return err
	}

	st.chunks = chunks
	return nil
}

func (o *Orchestrator) stepExtractProfile(ctx context.Context, rc RunContext, st *runState) error {
	var texts []string
	for _, doc := range st.docs {
		if doc.Status == model.DocumentStatusReady && strings.TrimSpace(doc.ExtractedText) != "" {
			texts = append(texts, doc.ExtractedText)
		}
	}

	fields := profile.Extract(strings.Join(texts, corpusSeparator))
	if err := o.store.UpdateProfileFields(ctx, rc.InvestorID, fields); err != nil {
		return err
	}

	st.fields = fields
	return nil
}

func (o *Orchestrator) stepEmbed(ctx context.Context, rc RunContext, st *runState) error {
	// Chunk embeddings, batched.
	for start := 0; start < len(st.chunks); start += o.opts.EmbedBatchSize {
		end := min(start+o.opts.EmbedBatchSize, len(st.chunks))
		batch := st.chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}
		vecs, err := o.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return err
		}
		for i, c := range batch {
			if err := o.store.UpdateChunkEmbedding(ctx, c.ID, vecs[i], o.embedder.Model()); err != nil {
				return err
			}
		}
	}

	// Profile-level embeddings: the thesis summary, and the combined
	// focus/stage/geography vocabulary for similarity search.
	var thesisVec, sectorsVec []float32
	if st.fields.ThesisSummary != "" {
		vec, err := o.embedder.Embed(ctx, st.fields.ThesisSummary)
		if err != nil {
			return err
		}
		thesisVec = vec
	}

	var vocab []string
	vocab = append(vocab, st.fields.FocusSectors...)
	vocab = append(vocab, st.fields.Stages...)
	vocab = append(vocab, st.fields.Geographies...)
	if len(vocab) > 0 {
		vec, err := o.embedder.Embed(ctx, strings.Join(vocab, ", "))
		if err != nil {
			return err
		}
		sectorsVec = vec
	}

	if thesisVec != nil || sectorsVec != nil {
		if err := o.store.UpdateProfileEmbeddings(ctx, rc.InvestorID,
			thesisVec, sectorsVec, o.embedder.Model(), o.embedder.Dimensions()); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) stepFinalize(ctx context.Context, rc RunContext, st *runState) error {
	scored := *st.profile
	scored.ProfileFields = st.fields

	result := coverage.Compute(&scored)
	status := model.ProfileStatusReady
	if coverage.NeedsReview(result.Score) {
		status = model.ProfileStatusNeedsReview
	}

	if err := o.store.UpdateCoverage(ctx, rc.InvestorID, result.Score, result.MissingFields, status); err != nil {
		return err
	}
	if err := o.store.FinishRun(ctx, rc.RunID, model.RunStatusSucceeded, ""); err != nil {
		return err
	}

	zap.L().Info("ingest: profile finalized",
		zap.String("investor_id", rc.InvestorID),
		zap.Int("coverage_score", result.Score),
		zap.String("profile_status", string(status)),
		zap.Strings("missing_fields", result.MissingFields),
	)
	return nil
}
