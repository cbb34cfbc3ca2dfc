package ingest

import (
	"context"
	"slices"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vestor-labs/ingest-cli/internal/extract"
	"github.com/vestor-labs/ingest-cli/internal/model"
)

// extractDocuments runs extraction for all processing documents of the given
// types, bounded by the configured concurrency. A single document's
// extraction failure marks that document failed and counts it, but does not
// fail the step; only store write failures are fatal.
func (o *Orchestrator) extractDocuments(ctx context.Context, rc RunContext, st *runState, types ...model.DocumentType) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Concurrency)

	for i := range st.docs {
		if !slices.Contains(types, st.docs[i].Type) || st.docs[i].Status != model.DocumentStatusProcessing {
			continue
		}
		i := i
		g.Go(func() error {
			return o.extractOne(gctx, rc, st, i)
		})
	}
	return g.Wait()
}

func (o *Orchestrator) extractOne(ctx context.Context, rc RunContext, st *runState, i int) error {
	doc := st.docs[i]
	log := zap.L().With(
		zap.String("document_id", doc.ID),
		zap.String("type", string(doc.Type)),
		zap.String("source", doc.SourceRef()),
	)

	text, meta, err := o.extractDocument(ctx, doc)
	if err != nil {
		if extract.IsTimeout(err) {
			log.Warn("ingest: extraction timed out", zap.Error(err))
		} else {
			log.Warn("ingest: extraction failed", zap.Error(err))
		}
		if updateErr := o.store.UpdateDocumentError(ctx, doc.ID, err.Error()); updateErr != nil {
			return updateErr
		}
		st.mu.Lock()
		st.docs[i].Status = model.DocumentStatusFailed
		st.docs[i].Error = err.Error()
		st.counts.Failed++
		st.mu.Unlock()
		o.persistCounts(ctx, rc, st, log)
		return nil
	}

	if updateErr := o.store.UpdateDocumentExtraction(ctx, doc.ID, text, meta); updateErr != nil {
		return updateErr
	}
	st.mu.Lock()
	st.docs[i].Status = model.DocumentStatusReady
	st.docs[i].ExtractedText = text
	st.docs[i].Meta = meta
	st.counts.Processed++
	st.mu.Unlock()
	o.persistCounts(ctx, rc, st, log)
	return nil
}

// persistCounts checkpoints progress after each document so an interrupted
// run leaves an accurate record. Persistence failures here are logged only;
// the end-of-step checkpoint is the authoritative one.
func (o *Orchestrator) persistCounts(ctx context.Context, rc RunContext, st *runState, log *zap.Logger) {
	if err := o.store.UpdateStepState(ctx, rc.RunID, st.snapshot()); err != nil {
		log.Warn("ingest: failed to checkpoint document counts", zap.Error(err))
	}
}

func (o *Orchestrator) extractDocument(ctx context.Context, doc model.Document) (string, *model.DocumentMeta, error) {
	now := time.Now().UTC()

	switch doc.Type {
	case model.DocumentTypeURL:
		res, err := o.urls.Extract(ctx, doc.URL)
		if err != nil {
			return "", nil, err
		}
		return res.Text, &model.DocumentMeta{
			Source:        doc.URL,
			FinalURL:      res.FinalURL,
			Title:         res.Title,
			Description:   res.Description,
			Truncated:     res.Truncated,
			ContentLength: res.ContentLength,
			ExtractedAt:   now,
		}, nil

	case model.DocumentTypePDF:
		res, err := o.pdfs.ExtractText(ctx, doc.StorageKey)
		if err != nil {
			return "", nil, err
		}
		return res.Text, &model.DocumentMeta{
			Source:      doc.StorageKey,
			StorageKey:  doc.StorageKey,
			PageCount:   res.PageCount,
			Truncated:   res.Truncated,
			ExtractedAt: now,
		}, nil

	case model.DocumentTypePasted:
		// Pasted text arrives already extracted; just stamp it.
		return doc.ExtractedText, &model.DocumentMeta{
			Source:        "pasted",
			ContentLength: len(doc.ExtractedText),
			ExtractedAt:   now,
		}, nil

	default:
		return "", nil, eris.Errorf("ingest: unknown document type %q", doc.Type)
	}
}
