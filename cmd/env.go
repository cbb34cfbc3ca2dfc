package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/vestor-labs/ingest-cli/internal/chunker"
	"github.com/vestor-labs/ingest-cli/internal/embed"
	"github.com/vestor-labs/ingest-cli/internal/extract"
	"github.com/vestor-labs/ingest-cli/internal/ingest"
	"github.com/vestor-labs/ingest-cli/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.SQLitePath
		if dsn == "" {
			dsn = "ingest.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.Pool.MaxConns,
			MinConns: cfg.Store.Pool.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initOrchestrator wires the extraction, embedding, and store dependencies
// into an orchestrator. The store is opened and migrated here; the caller
// owns closing it.
func initOrchestrator(ctx context.Context) (*ingest.Orchestrator, store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, nil, eris.Wrap(err, "migrate store")
	}

	pdfs, err := extract.NewPDFExtractor(cfg.PDF, cfg.Storage.Root, cfg.Fetch.MaxChars)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	embedder, err := embed.New(cfg.Embed)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	o := ingest.New(st, extract.NewURLExtractor(cfg.Fetch), pdfs, embedder, ingest.Options{
		ChunkOptions: chunker.Options{
			MaxChunkSize: cfg.Chunk.MaxChunkSize,
			OverlapSize:  cfg.Chunk.OverlapSize,
		},
		Concurrency:    cfg.Fetch.MaxConcurrency,
		EmbedBatchSize: cfg.Embed.BatchSize,
	})
	return o, st, nil
}
