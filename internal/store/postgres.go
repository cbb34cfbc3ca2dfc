package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/rotisserie/eris"

	"github.com/vestor-labs/ingest-cli/internal/db"
	"github.com/vestor-labs/ingest-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hot-path store operations.
var preparedStatements = map[string]string{
	"get_profile":        `SELECT id, user_id, name, firm, website, thesis_summary, check_size_min, check_size_max, stages, geographies, focus_sectors, excluded_sectors, coverage_score, missing_fields, status, thesis_embedding, sectors_embedding, embedding_model, embedding_dim, created_at, updated_at FROM investor_profiles WHERE id = $1`,
	"list_documents":     `SELECT id, investor_id, user_id, type, url, storage_key, content_hash, status, extracted_text, meta, error, created_at, updated_at FROM documents WHERE investor_id = $1 ORDER BY created_at ASC`,
	"update_step_state":  `UPDATE ingestion_runs SET step_state = $1 WHERE id = $2`,
	"update_doc_status":  `UPDATE documents SET status = $1, updated_at = $2 WHERE id = $3`,
	"update_chunk_embed": `UPDATE evidence_chunks SET embedding = $1, embedding_model = $2 WHERE id = $3`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool; used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS investor_profiles (
	id                TEXT PRIMARY KEY,
	user_id           TEXT NOT NULL,
	name              TEXT NOT NULL,
	firm              TEXT NOT NULL DEFAULT '',
	website           TEXT NOT NULL DEFAULT '',
	thesis_summary    TEXT NOT NULL DEFAULT '',
	check_size_min    BIGINT,
	check_size_max    BIGINT,
	stages            JSONB,
	geographies       JSONB,
	focus_sectors     JSONB,
	excluded_sectors  JSONB,
	coverage_score    INTEGER NOT NULL DEFAULT 0,
	missing_fields    JSONB,
	status            TEXT NOT NULL DEFAULT 'draft',
	thesis_embedding  vector(1536),
	sectors_embedding vector(1536),
	embedding_model   TEXT NOT NULL DEFAULT '',
	embedding_dim     INTEGER NOT NULL DEFAULT 0,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS documents (
	id             TEXT PRIMARY KEY,
	investor_id    TEXT NOT NULL REFERENCES investor_profiles(id),
	user_id        TEXT NOT NULL,
	type           TEXT NOT NULL,
	url            TEXT NOT NULL DEFAULT '',
	storage_key    TEXT NOT NULL DEFAULT '',
	content_hash   TEXT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'queued',
	extracted_text TEXT NOT NULL DEFAULT '',
	meta           JSONB,
	error          TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (user_id, content_hash)
);

CREATE TABLE IF NOT EXISTS ingestion_runs (
	id          TEXT PRIMARY KEY,
	investor_id TEXT NOT NULL,
	user_id     TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'running',
	started_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at TIMESTAMPTZ,
	step_state  JSONB NOT NULL,
	error       TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS evidence_chunks (
	id              TEXT PRIMARY KEY,
	investor_id     TEXT NOT NULL,
	document_id     TEXT NOT NULL,
	section_type    TEXT NOT NULL,
	title           TEXT NOT NULL DEFAULT '',
	content         TEXT NOT NULL,
	content_hash    TEXT NOT NULL,
	chunk_index     INTEGER NOT NULL,
	source_locator  JSONB,
	embedding       vector(1536),
	embedding_model TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (investor_id, document_id, content_hash)
);

CREATE INDEX IF NOT EXISTS idx_documents_investor ON documents(investor_id);
CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(investor_id, status);
CREATE INDEX IF NOT EXISTS idx_runs_investor ON ingestion_runs(investor_id, started_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_status ON ingestion_runs(status);
CREATE INDEX IF NOT EXISTS idx_chunks_investor ON evidence_chunks(investor_id);
CREATE INDEX IF NOT EXISTS idx_chunks_document ON evidence_chunks(document_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// Documents

func (s *PostgresStore) CreateDocument(ctx context.Context, doc model.Document) (*model.Document, error) {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.Status == "" {
		doc.Status = model.DocumentStatusQueued
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	metaJSON, err := marshalNullable(doc.Meta)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal document meta")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (id, investor_id, user_id, type, url, storage_key, content_hash, status, extracted_text, meta, error, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		doc.ID, doc.InvestorID, doc.UserID, string(doc.Type), doc.URL, doc.StorageKey,
		doc.ContentHash, string(doc.Status), doc.ExtractedText, metaJSON, doc.Error, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert document")
	}
	return &doc, nil
}

func (s *PostgresStore) GetDocumentByHash(ctx context.Context, userID, contentHash string) (*model.Document, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, investor_id, user_id, type, url, storage_key, content_hash, status, extracted_text, meta, error, created_at, updated_at
		 FROM documents WHERE user_id = $1 AND content_hash = $2`,
		userID, contentHash,
	)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get document by hash")
	}
	return doc, nil
}

func (s *PostgresStore) ListDocuments(ctx context.Context, investorID string) ([]model.Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, investor_id, user_id, type, url, storage_key, content_hash, status, extracted_text, meta, error, created_at, updated_at
		 FROM documents WHERE investor_id = $1 ORDER BY created_at ASC`,
		investorID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list documents")
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan document")
		}
		docs = append(docs, *doc)
	}
	return docs, eris.Wrap(rows.Err(), "postgres: list documents iterate")
}

func (s *PostgresStore) UpdateDocumentExtraction(ctx context.Context, docID, text string, meta *model.DocumentMeta) error {
	metaJSON, err := marshalNullable(meta)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal document meta")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET extracted_text = $1, meta = $2, status = $3, error = '', updated_at = $4 WHERE id = $5`,
		text, metaJSON, string(model.DocumentStatusReady), time.Now().UTC(), docID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update document extraction %s", docID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "document %s", docID)
	}
	return nil
}

func (s *PostgresStore) UpdateDocumentError(ctx context.Context, docID, message string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		string(model.DocumentStatusFailed), message, time.Now().UTC(), docID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update document error %s", docID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "document %s", docID)
	}
	return nil
}

func (s *PostgresStore) UpdateDocumentStatus(ctx context.Context, docID string, status model.DocumentStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), docID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update document status %s", docID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "document %s", docID)
	}
	return nil
}

func (s *PostgresStore) UpdateDocumentStatusByInvestor(ctx context.Context, investorID string, from, to model.DocumentStatus) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET status = $1, updated_at = $2 WHERE investor_id = $3 AND status = $4`,
		string(to), time.Now().UTC(), investorID, string(from),
	)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: bulk document status for %s", investorID)
	}
	return int(tag.RowsAffected()), nil
}

// Runs

func (s *PostgresStore) CreateRun(ctx context.Context, investorID, userID string) (*model.IngestionRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	state := model.StepState{CompletedSteps: []string{}, LastUpdated: now}
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal step state")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO ingestion_runs (id, investor_id, user_id, status, started_at, step_state) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, investorID, userID, string(model.RunStatusRunning), now, stateJSON,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.IngestionRun{
		ID:         id,
		InvestorID: investorID,
		UserID:     userID,
		Status:     model.RunStatusRunning,
		StartedAt:  now,
		StepState:  state,
	}, nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.IngestionRun, error) {
	var r model.IngestionRun
	var stateJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, investor_id, user_id, status, started_at, finished_at, step_state, error FROM ingestion_runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &r.InvestorID, &r.UserID, &r.Status, &r.StartedAt, &r.FinishedAt, &stateJSON, &r.Error)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "run %s", runID)
		}
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}

	if err := json.Unmarshal(stateJSON, &r.StepState); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal step state")
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.IngestionRun, error) {
	query := `SELECT id, investor_id, user_id, status, started_at, finished_at, step_state, error FROM ingestion_runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.InvestorID != "" {
		query += fmt.Sprintf(` AND investor_id = $%d`, argIdx)
		args = append(args, filter.InvestorID)
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.IngestionRun
	for rows.Next() {
		var r model.IngestionRun
		var stateJSON []byte
		if err := rows.Scan(&r.ID, &r.InvestorID, &r.UserID, &r.Status, &r.StartedAt, &r.FinishedAt, &stateJSON, &r.Error); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if err := json.Unmarshal(stateJSON, &r.StepState); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal step state")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) UpdateStepState(ctx context.Context, runID string, state model.StepState) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal step state")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE ingestion_runs SET step_state = $1 WHERE id = $2`,
		stateJSON, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update step state %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return nil
}

func (s *PostgresStore) FinishRun(ctx context.Context, runID string, status model.RunStatus, errMsg string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE ingestion_runs SET status = $1, error = $2, finished_at = $3 WHERE id = $4`,
		string(status), errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: finish run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return nil
}

// Chunks

func (s *PostgresStore) DeleteChunks(ctx context.Context, investorID string) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM evidence_chunks WHERE investor_id = $1`,
		investorID,
	)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: delete chunks for %s", investorID)
	}
	return int(tag.RowsAffected()), nil
}

var chunkCopyColumns = []string{
	"id", "investor_id", "document_id", "section_type", "title",
	"content", "content_hash", "chunk_index", "source_locator", "created_at",
}

func (s *PostgresStore) InsertChunks(ctx context.Context, chunks []model.EvidenceChunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(chunks))
	for _, c := range chunks {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		locJSON, err := json.Marshal(c.SourceLocator)
		if err != nil {
			return 0, eris.Wrap(err, "postgres: marshal source locator")
		}
		rows = append(rows, []any{
			c.ID, c.InvestorID, c.DocumentID, string(c.SectionType), c.Title,
			c.Content, c.ContentHash, c.ChunkIndex, locJSON, now,
		})
	}

	n, err := db.CopyFrom(ctx, s.pool, "evidence_chunks", chunkCopyColumns, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: insert chunks")
	}
	return int(n), nil
}

func (s *PostgresStore) ListChunks(ctx context.Context, investorID string) ([]model.EvidenceChunk, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, investor_id, document_id, section_type, title, content, content_hash, chunk_index, source_locator, embedding, embedding_model, created_at
		 FROM evidence_chunks WHERE investor_id = $1 ORDER BY document_id, chunk_index`,
		investorID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list chunks")
	}
	defer rows.Close()

	var chunks []model.EvidenceChunk
	for rows.Next() {
		var c model.EvidenceChunk
		var locJSON []byte
		var embedding *pgvector.Vector
		if err := rows.Scan(&c.ID, &c.InvestorID, &c.DocumentID, &c.SectionType, &c.Title,
			&c.Content, &c.ContentHash, &c.ChunkIndex, &locJSON, &embedding, &c.EmbeddingModel, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan chunk")
		}
		if len(locJSON) > 0 {
			if err := json.Unmarshal(locJSON, &c.SourceLocator); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal source locator")
			}
		}
		if embedding != nil {
			c.Embedding = embedding.Slice()
		}
		chunks = append(chunks, c)
	}
	return chunks, eris.Wrap(rows.Err(), "postgres: list chunks iterate")
}

func (s *PostgresStore) UpdateChunkEmbedding(ctx context.Context, chunkID string, embedding []float32, embeddingModel string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE evidence_chunks SET embedding = $1, embedding_model = $2 WHERE id = $3`,
		pgvector.NewVector(embedding), embeddingModel, chunkID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update chunk embedding %s", chunkID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "chunk %s", chunkID)
	}
	return nil
}

// Profiles

func (s *PostgresStore) CreateProfile(ctx context.Context, p model.InvestorProfile) (*model.InvestorProfile, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = model.ProfileStatusDraft
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.pool.Exec(ctx,
		`INSERT INTO investor_profiles (id, user_id, name, firm, website, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.UserID, p.Name, p.Firm, p.Website, string(p.Status), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert profile")
	}
	return &p, nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, investorID string) (*model.InvestorProfile, error) {
	var p model.InvestorProfile
	var stagesJSON, geosJSON, focusJSON, excludedJSON, missingJSON []byte
	var thesisVec, sectorsVec *pgvector.Vector

	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, name, firm, website, thesis_summary, check_size_min, check_size_max, stages, geographies, focus_sectors, excluded_sectors, coverage_score, missing_fields, status, thesis_embedding, sectors_embedding, embedding_model, embedding_dim, created_at, updated_at
		 FROM investor_profiles WHERE id = $1`,
		investorID,
	).Scan(&p.ID, &p.UserID, &p.Name, &p.Firm, &p.Website, &p.ThesisSummary,
		&p.CheckSizeMin, &p.CheckSizeMax, &stagesJSON, &geosJSON, &focusJSON, &excludedJSON,
		&p.CoverageScore, &missingJSON, &p.Status, &thesisVec, &sectorsVec,
		&p.EmbeddingModel, &p.EmbeddingDim, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "investor %s", investorID)
		}
		return nil, eris.Wrapf(err, "postgres: get profile %s", investorID)
	}

	for _, pair := range []struct {
		raw []byte
		dst *[]string
	}{
		{stagesJSON, &p.Stages},
		{geosJSON, &p.Geographies},
		{focusJSON, &p.FocusSectors},
		{excludedJSON, &p.ExcludedSectors},
		{missingJSON, &p.MissingFields},
	} {
		if len(pair.raw) > 0 {
			if err := json.Unmarshal(pair.raw, pair.dst); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal profile lists")
			}
		}
	}
	if thesisVec != nil {
		p.ThesisEmbedding = thesisVec.Slice()
	}
	if sectorsVec != nil {
		p.SectorsEmbedding = sectorsVec.Slice()
	}
	return &p, nil
}

func (s *PostgresStore) UpdateProfileFields(ctx context.Context, investorID string, fields model.ProfileFields) error {
	stagesJSON, geosJSON, focusJSON, excludedJSON, err := marshalFieldLists(fields)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal profile fields")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE investor_profiles
		 SET thesis_summary = $1, check_size_min = $2, check_size_max = $3,
		     stages = $4, geographies = $5, focus_sectors = $6, excluded_sectors = $7, updated_at = $8
		 WHERE id = $9`,
		fields.ThesisSummary, fields.CheckSizeMin, fields.CheckSizeMax,
		stagesJSON, geosJSON, focusJSON, excludedJSON, time.Now().UTC(), investorID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update profile fields %s", investorID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "investor %s", investorID)
	}
	return nil
}

func (s *PostgresStore) UpdateProfileEmbeddings(ctx context.Context, investorID string, thesis, sectors []float32, embeddingModel string, dim int) error {
	var thesisVec, sectorsVec any
	if len(thesis) > 0 {
		thesisVec = pgvector.NewVector(thesis)
	}
	if len(sectors) > 0 {
		sectorsVec = pgvector.NewVector(sectors)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE investor_profiles
		 SET thesis_embedding = $1, sectors_embedding = $2, embedding_model = $3, embedding_dim = $4, updated_at = $5
		 WHERE id = $6`,
		thesisVec, sectorsVec, embeddingModel, dim, time.Now().UTC(), investorID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update profile embeddings %s", investorID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "investor %s", investorID)
	}
	return nil
}

func (s *PostgresStore) UpdateCoverage(ctx context.Context, investorID string, score int, missingFields []string, status model.ProfileStatus) error {
	missingJSON, err := json.Marshal(missingFields)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal missing fields")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE investor_profiles SET coverage_score = $1, missing_fields = $2, status = $3, updated_at = $4 WHERE id = $5`,
		score, missingJSON, string(status), time.Now().UTC(), investorID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update coverage %s", investorID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "investor %s", investorID)
	}
	return nil
}

func (s *PostgresStore) UpdateProfileStatus(ctx context.Context, investorID string, status model.ProfileStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE investor_profiles SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), investorID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update profile status %s", investorID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "investor %s", investorID)
	}
	return nil
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanDocument(row scannable) (*model.Document, error) {
	var d model.Document
	var metaJSON []byte

	err := row.Scan(&d.ID, &d.InvestorID, &d.UserID, &d.Type, &d.URL, &d.StorageKey,
		&d.ContentHash, &d.Status, &d.ExtractedText, &metaJSON, &d.Error, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(metaJSON) > 0 {
		d.Meta = &model.DocumentMeta{}
		if err := json.Unmarshal(metaJSON, d.Meta); err != nil {
			return nil, eris.Wrap(err, "unmarshal document meta")
		}
	}
	return &d, nil
}

// marshalNullable marshals v unless it is nil, keeping NULL in the column.
func marshalNullable(v *model.DocumentMeta) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func marshalFieldLists(fields model.ProfileFields) (stages, geos, focus, excluded []byte, err error) {
	if stages, err = json.Marshal(fields.Stages); err != nil {
		return
	}
	if geos, err = json.Marshal(fields.Geographies); err != nil {
		return
	}
	if focus, err = json.Marshal(fields.FocusSectors); err != nil {
		return
	}
	excluded, err = json.Marshal(fields.ExcludedSectors)
	return
}
