package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/vestor-labs/ingest-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Embedding vectors
// are stored as JSON arrays; similarity search stays a Postgres feature.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS investor_profiles (
	id                TEXT PRIMARY KEY,
	user_id           TEXT NOT NULL,
	name              TEXT NOT NULL,
	firm              TEXT NOT NULL DEFAULT '',
	website           TEXT NOT NULL DEFAULT '',
	thesis_summary    TEXT NOT NULL DEFAULT '',
	check_size_min    INTEGER,
	check_size_max    INTEGER,
	stages            TEXT,
	geographies       TEXT,
	focus_sectors     TEXT,
	excluded_sectors  TEXT,
	coverage_score    INTEGER NOT NULL DEFAULT 0,
	missing_fields    TEXT,
	status            TEXT NOT NULL DEFAULT 'draft',
	thesis_embedding  TEXT,
	sectors_embedding TEXT,
	embedding_model   TEXT NOT NULL DEFAULT '',
	embedding_dim     INTEGER NOT NULL DEFAULT 0,
	created_at        DATETIME NOT NULL,
	updated_at        DATETIME NOT NULL
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
	meta           TEXT,
	error          TEXT NOT NULL DEFAULT '',
	created_at     DATETIME NOT NULL,
	updated_at     DATETIME NOT NULL,
	UNIQUE (user_id, content_hash)
);

CREATE TABLE IF NOT EXISTS ingestion_runs (
	id          TEXT PRIMARY KEY,
	investor_id TEXT NOT NULL,
	user_id     TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'running',
	started_at  DATETIME NOT NULL,
	finished_at DATETIME,
	step_state  TEXT NOT NULL,
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
	source_locator  TEXT,
	embedding       TEXT,
	embedding_model TEXT NOT NULL DEFAULT '',
	created_at      DATETIME NOT NULL,
	UNIQUE (investor_id, document_id, content_hash)
);

CREATE INDEX IF NOT EXISTS idx_documents_investor ON documents(investor_id);
CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(investor_id, status);
CREATE INDEX IF NOT EXISTS idx_runs_investor ON ingestion_runs(investor_id, started_at DESC);
CREATE INDEX IF NOT EXISTS idx_chunks_investor ON evidence_chunks(investor_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Documents

func (s *SQLiteStore) CreateDocument(ctx context.Context, doc model.Document) (*model.Document, error) {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.Status == "" {
		doc.Status = model.DocumentStatusQueued
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	metaJSON, err := nullableJSON(doc.Meta)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal document meta")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (id, investor_id, user_id, type, url, storage_key, content_hash, status, extracted_text, meta, error, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.InvestorID, doc.UserID, string(doc.Type), doc.URL, doc.StorageKey,
		doc.ContentHash, string(doc.Status), doc.ExtractedText, metaJSON, doc.Error, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert document")
	}
	return &doc, nil
}

func (s *SQLiteStore) GetDocumentByHash(ctx context.Context, userID, contentHash string) (*model.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, investor_id, user_id, type, url, storage_key, content_hash, status, extracted_text, meta, error, created_at, updated_at
		 FROM documents WHERE user_id = ? AND content_hash = ?`,
		userID, contentHash,
	)
	doc, err := scanSQLiteDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get document by hash")
	}
	return doc, nil
}

func (s *SQLiteStore) ListDocuments(ctx context.Context, investorID string) ([]model.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, investor_id, user_id, type, url, storage_key, content_hash, status, extracted_text, meta, error, created_at, updated_at
		 FROM documents WHERE investor_id = ? ORDER BY created_at ASC`,
		investorID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list documents")
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		doc, err := scanSQLiteDocument(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan document")
		}
		docs = append(docs, *doc)
	}
	return docs, eris.Wrap(rows.Err(), "sqlite: list documents iterate")
}

func (s *SQLiteStore) UpdateDocumentExtraction(ctx context.Context, docID, text string, meta *model.DocumentMeta) error {
	metaJSON, err := nullableJSON(meta)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal document meta")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET extracted_text = ?, meta = ?, status = ?, error = '', updated_at = ? WHERE id = ?`,
		text, metaJSON, string(model.DocumentStatusReady), time.Now().UTC(), docID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update document extraction %s", docID)
	}
	return checkRowsAffected(res, "document", docID)
}

func (s *SQLiteStore) UpdateDocumentError(ctx context.Context, docID, message string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(model.DocumentStatusFailed), message, time.Now().UTC(), docID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update document error %s", docID)
	}
	return checkRowsAffected(res, "document", docID)
}

func (s *SQLiteStore) UpdateDocumentStatus(ctx context.Context, docID string, status model.DocumentStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), docID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update document status %s", docID)
	}
	return checkRowsAffected(res, "document", docID)
}

func (s *SQLiteStore) UpdateDocumentStatusByInvestor(ctx context.Context, investorID string, from, to model.DocumentStatus) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET status = ?, updated_at = ? WHERE investor_id = ? AND status = ?`,
		string(to), time.Now().UTC(), investorID, string(from),
	)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: bulk document status for %s", investorID)
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

// Runs

func (s *SQLiteStore) CreateRun(ctx context.Context, investorID, userID string) (*model.IngestionRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	state := model.StepState{CompletedSteps: []string{}, LastUpdated: now}
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal step state")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO ingestion_runs (id, investor_id, user_id, status, started_at, step_state) VALUES (?, ?, ?, ?, ?, ?)`,
		id, investorID, userID, string(model.RunStatusRunning), now, string(stateJSON),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
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

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.IngestionRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, investor_id, user_id, status, started_at, finished_at, step_state, error FROM ingestion_runs WHERE id = ?`,
		runID,
	)
	r, err := scanSQLiteRun(row)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.IngestionRun, error) {
	query := `SELECT id, investor_id, user_id, status, started_at, finished_at, step_state, error FROM ingestion_runs WHERE 1=1`
	var args []any

	if filter.InvestorID != "" {
		query += ` AND investor_id = ?`
		args = append(args, filter.InvestorID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.IngestionRun
	for rows.Next() {
		r, err := scanSQLiteRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) UpdateStepState(ctx context.Context, runID string, state model.StepState) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal step state")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE ingestion_runs SET step_state = ? WHERE id = ?`,
		string(stateJSON), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update step state %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) FinishRun(ctx context.Context, runID string, status model.RunStatus, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE ingestion_runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		string(status), errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: finish run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

// Chunks

func (s *SQLiteStore) DeleteChunks(ctx context.Context, investorID string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM evidence_chunks WHERE investor_id = ?`,
		investorID,
	)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: delete chunks for %s", investorID)
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

func (s *SQLiteStore) InsertChunks(ctx context.Context, chunks []model.EvidenceChunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin insert chunks")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO evidence_chunks (id, investor_id, document_id, section_type, title, content, content_hash, chunk_index, source_locator, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert chunks")
	}
	defer stmt.Close() //nolint:errcheck

	now := time.Now().UTC()
	for _, c := range chunks {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		locJSON, err := json.Marshal(c.SourceLocator)
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: marshal source locator")
		}
		if _, err := stmt.ExecContext(ctx,
			c.ID, c.InvestorID, c.DocumentID, string(c.SectionType), c.Title,
			c.Content, c.ContentHash, c.ChunkIndex, string(locJSON), now,
		); err != nil {
			return 0, eris.Wrap(err, "sqlite: insert chunk")
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit insert chunks")
	}
	return len(chunks), nil
}

func (s *SQLiteStore) ListChunks(ctx context.Context, investorID string) ([]model.EvidenceChunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, investor_id, document_id, section_type, title, content, content_hash, chunk_index, source_locator, embedding, embedding_model, created_at
		 FROM evidence_chunks WHERE investor_id = ? ORDER BY document_id, chunk_index`,
		investorID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list chunks")
	}
	defer rows.Close()

	var chunks []model.EvidenceChunk
	for rows.Next() {
		var c model.EvidenceChunk
		var locJSON, embeddingJSON sql.NullString
		if err := rows.Scan(&c.ID, &c.InvestorID, &c.DocumentID, &c.SectionType, &c.Title,
			&c.Content, &c.ContentHash, &c.ChunkIndex, &locJSON, &embeddingJSON, &c.EmbeddingModel, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan chunk")
		}
		if locJSON.Valid && locJSON.String != "" {
			if err := json.Unmarshal([]byte(locJSON.String), &c.SourceLocator); err != nil {
				return nil, eris.Wrap(err, "sqlite: unmarshal source locator")
			}
		}
		if embeddingJSON.Valid && embeddingJSON.String != "" {
			if err := json.Unmarshal([]byte(embeddingJSON.String), &c.Embedding); err != nil {
				return nil, eris.Wrap(err, "sqlite: unmarshal embedding")
			}
		}
		chunks = append(chunks, c)
	}
	return chunks, eris.Wrap(rows.Err(), "sqlite: list chunks iterate")
}

func (s *SQLiteStore) UpdateChunkEmbedding(ctx context.Context, chunkID string, embedding []float32, embeddingModel string) error {
	embeddingJSON, err := json.Marshal(embedding)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal embedding")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE evidence_chunks SET embedding = ?, embedding_model = ? WHERE id = ?`,
		string(embeddingJSON), embeddingModel, chunkID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update chunk embedding %s", chunkID)
	}
	return checkRowsAffected(res, "chunk", chunkID)
}

// Profiles

func (s *SQLiteStore) CreateProfile(ctx context.Context, p model.InvestorProfile) (*model.InvestorProfile, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = model.ProfileStatusDraft
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO investor_profiles (id, user_id, name, firm, website, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Name, p.Firm, p.Website, string(p.Status), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert profile")
	}
	return &p, nil
}

func (s *SQLiteStore) GetProfile(ctx context.Context, investorID string) (*model.InvestorProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, firm, website, thesis_summary, check_size_min, check_size_max, stages, geographies, focus_sectors, excluded_sectors, coverage_score, missing_fields, status, thesis_embedding, sectors_embedding, embedding_model, embedding_dim, created_at, updated_at
		 FROM investor_profiles WHERE id = ?`,
		investorID,
	)

	var p model.InvestorProfile
	var checkMin, checkMax sql.NullInt64
	var stagesJSON, geosJSON, focusJSON, excludedJSON, missingJSON sql.NullString
	var thesisJSON, sectorsJSON sql.NullString

	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Firm, &p.Website, &p.ThesisSummary,
		&checkMin, &checkMax, &stagesJSON, &geosJSON, &focusJSON, &excludedJSON,
		&p.CoverageScore, &missingJSON, &p.Status, &thesisJSON, &sectorsJSON,
		&p.EmbeddingModel, &p.EmbeddingDim, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "investor %s", investorID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get profile %s", investorID)
	}

	if checkMin.Valid {
		p.CheckSizeMin = &checkMin.Int64
	}
	if checkMax.Valid {
		p.CheckSizeMax = &checkMax.Int64
	}

	for _, pair := range []struct {
		raw sql.NullString
		dst any
	}{
		{stagesJSON, &p.Stages},
		{geosJSON, &p.Geographies},
		{focusJSON, &p.FocusSectors},
		{excludedJSON, &p.ExcludedSectors},
		{missingJSON, &p.MissingFields},
		{thesisJSON, &p.ThesisEmbedding},
		{sectorsJSON, &p.SectorsEmbedding},
	} {
		if pair.raw.Valid && pair.raw.String != "" {
			if err := json.Unmarshal([]byte(pair.raw.String), pair.dst); err != nil {
				return nil, eris.Wrap(err, "sqlite: unmarshal profile lists")
			}
		}
	}
	return &p, nil
}

func (s *SQLiteStore) UpdateProfileFields(ctx context.Context, investorID string, fields model.ProfileFields) error {
	stagesJSON, geosJSON, focusJSON, excludedJSON, err := marshalFieldLists(fields)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal profile fields")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE investor_profiles
		 SET thesis_summary = ?, check_size_min = ?, check_size_max = ?,
		     stages = ?, geographies = ?, focus_sectors = ?, excluded_sectors = ?, updated_at = ?
		 WHERE id = ?`,
		fields.ThesisSummary, fields.CheckSizeMin, fields.CheckSizeMax,
		string(stagesJSON), string(geosJSON), string(focusJSON), string(excludedJSON),
		time.Now().UTC(), investorID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update profile fields %s", investorID)
	}
	return checkRowsAffected(res, "investor", investorID)
}

func (s *SQLiteStore) UpdateProfileEmbeddings(ctx context.Context, investorID string, thesis, sectors []float32, embeddingModel string, dim int) error {
	thesisJSON, err := json.Marshal(thesis)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal thesis embedding")
	}
	sectorsJSON, err := json.Marshal(sectors)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal sectors embedding")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE investor_profiles
		 SET thesis_embedding = ?, sectors_embedding = ?, embedding_model = ?, embedding_dim = ?, updated_at = ?
		 WHERE id = ?`,
		string(thesisJSON), string(sectorsJSON), embeddingModel, dim, time.Now().UTC(), investorID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update profile embeddings %s", investorID)
	}
	return checkRowsAffected(res, "investor", investorID)
}

func (s *SQLiteStore) UpdateCoverage(ctx context.Context, investorID string, score int, missingFields []string, status model.ProfileStatus) error {
	missingJSON, err := json.Marshal(missingFields)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal missing fields")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE investor_profiles SET coverage_score = ?, missing_fields = ?, status = ?, updated_at = ? WHERE id = ?`,
		score, string(missingJSON), string(status), time.Now().UTC(), investorID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update coverage %s", investorID)
	}
	return checkRowsAffected(res, "investor", investorID)
}

func (s *SQLiteStore) UpdateProfileStatus(ctx context.Context, investorID string, status model.ProfileStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE investor_profiles SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), investorID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update profile status %s", investorID)
	}
	return checkRowsAffected(res, "investor", investorID)
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

func nullableJSON(meta *model.DocumentMeta) (any, error) {
	if meta == nil {
		return nil, nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func scanSQLiteDocument(row scannable) (*model.Document, error) {
	var d model.Document
	var metaJSON sql.NullString

	err := row.Scan(&d.ID, &d.InvestorID, &d.UserID, &d.Type, &d.URL, &d.StorageKey,
		&d.ContentHash, &d.Status, &d.ExtractedText, &metaJSON, &d.Error, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if metaJSON.Valid && metaJSON.String != "" {
		d.Meta = &model.DocumentMeta{}
		if err := json.Unmarshal([]byte(metaJSON.String), d.Meta); err != nil {
			return nil, eris.Wrap(err, "unmarshal document meta")
		}
	}
	return &d, nil
}

func scanSQLiteRun(row scannable) (*model.IngestionRun, error) {
	var r model.IngestionRun
	var finishedAt sql.NullTime
	var stateJSON string

	err := row.Scan(&r.ID, &r.InvestorID, &r.UserID, &r.Status, &r.StartedAt, &finishedAt, &stateJSON, &r.Error)
	if err != nil {
		return nil, err
	}

	if finishedAt.Valid {
		t := finishedAt.Time
		r.FinishedAt = &t
	}
	if err := json.Unmarshal([]byte(stateJSON), &r.StepState); err != nil {
		return nil, eris.Wrap(err, "unmarshal step state")
	}
	return &r, nil
}
