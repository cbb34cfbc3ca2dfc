package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vestor-labs/ingest-cli/internal/ingest"
	"github.com/vestor-labs/ingest-cli/internal/model"
	"github.com/vestor-labs/ingest-cli/internal/store"
)

func newServeTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func postIngest(t *testing.T, mux *http.ServeMux, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook/ingest", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestServeMux_Health(t *testing.T) {
	mux := newServeMux(newServeTestStore(t), ingest.NewQueue(1))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServeMux_IngestAccepted(t *testing.T) {
	s := newServeTestStore(t)
	p, err := s.CreateProfile(context.Background(), model.InvestorProfile{
		UserID: "user-1", Name: "Jordan Li",
	})
	require.NoError(t, err)

	q := ingest.NewQueue(4)
	mux := newServeMux(s, q)

	rec := postIngest(t, mux, `{"investor_id":"`+p.ID+`"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "accepted", resp["status"])
	assert.NotEmpty(t, resp["run_id"])
	assert.Equal(t, 1, q.Len())

	run, err := s.GetRun(context.Background(), resp["run_id"])
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusRunning, run.Status)
}

func TestServeMux_IngestValidation(t *testing.T) {
	mux := newServeMux(newServeTestStore(t), ingest.NewQueue(1))

	rec := postIngest(t, mux, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postIngest(t, mux, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postIngest(t, mux, `{"investor_id":"ghost"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeMux_IngestConflictWhileProcessing(t *testing.T) {
	s := newServeTestStore(t)
	p, err := s.CreateProfile(context.Background(), model.InvestorProfile{
		UserID: "user-1", Name: "Jordan Li",
	})
	require.NoError(t, err)
	require.NoError(t, s.UpdateProfileStatus(context.Background(), p.ID, model.ProfileStatusProcessing))

	mux := newServeMux(s, ingest.NewQueue(1))

	rec := postIngest(t, mux, `{"investor_id":"`+p.ID+`"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServeMux_IngestQueueFull(t *testing.T) {
	s := newServeTestStore(t)
	p, err := s.CreateProfile(context.Background(), model.InvestorProfile{
		UserID: "user-1", Name: "Jordan Li",
	})
	require.NoError(t, err)

	q := ingest.NewQueue(1)
	require.NoError(t, q.Enqueue(ingest.RunContext{RunID: "occupied"}))

	mux := newServeMux(s, q)

	rec := postIngest(t, mux, `{"investor_id":"`+p.ID+`"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
