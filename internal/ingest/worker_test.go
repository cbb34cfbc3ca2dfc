package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vestor-labs/ingest-cli/internal/model"
)

func TestQueue_EnqueueAndLen(t *testing.T) {
	q := NewQueue(2)

	require.NoError(t, q.Enqueue(RunContext{RunID: "r1"}))
	require.NoError(t, q.Enqueue(RunContext{RunID: "r2"}))
	assert.Equal(t, 2, q.Len())

	err := q.Enqueue(RunContext{RunID: "r3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue full")
}

func TestQueue_Closed(t *testing.T) {
	q := NewQueue(1)
	q.Close()
	q.Close() // idempotent

	err := q.Enqueue(RunContext{RunID: "r1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue closed")
}

func TestWorker_ProcessesQueuedRun(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := seedInvestor(t, s)
	seedDocument(t, s, model.Document{
		InvestorID: p.ID, UserID: p.UserID,
		Type: model.DocumentTypePasted, ContentHash: "h1",
		ExtractedText: "We invest in seed-stage fintech companies in Europe. Check size: $250K - $1M.",
	})

	run, err := s.CreateRun(ctx, p.ID, p.UserID)
	require.NoError(t, err)

	q := NewQueue(4)
	w := NewWorker(newTestOrchestrator(s, &mockURLSource{}, &mockPDFExtractor{}), q)

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()

	require.NoError(t, q.Enqueue(RunContext{RunID: run.ID, InvestorID: p.ID, UserID: p.UserID}))
	q.Close()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("worker did not drain the queue")
	}

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusSucceeded, got.Status)
}

func TestWorker_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := NewQueue(1)
	w := NewWorker(newTestOrchestrator(newTestStore(t), &mockURLSource{}, &mockPDFExtractor{}), q)

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}
