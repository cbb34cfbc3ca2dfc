package ingest

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Queue hands run jobs from the HTTP surface to background workers over a
// bounded channel. Enqueue never blocks: when the buffer is full the caller
// gets an error and the client should retry later.
type Queue struct {
	jobs chan RunContext

	mu     sync.Mutex
	closed bool
}

// NewQueue creates a queue with the given buffer size.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 64
	}
	return &Queue{jobs: make(chan RunContext, size)}
}

// Enqueue adds a job without blocking.
func (q *Queue) Enqueue(rc RunContext) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return eris.New("ingest: queue closed")
	}
	select {
	case q.jobs <- rc:
		return nil
	default:
		return eris.New("ingest: queue full")
	}
}

// Close stops accepting jobs. Workers drain what remains and exit.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
}

// Len reports the number of queued jobs.
func (q *Queue) Len() int {
	return len(q.jobs)
}

// Worker consumes run jobs and executes them one at a time. Run errors are
// already recorded on the run row by the orchestrator, so the worker only
// logs them.
type Worker struct {
	orchestrator *Orchestrator
	queue        *Queue
}

// NewWorker creates a worker bound to a queue.
func NewWorker(o *Orchestrator, q *Queue) *Worker {
	return &Worker{orchestrator: o, queue: q}
}

// Run processes jobs until the queue closes or the context is canceled.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case rc, ok := <-w.queue.jobs:
			if !ok {
				return
			}
			if err := w.orchestrator.Execute(ctx, rc); err != nil {
				zap.L().Error("ingest: queued run failed",
					zap.String("run_id", rc.RunID),
					zap.Error(err),
				)
			}
		}
	}
}
