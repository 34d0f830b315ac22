// Package worker drains the ingestion queue: each job is normalised into a
// student and written to the repository.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/pkg/logger"
	"github.com/okian/pulse/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Store receives normalised students.
type Store interface {
	Upsert(ctx context.Context, s model.Student) error
}

// Normalizer turns a raw row into a student.
type Normalizer interface {
	Normalize(ctx context.Context, row model.RawRow, index int) (model.Student, error)
}

// Source is where workers read jobs from. The channel is closed on shutdown.
type Source interface {
	Jobs() <-chan model.Ingest
}

// Worker processes ingestion jobs until its source closes or ctx ends.
type Worker struct {
	name       string
	source     Source
	normalizer Normalizer
	store      Store
	logger     logger.Logger
}

// New creates a worker.
func New(source Source, normalizer Normalizer, store Store, opts ...Option) *Worker {
	w := &Worker{
		name:       "worker",
		source:     source,
		normalizer: normalizer,
		store:      store,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run blocks until the source is drained or ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	jobs := w.source.Jobs()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "ingest failed",
					logger.String("row_id", job.RowID),
					logger.Error(err),
				)
			}
		}
	}
}

func (w *Worker) process(ctx context.Context, job model.Ingest) error { //nolint:gocritic // hugeParam: jobs travel by value
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	student, err := w.normalizer.Normalize(ctx, job.Row, job.Index)
	if err != nil {
		metrics.RecordRowRejected()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "normalize_error")
		return fmt.Errorf("normalize row %s: %w", job.RowID, err)
	}

	if err := w.store.Upsert(ctx, student); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		metrics.RecordErrorByType("store_error", "high")
		return fmt.Errorf("store student %d: %w", student.ID, err)
	}
	return nil
}

// Pool runs a fixed number of workers over one source.
type Pool struct {
	workers []*Worker
	source  Source
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	logger  logger.Logger
}

// NewPool creates workerCount workers. A count below 1 uses twice the CPU count.
func NewPool(workerCount int, source Source, normalizer Normalizer, store Store) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}
	p := &Pool{
		workers: make([]*Worker, workerCount),
		source:  source,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = New(source, normalizer, store, WithName("worker-"+strconv.Itoa(i)))
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Shutdown closes the source when it can be closed, lets workers drain
// what is queued and waits for them. Workers still running when ctx (or
// the pool timeout) expires are cancelled.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.source.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	ctx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	defer func() {
		if p.cancel != nil {
			p.cancel()
		}
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		p.logger.Warn(ctx, "worker pool shutdown timed out")
		return fmt.Errorf("worker pool shutdown: %w", ctx.Err())
	}
}
