package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/finance-insights/internal/runs"
)

// defaultMaxRetries applies when a published job does not set its own.
const defaultMaxRetries = 3

// Queue is a channel-backed publisher/consumer for detection runs, safe for
// concurrent use. It suits single-instance deployments and tests; a broker
// can replace it behind the same interfaces.
type Queue struct {
	jobChan   chan *runs.DetectionJob
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	store     runs.Store
	workers   int
	closed    bool
}

// NewQueue creates an in-memory run queue. bufferSize bounds how many runs
// can wait before PublishDetection blocks; workers is the consumer fan-out.
func NewQueue(bufferSize, workers int, store runs.Store) *Queue {
	if workers <= 0 {
		workers = 2
	}
	return &Queue{
		jobChan:   make(chan *runs.DetectionJob, bufferSize),
		closeChan: make(chan struct{}),
		store:     store,
		workers:   workers,
	}
}

// PublishDetection implements runs.Publisher.
func (q *Queue) PublishDetection(ctx context.Context, job *runs.DetectionJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("queue is closed")
	}

	if job.JobID == "" {
		job.JobID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = runs.StatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = defaultMaxRetries
	}

	if q.store != nil {
		if err := q.store.SaveJob(ctx, job); err != nil {
			return fmt.Errorf("failed to save job: %w", err)
		}
	}

	select {
	case q.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return fmt.Errorf("queue is closed")
	}
}

// Start implements runs.Consumer. Jobs are handled concurrently by the
// configured number of workers.
func (q *Queue) Start(ctx context.Context, handler runs.Handler) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return fmt.Errorf("queue is closed")
	}
	q.mu.RUnlock()

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}
	return nil
}

func (q *Queue) worker(ctx context.Context, handler runs.Handler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			if job == nil {
				return
			}
			q.processJob(ctx, job, handler)
		}
	}
}

// processJob executes one run with retry bookkeeping.
func (q *Queue) processJob(ctx context.Context, job *runs.DetectionJob, handler runs.Handler) {
	job.Status = runs.StatusRunning
	now := time.Now()
	job.StartedAt = &now

	if q.store != nil {
		_ = q.store.SaveJob(ctx, job)
	}

	err := handler(ctx, job)

	completedAt := time.Now()
	job.CompletedAt = &completedAt

	if err != nil {
		job.Error = err.Error()

		if job.RetryCount < job.MaxRetries {
			job.RetryCount++
			job.Status = runs.StatusRetrying

			backoff := time.Duration(job.RetryCount) * time.Second
			time.AfterFunc(backoff, func() {
				job.Status = runs.StatusPending
				job.StartedAt = nil
				job.CompletedAt = nil
				_ = q.PublishDetection(ctx, job)
			})
		} else {
			job.Status = runs.StatusFailed
		}
	} else {
		job.Status = runs.StatusCompleted
		job.Error = ""
	}

	if q.store != nil {
		_ = q.store.SaveJob(ctx, job)
	}
}

// Stop implements runs.Consumer. It waits for in-flight runs to finish or
// the context to expire.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements runs.Publisher.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}
