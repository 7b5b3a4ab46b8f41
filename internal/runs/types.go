// Package runs provides an asynchronous batch surface over the detection
// engine: callers queue per-user detection runs and poll their status. The
// core detection call stays synchronous and pure; this layer only schedules
// it.
package runs

import (
	"context"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// Status represents the current state of a detection run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRetrying  Status = "retrying"
)

// DetectionJob is one queued detection run: a user's transaction window in,
// patterns and a summary out.
type DetectionJob struct {
	// JobID is the unique identifier for this run.
	JobID string `json:"job_id"`

	// UserID identifies whose transactions are being analyzed.
	UserID string `json:"user_id"`

	// Transactions is the input window, owned by the caller.
	Transactions []domain.Transaction `json:"transactions"`

	// Status is the current run status.
	Status Status `json:"status"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error holds failure details for failed runs.
	Error string `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`

	// Results, populated when the run completes.
	Patterns []domain.RecurringPattern `json:"patterns,omitempty"`
	Summary  *domain.Summary           `json:"summary,omitempty"`
}

// Publisher queues detection runs. Abstracting the queue keeps the door
// open for an external broker behind the same surface.
type Publisher interface {
	PublishDetection(ctx context.Context, job *DetectionJob) error
	Close() error
}

// Consumer drains queued runs.
type Consumer interface {
	// Start begins consuming runs; handler is invoked per job.
	Start(ctx context.Context, handler Handler) error
	// Stop stops consuming and waits for in-flight runs to finish.
	Stop(ctx context.Context) error
}

// Handler executes one detection run. A returned error marks the run for
// retry until MaxRetries is exhausted.
type Handler func(ctx context.Context, job *DetectionJob) error

// Store tracks run state so callers can poll results.
type Store interface {
	SaveJob(ctx context.Context, job *DetectionJob) error
	GetJob(ctx context.Context, jobID string) (*DetectionJob, error)
	ListJobs(ctx context.Context, filter Filter) ([]*DetectionJob, error)
}

// Filter narrows ListJobs results.
type Filter struct {
	UserID string
	Status Status
	Limit  int
}
