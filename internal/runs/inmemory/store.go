package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dvloznov/finance-insights/internal/runs"
)

// Store keeps detection run state in memory, safe for concurrent use. State
// is lost on restart; callers needing durability supply their own
// runs.Store implementation.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*runs.DetectionJob
}

// NewStore creates an empty in-memory run store.
func NewStore() *Store {
	return &Store{jobs: make(map[string]*runs.DetectionJob)}
}

// SaveJob implements runs.Store.
func (s *Store) SaveJob(ctx context.Context, job *runs.DetectionJob) error {
	if job.JobID == "" {
		return fmt.Errorf("job ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	jobCopy := *job
	s.jobs[job.JobID] = &jobCopy
	return nil
}

// GetJob implements runs.Store.
func (s *Store) GetJob(ctx context.Context, jobID string) (*runs.DetectionJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	jobCopy := *job
	return &jobCopy, nil
}

// ListJobs implements runs.Store. Results are ordered newest first.
func (s *Store) ListJobs(ctx context.Context, filter runs.Filter) ([]*runs.DetectionJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*runs.DetectionJob
	for _, job := range s.jobs {
		if filter.UserID != "" && job.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		jobCopy := *job
		result = append(result, &jobCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}
