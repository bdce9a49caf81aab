package repository

import (
	"context"
	"sync"
	"time"

	"github.com/clipscribe/video-annotator/internal/annotations"
	"github.com/clipscribe/video-annotator/internal/models"
	"github.com/pkg/errors"
)

// jobMemoryStore is an in-process JobStore with the same transition rules as
// the redis-backed store. It serves single-binary deployments and tests that
// should not depend on a running redis.
type jobMemoryStore struct {
	mu     sync.RWMutex
	jobs   map[string]*models.Job
	cancel map[string]bool
	queue  chan string
}

func NewJobMemoryStore() annotations.JobStore {
	return &jobMemoryStore{
		jobs:   make(map[string]*models.Job),
		cancel: make(map[string]bool),
		queue:  make(chan string, 1024),
	}
}

func (s *jobMemoryStore) Create(ctx context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *job
	s.jobs[job.JobID] = &copied
	return nil
}

func (s *jobMemoryStore) Get(ctx context.Context, jobID string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, annotations.ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

func (s *jobMemoryStore) Enqueue(ctx context.Context, jobID string) error {
	select {
	case s.queue <- jobID:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *jobMemoryStore) Dequeue(ctx context.Context) (string, error) {
	select {
	case jobID := <-s.queue:
		return jobID, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *jobMemoryStore) SetProgress(ctx context.Context, jobID string, processed, total int) error {
	return s.mutate(jobID, func(job *models.Job) error {
		job.FramesProcessed = processed
		job.FramesTotal = total
		return nil
	})
}

func (s *jobMemoryStore) MarkRunning(ctx context.Context, jobID string) error {
	return s.mutate(jobID, func(job *models.Job) error {
		if job.State != models.JobStatePending {
			return errors.Wrapf(annotations.ErrInvalidTransition, "%s -> %s", job.State, models.JobStateRunning)
		}
		job.State = models.JobStateRunning
		job.StartedAt = time.Now().UTC()
		return nil
	})
}

func (s *jobMemoryStore) MarkSucceeded(ctx context.Context, jobID string, resultID int64) error {
	return s.mutate(jobID, func(job *models.Job) error {
		if job.State != models.JobStateRunning {
			return errors.Wrapf(annotations.ErrInvalidTransition, "%s -> %s", job.State, models.JobStateSucceeded)
		}
		job.State = models.JobStateSucceeded
		job.ResultID = resultID
		job.CompletedAt = time.Now().UTC()
		return nil
	})
}

func (s *jobMemoryStore) MarkFailed(ctx context.Context, jobID string, cause string) error {
	return s.mutate(jobID, func(job *models.Job) error {
		if job.State.Terminal() {
			return annotations.ErrTerminalState
		}
		job.State = models.JobStateFailed
		job.Error = cause
		job.CompletedAt = time.Now().UTC()
		return nil
	})
}

func (s *jobMemoryStore) MarkCancelled(ctx context.Context, jobID string) error {
	return s.mutate(jobID, func(job *models.Job) error {
		if job.State.Terminal() {
			return annotations.ErrTerminalState
		}
		job.State = models.JobStateCancelled
		job.CompletedAt = time.Now().UTC()
		return nil
	})
}

func (s *jobMemoryStore) RequestCancel(ctx context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[jobID]; !ok {
		return annotations.ErrJobNotFound
	}
	s.cancel[jobID] = true
	return nil
}

func (s *jobMemoryStore) CancelRequested(ctx context.Context, jobID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cancel[jobID], nil
}

func (s *jobMemoryStore) mutate(jobID string, fn func(*models.Job) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return annotations.ErrJobNotFound
	}
	return fn(job)
}
