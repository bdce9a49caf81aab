package annotations

import (
	"context"

	"github.com/clipscribe/video-annotator/internal/models"
)

// JobStore is the single shared view of job state. The submission path
// creates and enqueues; exactly one worker owns a job's mutable state once it
// dequeues it; status queries only read. Progress reads need last-write
// visibility only.
type JobStore interface {
	Create(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, jobID string) (*models.Job, error)

	Enqueue(ctx context.Context, jobID string) error
	// Dequeue blocks until a job id is available or ctx is done.
	Dequeue(ctx context.Context) (string, error)

	MarkRunning(ctx context.Context, jobID string) error
	SetProgress(ctx context.Context, jobID string, processed, total int) error
	MarkSucceeded(ctx context.Context, jobID string, resultID int64) error
	MarkFailed(ctx context.Context, jobID string, cause string) error
	MarkCancelled(ctx context.Context, jobID string) error

	RequestCancel(ctx context.Context, jobID string) error
	CancelRequested(ctx context.Context, jobID string) (bool, error)
}
