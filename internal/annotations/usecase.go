package annotations

import (
	"context"
	"io"

	"github.com/clipscribe/video-annotator/internal/media"
	"github.com/clipscribe/video-annotator/internal/models"
)

// Prober validates a stored upload synchronously before a job is created.
type Prober func(ctx context.Context, path string) (*media.VideoInfo, error)

type UseCase interface {
	// Submit stores the upload under a job-unique name, validates it
	// synchronously and enqueues a pending job. A validation failure removes
	// the stored file and creates no job.
	Submit(ctx context.Context, file io.Reader, input *models.SubmitInput) (*models.Job, error)

	// GetStatus returns a snapshot of the job's state; repeated calls on a
	// terminal job return identical results.
	GetStatus(ctx context.Context, jobID string) (*models.JobStatus, error)

	CancelJob(ctx context.Context, jobID string) error

	GetAnnotation(ctx context.Context, id int64) (*models.AnnotationRecord, error)
}
