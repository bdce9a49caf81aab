package usecase

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/clipscribe/video-annotator/internal/annotations"
	"github.com/clipscribe/video-annotator/internal/config"
	"github.com/clipscribe/video-annotator/internal/models"
	"github.com/clipscribe/video-annotator/pkg/logger"
	"github.com/clipscribe/video-annotator/pkg/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type annotationUC struct {
	cfg     *config.Config
	jobs    annotations.JobStore
	records annotations.Repository
	probe   annotations.Prober
	logger  logger.Logger
}

func NewAnnotationUseCase(
	cfg *config.Config,
	jobs annotations.JobStore,
	records annotations.Repository,
	probe annotations.Prober,
	log logger.Logger,
) annotations.UseCase {
	return &annotationUC{
		cfg:     cfg,
		jobs:    jobs,
		records: records,
		probe:   probe,
		logger:  log,
	}
}

func (u *annotationUC) Submit(ctx context.Context, file io.Reader, input *models.SubmitInput) (*models.Job, error) {
	if err := utils.ValidateStruct(ctx, input); err != nil {
		u.logger.Errorf("Submit - ValidateStruct error: %v", err)
		return nil, fmt.Errorf("invalid input: %v", err)
	}

	jobID := uuid.New().String()
	videoDir := filepath.Join(u.cfg.Media.Dir, "videos")
	if err := os.MkdirAll(videoDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create video directory: %w", err)
	}

	ext := filepath.Ext(input.FileName)
	if ext == "" {
		ext = ".mp4"
	}
	videoPath := filepath.Join(videoDir, jobID+ext)
	if err := saveUpload(file, videoPath); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	// Validation runs synchronously on the submitter's request; a failure
	// removes the stored file and never creates a job.
	info, err := u.probe(ctx, videoPath)
	if err != nil {
		u.logger.Warnf("Submit - validation rejected %s: %v", input.FileName, err)
		if rmErr := os.Remove(videoPath); rmErr != nil {
			u.logger.Errorf("Submit - failed to remove rejected upload %s: %v", videoPath, rmErr)
		}
		return nil, err
	}

	job := &models.Job{
		JobID:       jobID,
		VideoPath:   videoPath,
		FPS:         info.FPS,
		State:       models.JobStatePending,
		FramesTotal: info.FrameCount,
		SubmittedAt: nowUTC(),
	}
	if err = u.jobs.Create(ctx, job); err != nil {
		u.logger.Errorf("Submit - Create error: %v", err)
		return nil, fmt.Errorf("failed to create job: %v", err)
	}
	if err = u.jobs.Enqueue(ctx, jobID); err != nil {
		u.logger.Errorf("Submit - Enqueue error: %v", err)
		return nil, fmt.Errorf("failed to queue the job: %v", err)
	}

	u.logger.Infof("Accepted video %s as job %s (%.1f fps, %d frames)",
		input.FileName, jobID, info.FPS, info.FrameCount)
	return job, nil
}

func (u *annotationUC) GetStatus(ctx context.Context, jobID string) (*models.JobStatus, error) {
	job, err := u.jobs.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, annotations.ErrJobNotFound) {
			return nil, err
		}
		u.logger.Errorf("GetStatus - failed to fetch job %s: %v", jobID, err)
		return nil, fmt.Errorf("failed to fetch job: %v", err)
	}

	status := &models.JobStatus{
		JobID:           job.JobID,
		State:           job.State,
		FramesProcessed: job.FramesProcessed,
		FramesTotal:     job.FramesTotal,
		ProgressPercent: job.ProgressPercent(),
		Error:           job.Error,
	}
	if job.State == models.JobStateSucceeded && job.ResultID != 0 {
		record, err := u.records.GetAnnotationByID(ctx, job.ResultID)
		if err != nil {
			u.logger.Errorf("GetStatus - failed to fetch result %d for job %s: %v", job.ResultID, jobID, err)
			return nil, fmt.Errorf("failed to fetch result: %v", err)
		}
		status.Result = record
	}
	return status, nil
}

func (u *annotationUC) CancelJob(ctx context.Context, jobID string) error {
	job, err := u.jobs.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if job.State.Terminal() {
		return annotations.ErrTerminalState
	}
	if job.State == models.JobStatePending {
		// Not picked up yet; transition directly so the worker skips it.
		if err = u.jobs.MarkCancelled(ctx, jobID); err != nil {
			return err
		}
	}
	return u.jobs.RequestCancel(ctx, jobID)
}

func (u *annotationUC) GetAnnotation(ctx context.Context, id int64) (*models.AnnotationRecord, error) {
	record, err := u.records.GetAnnotationByID(ctx, id)
	if err != nil {
		u.logger.Errorf("GetAnnotation - failed to fetch annotation %d: %v", id, err)
		return nil, fmt.Errorf("failed to fetch annotation: %v", err)
	}
	return record, nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func saveUpload(src io.Reader, dst string) error {
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err = io.Copy(out, src); err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}
