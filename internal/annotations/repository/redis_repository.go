package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/clipscribe/video-annotator/internal/annotations"
	"github.com/clipscribe/video-annotator/internal/config"
	"github.com/clipscribe/video-annotator/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

const (
	jobDataField         = "job_data"
	framesProcessedField = "frames_processed"
	framesTotalField     = "frames_total"
	cancelRequestedField = "cancel_requested"
)

// jobRedisStore keeps each job in a hash keyed by job id and the pending
// queue in a list. The full job document lives in one JSON field; the
// per-frame progress counters are separate hash fields so the hot path is a
// single HSET without a read-modify-write cycle.
type jobRedisStore struct {
	redisClient *redis.Client
	queueKey    string
	keyPrefix   string
}

func NewJobRedisStore(redisClient *redis.Client, cfg *config.Config) annotations.JobStore {
	queueKey := cfg.Redis.JobQueueKey
	if queueKey == "" {
		queueKey = "annotation_jobs"
	}
	keyPrefix := cfg.Redis.JobKeyPrefix
	if keyPrefix == "" {
		keyPrefix = "annotation:job:"
	}
	return &jobRedisStore{
		redisClient: redisClient,
		queueKey:    queueKey,
		keyPrefix:   keyPrefix,
	}
}

func (s *jobRedisStore) jobKey(jobID string) string {
	return s.keyPrefix + jobID
}

func (s *jobRedisStore) Create(ctx context.Context, job *models.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	pipe := s.redisClient.Pipeline()
	pipe.HSet(ctx, s.jobKey(job.JobID), jobDataField, string(data))
	pipe.HSet(ctx, s.jobKey(job.JobID), framesProcessedField, job.FramesProcessed)
	pipe.HSet(ctx, s.jobKey(job.JobID), framesTotalField, job.FramesTotal)
	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store job: %w", err)
	}
	return nil
}

func (s *jobRedisStore) Get(ctx context.Context, jobID string) (*models.Job, error) {
	fields, err := s.redisClient.HGetAll(ctx, s.jobKey(jobID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	data, ok := fields[jobDataField]
	if !ok {
		return nil, annotations.ErrJobNotFound
	}
	job := &models.Job{}
	if err = json.Unmarshal([]byte(data), job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	// The counters are written out of band on the hot path; overlay them so
	// pollers see the latest decode position.
	if raw, ok := fields[framesProcessedField]; ok {
		if n, err := strconv.Atoi(raw); err == nil && n > job.FramesProcessed {
			job.FramesProcessed = n
		}
	}
	if raw, ok := fields[framesTotalField]; ok {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			job.FramesTotal = n
		}
	}
	return job, nil
}

func (s *jobRedisStore) Enqueue(ctx context.Context, jobID string) error {
	if err := s.redisClient.LPush(ctx, s.queueKey, jobID).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

func (s *jobRedisStore) Dequeue(ctx context.Context) (string, error) {
	res, err := s.redisClient.BRPop(ctx, 0*time.Second, s.queueKey).Result()
	if err != nil {
		return "", err
	}
	return res[1], nil
}

func (s *jobRedisStore) SetProgress(ctx context.Context, jobID string, processed, total int) error {
	pipe := s.redisClient.Pipeline()
	pipe.HSet(ctx, s.jobKey(jobID), framesProcessedField, processed)
	pipe.HSet(ctx, s.jobKey(jobID), framesTotalField, total)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	return nil
}

func (s *jobRedisStore) MarkRunning(ctx context.Context, jobID string) error {
	return s.transition(ctx, jobID, func(job *models.Job) error {
		if job.State != models.JobStatePending {
			return errors.Wrapf(annotations.ErrInvalidTransition, "%s -> %s", job.State, models.JobStateRunning)
		}
		job.State = models.JobStateRunning
		job.StartedAt = time.Now().UTC()
		return nil
	})
}

func (s *jobRedisStore) MarkSucceeded(ctx context.Context, jobID string, resultID int64) error {
	return s.transition(ctx, jobID, func(job *models.Job) error {
		if job.State != models.JobStateRunning {
			return errors.Wrapf(annotations.ErrInvalidTransition, "%s -> %s", job.State, models.JobStateSucceeded)
		}
		job.State = models.JobStateSucceeded
		job.ResultID = resultID
		job.CompletedAt = time.Now().UTC()
		return nil
	})
}

func (s *jobRedisStore) MarkFailed(ctx context.Context, jobID string, cause string) error {
	return s.transition(ctx, jobID, func(job *models.Job) error {
		if job.State.Terminal() {
			return annotations.ErrTerminalState
		}
		job.State = models.JobStateFailed
		job.Error = cause
		job.CompletedAt = time.Now().UTC()
		return nil
	})
}

func (s *jobRedisStore) MarkCancelled(ctx context.Context, jobID string) error {
	return s.transition(ctx, jobID, func(job *models.Job) error {
		if job.State.Terminal() {
			return annotations.ErrTerminalState
		}
		job.State = models.JobStateCancelled
		job.CompletedAt = time.Now().UTC()
		return nil
	})
}

func (s *jobRedisStore) RequestCancel(ctx context.Context, jobID string) error {
	exists, err := s.redisClient.Exists(ctx, s.jobKey(jobID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check job: %w", err)
	}
	if exists == 0 {
		return annotations.ErrJobNotFound
	}
	if err = s.redisClient.HSet(ctx, s.jobKey(jobID), cancelRequestedField, 1).Err(); err != nil {
		return fmt.Errorf("failed to request cancel: %w", err)
	}
	return nil
}

func (s *jobRedisStore) CancelRequested(ctx context.Context, jobID string) (bool, error) {
	raw, err := s.redisClient.HGet(ctx, s.jobKey(jobID), cancelRequestedField).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cancel flag: %w", err)
	}
	return raw == "1", nil
}

// transition applies mutate under the one-worker-per-job ownership rule; the
// progress counter fields are synced into the document so terminal snapshots
// are frozen and self-contained.
func (s *jobRedisStore) transition(ctx context.Context, jobID string, mutate func(*models.Job) error) error {
	job, err := s.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if err = mutate(job); err != nil {
		return err
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	pipe := s.redisClient.Pipeline()
	pipe.HSet(ctx, s.jobKey(jobID), jobDataField, string(data))
	pipe.HSet(ctx, s.jobKey(jobID), framesProcessedField, job.FramesProcessed)
	pipe.HSet(ctx, s.jobKey(jobID), framesTotalField, job.FramesTotal)
	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	return nil
}
