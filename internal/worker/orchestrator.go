package worker

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/clipscribe/video-annotator/internal/annotations"
	"github.com/clipscribe/video-annotator/internal/capability"
	"github.com/clipscribe/video-annotator/internal/config"
	"github.com/clipscribe/video-annotator/internal/media"
	"github.com/clipscribe/video-annotator/internal/models"
	"github.com/clipscribe/video-annotator/pkg/logger"
	"github.com/pkg/errors"
)

const (
	CaptionPolicyAbort = "abort"
	CaptionPolicySkip  = "skip"
)

// FrameStream is the consumed-once frame sequence the orchestrator drives.
type FrameStream interface {
	Next() (media.Frame, error)
	Decoded() int
	Close() error
}

// AudioExtractor demuxes the audio track of inputPath into audioOut.
type AudioExtractor func(ctx context.Context, inputPath, audioOut string) error

// SamplerFactory opens the frame stream for one job.
type SamplerFactory func(ctx context.Context, inputPath string, interval int, fps float64) (FrameStream, error)

// Orchestrator runs the annotation pipeline for one job at a time and owns
// the job's state machine while it runs. All collaborators are injected; the
// pipeline never reaches for ambient state.
type Orchestrator struct {
	cfg          *config.Config
	jobs         annotations.JobStore
	records      annotations.Repository
	mediaStore   annotations.MediaStore
	transcriber  capability.Transcriber
	captioner    capability.Captioner
	extractAudio AudioExtractor
	openSampler  SamplerFactory
	logger       logger.Logger
}

func NewOrchestrator(
	cfg *config.Config,
	jobs annotations.JobStore,
	records annotations.Repository,
	mediaStore annotations.MediaStore,
	transcriber capability.Transcriber,
	captioner capability.Captioner,
	log logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:          cfg,
		jobs:         jobs,
		records:      records,
		mediaStore:   mediaStore,
		transcriber:  transcriber,
		captioner:    captioner,
		extractAudio: media.ExtractAudio,
		openSampler: func(ctx context.Context, inputPath string, interval int, fps float64) (FrameStream, error) {
			return media.OpenSampler(ctx, inputPath, interval, fps)
		},
		logger: log,
	}
}

// Process drives one claimed job from running to a terminal state. It never
// returns an error for job-level failures; those are recorded on the job.
func (o *Orchestrator) Process(ctx context.Context, jobID string) {
	job, err := o.jobs.Get(ctx, jobID)
	if err != nil {
		o.logger.Errorf("job %s: fetch failed: %v", jobID, err)
		return
	}
	if job.State != models.JobStatePending {
		// Cancelled before pickup, or a stale queue entry.
		o.logger.Warnf("job %s: skipping, state is %s", jobID, job.State)
		return
	}
	if err = o.jobs.MarkRunning(ctx, jobID); err != nil {
		o.logger.Errorf("job %s: mark running failed: %v", jobID, err)
		return
	}
	o.logger.Infof("job %s: started", jobID)

	audioPath, transcript, captions, err := o.run(ctx, job)
	if err != nil {
		o.finish(jobID, err, job.VideoPath, audioPath)
		return
	}

	record, err := o.persist(job, audioPath, transcript, captions)
	if err != nil {
		o.finish(jobID, err, job.VideoPath, audioPath)
		return
	}

	if err = o.jobs.MarkSucceeded(context.Background(), jobID, record.ID); err != nil {
		o.logger.Errorf("job %s: mark succeeded failed: %v", jobID, err)
		return
	}
	o.logger.Infof("job %s: succeeded, annotation %d, %d captions", jobID, record.ID, len(captions))
}

// run executes the extraction, transcription and captioning stages and
// returns the aggregated annotation parts.
func (o *Orchestrator) run(ctx context.Context, job *models.Job) (string, string, []models.Caption, error) {
	audioDir := filepath.Join(o.cfg.Media.Dir, "audio")
	if err := os.MkdirAll(audioDir, 0o755); err != nil {
		return "", "", nil, errors.Wrap(err, "create audio directory")
	}
	audioPath := filepath.Join(audioDir, job.JobID+".wav")

	if err := o.extractAudio(ctx, job.VideoPath, audioPath); err != nil {
		return audioPath, "", nil, err
	}

	transcript, err := o.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return audioPath, "", nil, err
	}

	interval := o.cfg.Worker.SampleInterval
	stream, err := o.openSampler(ctx, job.VideoPath, interval, job.FPS)
	if err != nil {
		return audioPath, "", nil, errors.Wrap(media.ErrInvalidMedia, err.Error())
	}
	defer stream.Close()

	captions := make([]models.Caption, 0)
	total := job.FramesTotal
	for {
		frame, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return audioPath, "", nil, errors.Wrap(media.ErrInvalidMedia, err.Error())
		}

		if frame.Sampled {
			if err := ctx.Err(); err != nil {
				return audioPath, "", nil, err
			}
			cancelled, err := o.jobs.CancelRequested(ctx, job.JobID)
			if err != nil {
				o.logger.Warnf("job %s: cancel check failed: %v", job.JobID, err)
			}
			if cancelled {
				return audioPath, "", nil, context.Canceled
			}

			text, err := o.captioner.Caption(ctx, frame.Data)
			if err != nil {
				if o.cfg.Worker.CaptionPolicy == CaptionPolicySkip {
					o.logger.Warnf("job %s: frame %d caption skipped: %v", job.JobID, frame.Index, err)
				} else {
					return audioPath, "", nil, err
				}
			} else {
				captions = append(captions, models.Caption{Timestamp: frame.Timestamp, Text: text})
			}
		}

		processed := frame.Index + 1
		if total < processed {
			total = processed
		}
		if err := o.jobs.SetProgress(ctx, job.JobID, processed, total); err != nil {
			o.logger.Warnf("job %s: progress update failed: %v", job.JobID, err)
		}
	}

	// The decoded count is authoritative once the stream is exhausted; the
	// probe's packet count may disagree by a frame or two.
	decoded := stream.Decoded()
	if err := o.jobs.SetProgress(ctx, job.JobID, decoded, decoded); err != nil {
		o.logger.Warnf("job %s: final progress update failed: %v", job.JobID, err)
	}

	return audioPath, transcript, captions, nil
}

// persist writes the annotation exactly once. The computed annotation is held
// in memory across attempts so a transient storage failure never forces the
// transcription and captioning work to be redone.
func (o *Orchestrator) persist(job *models.Job, audioPath, transcript string, captions []models.Caption) (*models.AnnotationRecord, error) {
	record := &models.AnnotationRecord{
		JobID:         job.JobID,
		VideoPath:     job.VideoPath,
		AudioPath:     audioPath,
		Transcription: transcript,
		Captions:      models.JoinCaptions(captions),
	}
	o.archive(job, record, audioPath)

	retries := o.cfg.Worker.PersistRetries
	if retries <= 0 {
		retries = 3
	}
	backoff := time.Duration(o.cfg.Worker.PersistBackoff) * time.Second
	if o.cfg.Worker.PersistBackoff == 0 {
		backoff = 2 * time.Second
	}

	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		created, err := o.records.CreateAnnotation(ctx, record)
		cancel()
		if err == nil {
			return created, nil
		}
		lastErr = err
		o.logger.Warnf("job %s: persist attempt %d failed: %v", job.JobID, attempt+1, err)
	}
	return nil, errors.Wrap(errPersistence, lastErr.Error())
}

// archive uploads the job's artifacts to object storage when configured.
// Failures degrade to local-only references.
func (o *Orchestrator) archive(job *models.Job, record *models.AnnotationRecord, audioPath string) {
	if o.mediaStore == nil || !o.cfg.S3.Enabled {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	videoKey := fmt.Sprintf("annotations/%s/video%s", job.JobID, filepath.Ext(job.VideoPath))
	if err := o.mediaStore.UploadFile(ctx, o.cfg.S3.Bucket, videoKey, job.VideoPath); err != nil {
		o.logger.Warnf("job %s: video archive failed: %v", job.JobID, err)
	} else {
		record.VideoS3Key.String = videoKey
		record.VideoS3Key.Valid = true
	}

	audioKey := fmt.Sprintf("annotations/%s/audio.wav", job.JobID)
	if err := o.mediaStore.UploadFile(ctx, o.cfg.S3.Bucket, audioKey, audioPath); err != nil {
		o.logger.Warnf("job %s: audio archive failed: %v", job.JobID, err)
	} else {
		record.AudioS3Key.String = audioKey
		record.AudioS3Key.Valid = true
	}
}

// finish records the terminal non-success state and releases the job's media
// files; failed and cancelled jobs hand nothing to persistence.
func (o *Orchestrator) finish(jobID string, cause error, videoPath, audioPath string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if errors.Is(cause, context.Canceled) {
		if err := o.jobs.MarkCancelled(ctx, jobID); err != nil {
			o.logger.Errorf("job %s: mark cancelled failed: %v", jobID, err)
		}
		o.logger.Infof("job %s: cancelled", jobID)
	} else {
		msg := errKind(cause) + ": " + cause.Error()
		if err := o.jobs.MarkFailed(ctx, jobID, msg); err != nil {
			o.logger.Errorf("job %s: mark failed failed: %v", jobID, err)
		}
		o.logger.Errorf("job %s: failed: %s", jobID, msg)
	}

	removeQuietly(videoPath)
	removeQuietly(audioPath)
}

var errPersistence = errors.New("failed to store annotation record")

func errKind(err error) string {
	switch {
	case errors.Is(err, media.ErrInvalidMedia):
		return "InvalidMediaError"
	case errors.Is(err, media.ErrNoAudioTrack):
		return "MissingAudioTrackError"
	case errors.Is(err, capability.ErrTranscriptionService):
		return "TranscriptionServiceError"
	case errors.Is(err, capability.ErrCaptionService):
		return "CaptionServiceError"
	case errors.Is(err, errPersistence):
		return "PersistenceError"
	default:
		return "InternalError"
	}
}

func removeQuietly(path string) {
	if path == "" {
		return
	}
	_ = os.Remove(path)
}
