package models

import "time"

type JobState string

const (
	JobStatePending   JobState = "pending"
	JobStateRunning   JobState = "running"
	JobStateSucceeded JobState = "succeeded"
	JobStateFailed    JobState = "failed"
	JobStateCancelled JobState = "cancelled"
)

// Terminal reports whether no further state transition is allowed.
func (s JobState) Terminal() bool {
	return s == JobStateSucceeded || s == JobStateFailed || s == JobStateCancelled
}

type Job struct {
	JobID           string    `json:"job_id" db:"job_id" redis:"job_id" validate:"omitempty"`
	VideoPath       string    `json:"video_path" db:"video_path" redis:"video_path" validate:"required"`
	AudioPath       string    `json:"audio_path" db:"audio_path" redis:"audio_path" validate:"omitempty"`
	FPS             float64   `json:"fps" db:"fps" redis:"fps" validate:"omitempty"`
	State           JobState  `json:"state" db:"state" redis:"state" validate:"required"`
	FramesProcessed int       `json:"frames_processed" db:"frames_processed" redis:"frames_processed"`
	FramesTotal     int       `json:"frames_total" db:"frames_total" redis:"frames_total"`
	Error           string    `json:"error,omitempty" db:"error" redis:"error"`
	ResultID        int64     `json:"result_id,omitempty" db:"result_id" redis:"result_id"`
	SubmittedAt     time.Time `json:"submitted_at" db:"submitted_at" redis:"submitted_at"`
	StartedAt       time.Time `json:"started_at,omitempty" db:"started_at" redis:"started_at"`
	CompletedAt     time.Time `json:"completed_at,omitempty" db:"completed_at" redis:"completed_at"`
}

// ProgressPercent is well-defined only once FramesTotal is known; before
// sampling starts it reports 0.
func (j *Job) ProgressPercent() float64 {
	if j.FramesTotal <= 0 {
		return 0
	}
	p := float64(j.FramesProcessed) / float64(j.FramesTotal) * 100
	if p > 100 {
		p = 100
	}
	return p
}

type SubmitInput struct {
	FileName string `json:"filename" validate:"required,lte=255"`
	FileSize int64  `json:"file_size" validate:"required,gt=0"`
}

type JobStatus struct {
	JobID           string            `json:"job_id"`
	State           JobState          `json:"state"`
	FramesProcessed int               `json:"frames_processed"`
	FramesTotal     int               `json:"frames_total"`
	ProgressPercent float64           `json:"progress_percent"`
	Error           string            `json:"error,omitempty"`
	Result          *AnnotationRecord `json:"result,omitempty"`
}
