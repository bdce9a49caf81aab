package models

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Caption is one sampled frame's description, timestamped in seconds from
// the start of the video.
type Caption struct {
	Timestamp float64 `json:"timestamp"`
	Text      string  `json:"text"`
}

func (c Caption) String() string {
	return fmt.Sprintf("Timestamp %.2fs: %s", c.Timestamp, c.Text)
}

// JoinCaptions serializes an ordered caption list into the newline-joined
// form stored in the captions column.
func JoinCaptions(captions []Caption) string {
	lines := make([]string, 0, len(captions))
	for _, c := range captions {
		lines = append(lines, c.String())
	}
	return strings.Join(lines, "\n")
}

type AnnotationRecord struct {
	ID            int64          `json:"id" db:"id"`
	JobID         string         `json:"job_id" db:"job_id"`
	VideoPath     string         `json:"video_path" db:"video_path"`
	AudioPath     string         `json:"audio_path" db:"audio_path"`
	Transcription string         `json:"transcription" db:"transcription"`
	Captions      string         `json:"captions" db:"captions"`
	VideoS3Key    sql.NullString `json:"video_s3_key,omitempty" db:"video_s3_key"`
	AudioS3Key    sql.NullString `json:"audio_s3_key,omitempty" db:"audio_s3_key"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
}
