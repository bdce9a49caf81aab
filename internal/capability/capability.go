package capability

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrTranscriptionService marks an unreachable or crashing transcription
	// backend. Not retried here; retry policy belongs to the provider.
	ErrTranscriptionService = errors.New("transcription service failure")

	// ErrCaptionService marks a captioning backend failure for one frame.
	ErrCaptionService = errors.New("caption service failure")
)

// Transcriber turns an audio file into transcript text. An empty transcript
// for silent or unintelligible audio is a valid result, not an error.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Captioner produces a short natural-language description of one frame image.
// Deterministic for a fixed model configuration.
type Captioner interface {
	Caption(ctx context.Context, image []byte) (string, error)
}
