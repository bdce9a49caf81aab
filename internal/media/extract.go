package media

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// ExtractAudio demuxes the audio track of a validated video into a mono
// 16 kHz wav file at audioOut. The output path must be job-unique; the
// extractor never reuses filenames across jobs.
func ExtractAudio(ctx context.Context, inputPath, audioOut string) error {
	if err := hasAudioStream(ctx, inputPath); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-i", inputPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		audioOut,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return errors.Errorf("ffmpeg audio extraction failed: %v, stderr: %s", err, stderr.String())
	}
	return nil
}

func hasAudioStream(ctx context.Context, inputPath string) error {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error", "-select_streams", "a:0",
		"-show_entries", "stream=index", "-of", "csv=p=0", inputPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Errorf("ffprobe audio stream check failed: %v", err)
	}
	if strings.TrimSpace(string(output)) == "" {
		return ErrNoAudioTrack
	}
	return nil
}
