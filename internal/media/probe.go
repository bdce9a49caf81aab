package media

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type VideoInfo struct {
	Width      int
	Height     int
	FPS        float64
	Duration   float64
	FrameCount int
}

// Probe inspects a video file with ffprobe and returns its stream properties.
// It is a read-only check and must pass before a job is created.
func Probe(ctx context.Context, inputPath string) (*VideoInfo, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error", "-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate", "-of", "csv=p=0", inputPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidMedia, "ffprobe: %v output: %s", err, strings.TrimSpace(string(output)))
	}

	info, err := parseStreamInfo(string(output))
	if err != nil {
		return nil, errors.Wrap(ErrInvalidMedia, err.Error())
	}

	cmd = exec.CommandContext(ctx, "ffprobe", "-v", "error", "-show_entries",
		"format=duration", "-of", "csv=p=0", inputPath)
	durationOutput, err := cmd.CombinedOutput()
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidMedia, "ffprobe duration: %v", err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(durationOutput)), 64)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidMedia, "invalid duration: %v", err)
	}
	if duration <= 0 {
		return nil, errors.Wrapf(ErrInvalidMedia, "non-positive duration: %f", duration)
	}
	info.Duration = duration

	cmd = exec.CommandContext(ctx, "ffprobe", "-v", "error", "-count_packets", "-select_streams", "v:0",
		"-show_entries", "stream=nb_read_packets", "-of", "csv=p=0", inputPath)
	countOutput, err := cmd.CombinedOutput()
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidMedia, "ffprobe packet count: %v", err)
	}
	frameCount, err := strconv.Atoi(strings.TrimSpace(string(countOutput)))
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidMedia, "invalid packet count: %v", err)
	}
	if frameCount == 0 {
		return nil, errors.Wrap(ErrInvalidMedia, "video has zero readable frames")
	}
	info.FrameCount = frameCount

	return info, nil
}

func parseStreamInfo(raw string) (*VideoInfo, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimRight(trimmed, ",")
	parts := strings.Split(trimmed, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("unexpected ffprobe output: %s", trimmed)
	}

	width, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid width: %v", err)
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid height: %v", err)
	}
	fps, err := parseRate(parts[2])
	if err != nil {
		return nil, err
	}

	return &VideoInfo{Width: width, Height: height, FPS: fps}, nil
}

// parseRate parses ffprobe's rational frame rate, e.g. "30/1" or "30000/1001".
func parseRate(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	num, den, found := strings.Cut(raw, "/")
	if !found {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid frame rate %q: %v", raw, err)
		}
		return rate, nil
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frame rate %q: %v", raw, err)
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, fmt.Errorf("invalid frame rate %q", raw)
	}
	return n / d, nil
}
