package media

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/pkg/errors"
)

// Frame is one decoded video frame. Data carries the JPEG payload only for
// sampled frames (Index % interval == 0); intermediate frames are decoded
// to keep the index and timestamp correspondence but their bytes are dropped.
type Frame struct {
	Index     int
	Timestamp float64
	Sampled   bool
	Data      []byte
}

// Sampler iterates a video's frames strictly in order starting at index 0.
// The sequence is lazy, finite and non-restartable; it is consumed exactly
// once per job. Reaching the end of the stream is reported as io.EOF and is
// not an error.
type Sampler struct {
	r        *bufio.Reader
	interval int
	fps      float64
	index    int
	done     bool
	cancel   context.CancelFunc
	wait     func() error
	stderr   *bytes.Buffer
}

// NewSampler wraps a raw stream of concatenated JPEG images. Used directly
// in tests; production code goes through OpenSampler.
func NewSampler(r io.Reader, interval int, fps float64) *Sampler {
	return &Sampler{
		r:        bufio.NewReaderSize(r, 1<<20),
		interval: interval,
		fps:      fps,
	}
}

// OpenSampler starts an ffmpeg process decoding every frame of the video to
// an MJPEG pipe and returns a Sampler over it. Close must be called on every
// exit path to reap the process.
func OpenSampler(ctx context.Context, inputPath string, interval int, fps float64) (*Sampler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("invalid sampling interval: %d", interval)
	}
	if fps <= 0 {
		return nil, fmt.Errorf("invalid fps: %f", fps)
	}

	cmdCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(cmdCtx, "ffmpeg",
		"-i", inputPath,
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"-q:v", "2",
		"-",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, errors.Wrap(err, "ffmpeg stdout pipe")
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, errors.Wrapf(err, "ffmpeg start: %s", stderr.String())
	}

	s := NewSampler(stdout, interval, fps)
	s.cancel = cancel
	s.wait = cmd.Wait
	s.stderr = &stderr
	return s, nil
}

// Next returns the next decoded frame. It yields every frame so the caller
// can track true decode position; only sampled frames carry image bytes.
// io.EOF signals normal end of stream.
func (s *Sampler) Next() (Frame, error) {
	if s.done {
		return Frame{}, io.EOF
	}

	sampled := s.index%s.interval == 0
	var buf *bytes.Buffer
	if sampled {
		buf = &bytes.Buffer{}
	}
	if err := readJPEG(s.r, buf); err != nil {
		if err == io.EOF {
			s.done = true
			return Frame{}, io.EOF
		}
		return Frame{}, err
	}

	frame := Frame{
		Index:     s.index,
		Timestamp: float64(s.index) / s.fps,
		Sampled:   sampled,
	}
	if sampled {
		frame.Data = buf.Bytes()
	}
	s.index++
	return frame, nil
}

// Decoded reports how many frames have been consumed so far.
func (s *Sampler) Decoded() int {
	return s.index
}

// Close reaps the underlying decoder process, if any. Safe to call after EOF.
func (s *Sampler) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.wait != nil {
		// Exit status is irrelevant once the stream has been fully read;
		// a cancelled decode also lands here.
		_ = s.wait()
		s.wait = nil
	}
	return nil
}

// readJPEG consumes one JPEG image from r, writing it to out when out is
// non-nil. The MJPEG stream is framed by the JPEG start (FFD8) and end (FFD9)
// markers. io.EOF before any image byte means the stream is exhausted.
func readJPEG(r *bufio.Reader, out *bytes.Buffer) error {
	// Seek the start-of-image marker.
	for {
		b, err := r.ReadByte()
		if err != nil {
			return io.EOF
		}
		if b != 0xFF {
			continue
		}
		next, err := r.ReadByte()
		if err != nil {
			return io.EOF
		}
		if next == 0xD8 {
			if out != nil {
				out.WriteByte(0xFF)
				out.WriteByte(0xD8)
			}
			break
		}
	}

	// Copy until the end-of-image marker.
	for {
		b, err := r.ReadByte()
		if err != nil {
			return errors.Wrap(io.ErrUnexpectedEOF, "truncated frame")
		}
		if out != nil {
			out.WriteByte(b)
		}
		if b != 0xFF {
			continue
		}
		next, err := r.ReadByte()
		if err != nil {
			return errors.Wrap(io.ErrUnexpectedEOF, "truncated frame")
		}
		if out != nil {
			out.WriteByte(next)
		}
		if next == 0xD9 {
			return nil
		}
	}
}
