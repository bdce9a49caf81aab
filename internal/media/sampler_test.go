package media

import (
	"bytes"
	"io"
	"testing"
)

// fakeJPEG builds a minimal marker-framed image whose payload avoids 0xFF so
// the scanner's marker detection is unambiguous.
func fakeJPEG(seed byte) []byte {
	payload := bytes.Repeat([]byte{seed % 0xF0}, 16)
	img := []byte{0xFF, 0xD8}
	img = append(img, payload...)
	return append(img, 0xFF, 0xD9)
}

func mjpegStream(frames int) []byte {
	var buf bytes.Buffer
	for i := 0; i < frames; i++ {
		buf.Write(fakeJPEG(byte(i)))
	}
	return buf.Bytes()
}

func TestSamplerVisitsEveryFrame(t *testing.T) {
	const total = 90
	const interval = 30
	s := NewSampler(bytes.NewReader(mjpegStream(total)), interval, 30)

	var sampled []Frame
	decoded := 0
	for {
		frame, err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if frame.Index != decoded {
			t.Fatalf("frame index = %d, want %d", frame.Index, decoded)
		}
		decoded++
		if frame.Sampled {
			if frame.Data == nil {
				t.Fatalf("sampled frame %d has no data", frame.Index)
			}
			sampled = append(sampled, frame)
		} else if frame.Data != nil {
			t.Fatalf("unsampled frame %d carries data", frame.Index)
		}
	}

	if decoded != total {
		t.Fatalf("decoded %d frames, want %d", decoded, total)
	}
	if s.Decoded() != total {
		t.Fatalf("Decoded() = %d, want %d", s.Decoded(), total)
	}
	// ceil(90/30) sampled frames at indices 0, 30, 60.
	if len(sampled) != 3 {
		t.Fatalf("sampled %d frames, want 3", len(sampled))
	}
	wantTimestamps := []float64{0.0, 1.0, 2.0}
	for i, frame := range sampled {
		if frame.Index != i*30 {
			t.Fatalf("sampled frame %d index = %d, want %d", i, frame.Index, i*30)
		}
		if frame.Timestamp != wantTimestamps[i] {
			t.Fatalf("sampled frame %d timestamp = %f, want %f", i, frame.Timestamp, wantTimestamps[i])
		}
	}
}

func TestSamplerCeilOfPartialInterval(t *testing.T) {
	// 91 frames at interval 30 sample indices 0, 30, 60, 90: ceil(91/30) = 4.
	s := NewSampler(bytes.NewReader(mjpegStream(91)), 30, 30)
	sampled := 0
	for {
		frame, err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if frame.Sampled {
			sampled++
		}
	}
	if sampled != 4 {
		t.Fatalf("sampled %d frames, want 4", sampled)
	}
}

func TestSamplerTimestampsStrictlyIncreasing(t *testing.T) {
	s := NewSampler(bytes.NewReader(mjpegStream(120)), 30, 29.97)
	last := -1.0
	for {
		frame, err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if !frame.Sampled {
			continue
		}
		if frame.Timestamp <= last {
			t.Fatalf("timestamp %f not greater than previous %f", frame.Timestamp, last)
		}
		last = frame.Timestamp
	}
}

func TestSamplerEmptyStream(t *testing.T) {
	s := NewSampler(bytes.NewReader(nil), 30, 30)
	if _, err := s.Next(); err != io.EOF {
		t.Fatalf("expected EOF on empty stream, got %v", err)
	}
	// EOF is sticky.
	if _, err := s.Next(); err != io.EOF {
		t.Fatalf("expected EOF on repeated read, got %v", err)
	}
}

func TestSamplerTruncatedFrame(t *testing.T) {
	stream := mjpegStream(2)
	truncated := stream[:len(stream)-3]
	s := NewSampler(bytes.NewReader(truncated), 1, 30)

	if _, err := s.Next(); err != nil {
		t.Fatalf("first frame: %v", err)
	}
	if _, err := s.Next(); err == nil || err == io.EOF {
		t.Fatalf("expected truncation error, got %v", err)
	}
}

func TestSamplerFrameBytesRoundTrip(t *testing.T) {
	want := fakeJPEG(7)
	s := NewSampler(bytes.NewReader(want), 1, 30)
	frame, err := s.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if !bytes.Equal(frame.Data, want) {
		t.Fatalf("frame bytes differ from source image")
	}
}
