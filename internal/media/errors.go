package media

import "github.com/pkg/errors"

var (
	// ErrInvalidMedia marks input that cannot be probed or decoded: unreadable
	// container, zero frames, non-positive duration.
	ErrInvalidMedia = errors.New("invalid media")

	// ErrNoAudioTrack marks a decodable video without any audio stream.
	ErrNoAudioTrack = errors.New("video has no audio track")
)
