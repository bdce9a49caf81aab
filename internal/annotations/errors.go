package annotations

import "github.com/pkg/errors"

var (
	// ErrJobNotFound is returned for lookups of unknown job ids.
	ErrJobNotFound = errors.New("job not found")

	// ErrTerminalState is returned when a transition or cancel request hits a
	// job that already reached succeeded, failed or cancelled.
	ErrTerminalState = errors.New("job is in a terminal state")

	// ErrInvalidTransition is returned when a job is asked to enter a state
	// its current state does not allow.
	ErrInvalidTransition = errors.New("invalid job state transition")
)
