package mixer

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownSound matches every *UnknownSoundError.
	ErrUnknownSound = errors.New("mixer: unknown sound")

	// ErrInvalidEvent is returned for events with a negative offset, a
	// non-positive rate, or a track whose layout differs from the buffer.
	ErrInvalidEvent = errors.New("mixer: invalid event")

	// ErrInvalidOptions is returned for a non-positive rate or channel
	// count, and for a duration that is negative, not finite or longer
	// than MaxFrames.
	ErrInvalidOptions = errors.New("mixer: invalid options")
)

// UnknownSoundError names the sound key an event referenced but the
// store did not contain.
type UnknownSoundError struct {
	Key   string
	Index int
}

func (e *UnknownSoundError) Error() string {
	return fmt.Sprintf("mixer: event %d references unknown sound %q", e.Index, e.Key)
}

// Is reports whether target is ErrUnknownSound.
func (e *UnknownSoundError) Is(target error) bool { return target == ErrUnknownSound }
