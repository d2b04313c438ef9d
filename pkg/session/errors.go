package session

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionActive is returned by Start while another session has not
	// closed yet.
	ErrSessionActive = errors.New("session: an encode session is already active")

	// ErrNotActive is returned when writing to a session that is finishing
	// or closed.
	ErrNotActive = errors.New("session: not active")

	// ErrFrameSize is returned for a frame whose length is not
	// width*height*3.
	ErrFrameSize = errors.New("session: frame size mismatch")

	// ErrInvalidSpec is returned by Start for non-positive dimensions or
	// frame rate, or a missing output path.
	ErrInvalidSpec = errors.New("session: invalid spec")

	// ErrAborted is the close error of a session ended by Abort.
	ErrAborted = errors.New("session: aborted")
)

// WriteError wraps a failed write to the encoder input.
type WriteError struct {
	Frame int
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("session: write frame %d: %v", e.Frame, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
