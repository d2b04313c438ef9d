package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyListening is returned by a second call to Listen.
	ErrAlreadyListening = errors.New("ingest: already listening")

	// ErrClosed is returned by Listen after the server has closed.
	ErrClosed = errors.New("ingest: server closed")
)

// SocketError reports a failure to bind the listening socket.
type SocketError struct {
	Addr string
	Err  error
}

func (e *SocketError) Error() string {
	return fmt.Sprintf("ingest: listen on %s: %v", e.Addr, e.Err)
}

func (e *SocketError) Unwrap() error {
	return e.Err
}
