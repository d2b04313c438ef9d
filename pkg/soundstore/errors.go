package soundstore

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode matches every *DecodeError.
	ErrDecode = errors.New("soundstore: decode failed")

	// ErrDuplicateKey is returned when two assets share a key.
	ErrDuplicateKey = errors.New("soundstore: duplicate sound key")

	// ErrChannelLayout is returned for tracks with more than two channels.
	ErrChannelLayout = errors.New("soundstore: unsupported channel layout")
)

// DecodeError names the asset whose payload could not be read or decoded.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("soundstore: decode %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is reports whether target is ErrDecode.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
