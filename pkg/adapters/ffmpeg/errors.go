package ffmpeg

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrFFmpegNotFound is returned when no usable ffmpeg binary can be located.
	ErrFFmpegNotFound = errors.New("ffmpeg: ffmpeg not found")

	// ErrProcessFinished is returned when writing to or finishing a process
	// whose input has already been closed.
	ErrProcessFinished = errors.New("ffmpeg: process already finished")
)

// PathError reports a user-supplied encoder path that could not be made
// executable or did not answer -version.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("ffmpeg: unusable encoder path %s: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// SpawnError reports a failure to start the encoder process.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("ffmpeg: failed to start %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ExitError reports an encoder that exited with a non-zero status.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("ffmpeg: exited with status %d", e.Code)
	}
	return fmt.Sprintf("ffmpeg: exited with status %d\nstderr: %s", e.Code, e.Stderr)
}

// KilledError reports an encoder terminated by a signal.
type KilledError struct {
	State  string
	Stderr string
}

func (e *KilledError) Error() string {
	return fmt.Sprintf("ffmpeg: terminated abnormally (%s)", e.State)
}

// waitError converts the result of cmd.Wait into ExitError or KilledError.
func waitError(err error, stderr string) error {
	if err == nil {
		return nil
	}
	stderr = strings.TrimSpace(stderr)
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		if ee.ExitCode() == -1 {
			return &KilledError{State: ee.ProcessState.String(), Stderr: stderr}
		}
		return &ExitError{Code: ee.ExitCode(), Stderr: stderr}
	}
	return fmt.Errorf("ffmpeg: wait: %w", err)
}
