package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/user/mixrender/pkg/ports"
)

// Runner spawns invocations of a resolved ffmpeg binary.
type Runner struct {
	path   string
	stderr io.Writer
	logger ports.Logger
}

// NewRunner creates a Runner for the binary at path. Encoder stderr is
// passed through to os.Stderr, as an interactive ffmpeg would show it.
func NewRunner(path string, logger ports.Logger) *Runner {
	return &Runner{path: path, stderr: os.Stderr, logger: logger}
}

// WithStderr returns a copy of r that forwards encoder stderr to w.
// A nil w discards it.
func (r *Runner) WithStderr(w io.Writer) *Runner {
	c := *r
	if w == nil {
		w = io.Discard
	}
	c.stderr = w
	return &c
}

// Path returns the binary path.
func (r *Runner) Path() string {
	return r.path
}

// Start spawns ffmpeg with a piped standard input. The process is not tied
// to ctx: it ends through Finish or Kill.
func (r *Runner) Start(ctx context.Context, args []string) (ports.EncoderProcess, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.logger.Debug("Starting encoder: %s %s", r.path, strings.Join(args, " "))

	tail := &tailBuffer{}
	cmd := exec.Command(r.path, args...)
	cmd.Stderr = io.MultiWriter(r.stderr, tail)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &SpawnError{Path: r.path, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Path: r.path, Err: err}
	}

	return &Process{
		cmd:    cmd,
		stdin:  stdin,
		w:      bufio.NewWriterSize(stdin, 1<<20),
		stderr: tail,
	}, nil
}

// Run spawns ffmpeg without input and waits for it to exit.
func (r *Runner) Run(ctx context.Context, args []string) error {
	r.logger.Debug("Running encoder: %s %s", r.path, strings.Join(args, " "))

	tail := &tailBuffer{}
	cmd := exec.CommandContext(ctx, r.path, args...)
	cmd.Stderr = io.MultiWriter(r.stderr, tail)

	if err := cmd.Start(); err != nil {
		return &SpawnError{Path: r.path, Err: err}
	}
	return waitError(cmd.Wait(), tail.String())
}

// Output runs ffmpeg with input on standard input and returns its
// standard output.
func (r *Runner) Output(ctx context.Context, args []string, input []byte) ([]byte, error) {
	r.logger.Debug("Running encoder: %s %s", r.path, strings.Join(args, " "))

	var stdout bytes.Buffer
	tail := &tailBuffer{}
	cmd := exec.CommandContext(ctx, r.path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = tail
	if input != nil {
		cmd.Stdin = bytes.NewReader(input)
	}

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Path: r.path, Err: err}
	}
	if err := waitError(cmd.Wait(), tail.String()); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}

// Encoders lists the encoders this ffmpeg build provides.
func (r *Runner) Encoders(ctx context.Context) ([]Encoder, error) {
	out, err := r.Output(ctx, []string{"-hide_banner", "-encoders"}, nil)
	if err != nil {
		return nil, fmt.Errorf("list encoders: %w", err)
	}
	return ParseEncoders(string(out)), nil
}

var _ ports.ProcessRunner = (*Runner)(nil)
