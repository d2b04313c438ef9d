package ffmpeg

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/user/mixrender/pkg/ports"
)

// stderrTail is how much encoder stderr is kept for error messages.
const stderrTail = 4096

// Process is a running encoder fed through standard input.
// Write and Finish are serialized by one mutex, so no write can follow the
// close of the input pipe.
type Process struct {
	mu       sync.Mutex
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	w        *bufio.Writer
	stderr   *tailBuffer
	finished bool
}

// Write sends p to the encoder and flushes it.
func (p *Process) Write(b []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finished {
		return ErrProcessFinished
	}
	if _, err := p.w.Write(b); err != nil {
		return fmt.Errorf("write to encoder: %w", err)
	}
	if err := p.w.Flush(); err != nil {
		return fmt.Errorf("flush encoder input: %w", err)
	}
	return nil
}

// Finish closes standard input and waits for the encoder to exit.
func (p *Process) Finish() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finished {
		return ErrProcessFinished
	}
	p.finished = true

	flushErr := p.w.Flush()
	p.stdin.Close()

	if err := waitError(p.cmd.Wait(), p.stderr.String()); err != nil {
		return err
	}
	if flushErr != nil {
		return fmt.Errorf("flush encoder input: %w", flushErr)
	}
	return nil
}

// Kill terminates the encoder. It does not take the write lock, so it can
// unblock a writer stuck on a full pipe.
func (p *Process) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

// Pid returns the operating system process id.
func (p *Process) Pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

var _ ports.EncoderProcess = (*Process)(nil)

// tailBuffer keeps the last stderrTail bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - stderrTail; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
