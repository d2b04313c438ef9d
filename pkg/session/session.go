// Package session owns the single video encode session of the process.
//
// A Session wraps the encoder process and its input pipe behind one mutex.
// Callers can write frames, finish, or abort; the process handle itself is
// never handed out. At most one session is active per Manager.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/user/mixrender/pkg/adapters/ffmpeg"
	"github.com/user/mixrender/pkg/ports"
)

// State is the lifecycle position of a session.
type State int

const (
	StateIdle State = iota
	StateActive
	StateFinishing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateFinishing:
		return "finishing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Spec describes the video to encode.
type Spec struct {
	ffmpeg.VideoOptions

	// ExpectedFrames is used for progress only; 0 means unknown.
	ExpectedFrames int
}

// Validate checks that the settings can start an encoder.
func (s Spec) Validate() error {
	switch {
	case s.Width <= 0 || s.Height <= 0:
		return fmt.Errorf("%w: resolution %dx%d", ErrInvalidSpec, s.Width, s.Height)
	case s.FPS <= 0:
		return fmt.Errorf("%w: frame rate %d", ErrInvalidSpec, s.FPS)
	case s.Output == "":
		return fmt.Errorf("%w: output path is empty", ErrInvalidSpec)
	case s.Codec == "":
		return fmt.Errorf("%w: codec is empty", ErrInvalidSpec)
	}
	return nil
}

// Manager hands out sessions, one at a time.
type Manager struct {
	runner ports.ProcessRunner
	logger ports.Logger

	mu      sync.Mutex
	current *Session
}

// NewManager creates a Manager that spawns encoders through runner.
func NewManager(runner ports.ProcessRunner, logger ports.Logger) *Manager {
	return &Manager{
		runner: runner,
		logger: logger.WithComponent("session"),
	}
}

// Start spawns the encoder for spec and returns the new active session.
// It fails with ErrSessionActive while a previous session is still
// active or finishing.
func (m *Manager) Start(ctx context.Context, spec Spec) (*Session, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		return nil, fmt.Errorf("%w (%s)", ErrSessionActive, m.current.ID)
	}

	args := ffmpeg.VideoArgs(spec.VideoOptions)
	proc, err := m.runner.Start(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("start encoder: %w", err)
	}

	s := &Session{
		ID:        uuid.NewString(),
		Spec:      spec,
		Args:      args,
		StartedAt: time.Now(),
		proc:      proc,
		handle:    proc,
		state:     StateActive,
		done:      make(chan struct{}),
		logger:    m.logger,
	}
	s.release = func() { m.release(s) }
	m.current = s

	m.logger.Info("Encoder session %s started (%dx%d @ %d fps, %s)",
		s.ID, spec.Width, spec.Height, spec.FPS, spec.Codec)
	return s, nil
}

// Current returns the active session, or nil.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Active reports whether a session is active or finishing.
func (m *Manager) Active() bool {
	return m.Current() != nil
}

func (m *Manager) release(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == s {
		m.current = nil
	}
}

// Session is one running encode.
type Session struct {
	ID        string
	Spec      Spec
	Args      []string
	StartedAt time.Time

	logger  ports.Logger
	release func()

	// handle is set once before the session is published and read without
	// mu, so Abort can kill an encoder while a write holds the lock.
	handle ports.EncoderProcess

	mu     sync.Mutex
	proc   ports.EncoderProcess
	state  State
	frames int
	closed time.Time
	err    error
	done   chan struct{}
}

// WriteFrame sends one RGB24 frame to the encoder.
func (s *Session) WriteFrame(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return ErrNotActive
	}
	if want := s.Spec.FrameSize(); len(frame) != want {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrFrameSize, len(frame), want)
	}
	if err := s.proc.Write(frame); err != nil {
		return &WriteError{Frame: s.frames, Err: err}
	}
	s.frames++
	return nil
}

// Finish closes the encoder input and waits for the process to exit.
// Calling Finish again, or concurrently, waits for the first call and
// returns its result.
func (s *Session) Finish() error {
	proc, ok := s.take()
	if !ok {
		<-s.done
		return s.result()
	}

	s.logger.Debug("Finishing encoder session %s after %d frames", s.ID, s.FramesReceived())
	err := proc.Finish()
	s.close(err)

	if err != nil {
		s.logger.Error("Encoder session %s failed: %v", s.ID, err)
	} else {
		s.logger.Info("Encoder session %s closed after %d frames", s.ID, s.FramesReceived())
	}
	return err
}

// Abort kills the encoder and reaps it. The partially written output is
// left to the caller.
func (s *Session) Abort() error {
	select {
	case <-s.done:
		return nil
	default:
	}

	// A write blocked on a full pipe holds mu until the process dies.
	killErr := s.handle.Kill()

	proc, ok := s.take()
	if !ok {
		<-s.done
		return nil
	}
	// the exit status of a killed process is expected
	_ = proc.Finish()
	s.close(ErrAborted)

	s.logger.Warn("Encoder session %s aborted after %d frames", s.ID, s.FramesReceived())
	return killErr
}

// take moves an active session to Finishing and hands back the process.
// Writes fail with ErrNotActive from this point on.
func (s *Session) take() (ports.EncoderProcess, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return nil, false
	}
	proc := s.proc
	s.proc = nil
	s.state = StateFinishing
	return proc, true
}

func (s *Session) close(err error) {
	s.mu.Lock()
	s.state = StateClosed
	s.err = err
	s.closed = time.Now()
	s.mu.Unlock()

	close(s.done)
	if s.release != nil {
		s.release()
	}
}

func (s *Session) result() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Done is closed once the encoder process has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns the close error, nil while the session is open.
func (s *Session) Err() error {
	return s.result()
}

// IsActive reports whether the session still accepts frames.
func (s *Session) IsActive() bool {
	return s.State() == StateActive
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// FramesReceived returns the number of frames written so far.
func (s *Session) FramesReceived() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Elapsed returns the time from start to close, or to now while open.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.closed.Sub(s.StartedAt)
}
