package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/user/mixrender/pkg/ports"
)

var errUnknownPayload = errors.New("mock: unknown payload")

// EncoderProcess is a mock implementation of ports.EncoderProcess.
type EncoderProcess struct {
	mu sync.Mutex

	// WriteFunc and KillFunc run outside the mock's lock, so a Write
	// blocked in WriteFunc can be released by Kill.
	WriteFunc  func(p []byte) error
	FinishFunc func() error
	KillFunc   func() error

	// Recorded calls for verification
	Writes       [][]byte
	FinishCalled int
	Killed       bool
}

func (m *EncoderProcess) Write(p []byte) error {
	if m.WriteFunc != nil {
		if err := m.WriteFunc(p); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Writes = append(m.Writes, append([]byte(nil), p...))
	return nil
}

func (m *EncoderProcess) Finish() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FinishCalled++
	if m.FinishFunc != nil {
		return m.FinishFunc()
	}
	return nil
}

func (m *EncoderProcess) Kill() error {
	m.mu.Lock()
	m.Killed = true
	m.mu.Unlock()
	if m.KillFunc != nil {
		return m.KillFunc()
	}
	return nil
}

// WasKilled reports whether Kill was called.
func (m *EncoderProcess) WasKilled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Killed
}

// Written returns all bytes written, concatenated.
func (m *EncoderProcess) Written() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []byte
	for _, w := range m.Writes {
		out = append(out, w...)
	}
	return out
}

// WriteCount returns the number of Write calls.
func (m *EncoderProcess) WriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Writes)
}

// FinishCount returns the number of Finish calls.
func (m *EncoderProcess) FinishCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FinishCalled
}

var _ ports.EncoderProcess = (*EncoderProcess)(nil)

// ProcessRunner is a mock implementation of ports.ProcessRunner.
// Start hands out Process (created on first use) unless StartFunc is set.
type ProcessRunner struct {
	mu sync.Mutex

	Process   *EncoderProcess
	StartFunc func(ctx context.Context, args []string) (ports.EncoderProcess, error)
	RunFunc   func(ctx context.Context, args []string) error

	// Recorded calls for verification
	StartCalls [][]string
	RunCalls   [][]string
}

func (m *ProcessRunner) Start(ctx context.Context, args []string) (ports.EncoderProcess, error) {
	m.mu.Lock()
	m.StartCalls = append(m.StartCalls, args)
	if m.Process == nil {
		m.Process = &EncoderProcess{}
	}
	proc := m.Process
	m.mu.Unlock()

	if m.StartFunc != nil {
		return m.StartFunc(ctx, args)
	}
	return proc, nil
}

func (m *ProcessRunner) Run(ctx context.Context, args []string) error {
	m.mu.Lock()
	m.RunCalls = append(m.RunCalls, args)
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx, args)
	}
	return nil
}

var _ ports.ProcessRunner = (*ProcessRunner)(nil)
