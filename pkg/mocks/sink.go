package mocks

import (
	"sync"

	"github.com/user/mixrender/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	MixJSON  []byte
	MixPCM   []byte
	Frames   map[int][]byte
	Commands map[string][]string
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:  enabled,
		Frames:   make(map[int][]byte),
		Commands: make(map[string][]string),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveMixJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MixJSON = data
	return nil
}

func (m *DebugSink) SaveMixPCM(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MixPCM = data
	return nil
}

func (m *DebugSink) SaveFrame(index int, rgb []byte, width, height int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Frames[index] = rgb
	return nil
}

func (m *DebugSink) SaveCommand(name string, args []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Commands[name] = args
	return nil
}

// Command returns the recorded arguments for name.
func (m *DebugSink) Command(name string) ([]string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	args, ok := m.Commands[name]
	return args, ok
}

var _ ports.DebugSink = (*DebugSink)(nil)

// NullSink is a no-op implementation of ports.DebugSink.
type NullSink struct{}

func (m *NullSink) Enabled() bool                                   { return false }
func (m *NullSink) SaveMixJSON(data []byte) error                   { return nil }
func (m *NullSink) SaveMixPCM(data []byte) error                    { return nil }
func (m *NullSink) SaveFrame(index int, rgb []byte, w, h int) error { return nil }
func (m *NullSink) SaveCommand(name string, args []string) error    { return nil }

var _ ports.DebugSink = (*NullSink)(nil)
