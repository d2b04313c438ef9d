// Package nullsink provides a no-op debug sink implementation.
package nullsink

import "github.com/user/mixrender/pkg/ports"

// Sink is a no-op implementation of ports.DebugSink.
// It discards all debug output.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false as this sink discards all output.
func (s *Sink) Enabled() bool {
	return false
}

// SaveMixJSON does nothing.
func (s *Sink) SaveMixJSON(data []byte) error {
	return nil
}

// SaveMixPCM does nothing.
func (s *Sink) SaveMixPCM(data []byte) error {
	return nil
}

// SaveFrame does nothing.
func (s *Sink) SaveFrame(index int, rgb []byte, width, height int) error {
	return nil
}

// SaveCommand does nothing.
func (s *Sink) SaveCommand(name string, args []string) error {
	return nil
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
