package mocks

import (
	"context"
	"sync"

	"github.com/user/mixrender/pkg/ports"
)

// AudioDecoder is a mock implementation of ports.AudioDecoder. Without
// DecodeFunc it returns the PCM registered for the payload with Set.
type AudioDecoder struct {
	mu      sync.Mutex
	results map[string]ports.PCM

	DecodeFunc func(ctx context.Context, data []byte) (ports.PCM, error)

	// Recorded calls for verification
	DecodeCalls [][]byte
}

// NewAudioDecoder creates a new mock AudioDecoder.
func NewAudioDecoder() *AudioDecoder {
	return &AudioDecoder{results: make(map[string]ports.PCM)}
}

// Set registers the PCM returned for payload.
func (m *AudioDecoder) Set(payload string, pcm ports.PCM) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[payload] = pcm
}

func (m *AudioDecoder) Decode(ctx context.Context, data []byte) (ports.PCM, error) {
	m.mu.Lock()
	m.DecodeCalls = append(m.DecodeCalls, data)
	pcm, ok := m.results[string(data)]
	m.mu.Unlock()

	if m.DecodeFunc != nil {
		return m.DecodeFunc(ctx, data)
	}
	if !ok {
		return ports.PCM{}, errUnknownPayload
	}
	return pcm, nil
}

var _ ports.AudioDecoder = (*AudioDecoder)(nil)
