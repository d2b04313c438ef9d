package mocks

import (
	"context"
	"sync"

	"github.com/user/mixrender/pkg/ports"
)

// FrameProducer is a mock implementation of ports.FrameProducer.
type FrameProducer struct {
	mu sync.Mutex

	ProduceFunc func(ctx context.Context, url string) error

	// Recorded calls for verification
	URLs []string
}

func (m *FrameProducer) Produce(ctx context.Context, url string) error {
	m.mu.Lock()
	m.URLs = append(m.URLs, url)
	m.mu.Unlock()

	if m.ProduceFunc != nil {
		return m.ProduceFunc(ctx, url)
	}
	return nil
}

// Calls returns the number of Produce calls.
func (m *FrameProducer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.URLs)
}

var _ ports.FrameProducer = (*FrameProducer)(nil)
