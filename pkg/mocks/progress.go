package mocks

import (
	"sync"

	"github.com/user/mixrender/pkg/ports"
)

// ProgressReporter records progress reports.
type ProgressReporter struct {
	mu      sync.Mutex
	Reports [][2]int
	IsDone  bool
}

func (m *ProgressReporter) Report(done, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reports = append(m.Reports, [2]int{done, total})
}

func (m *ProgressReporter) Done() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IsDone = true
}

// Count returns the number of reports received.
func (m *ProgressReporter) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Reports)
}

var _ ports.ProgressReporter = (*ProgressReporter)(nil)
