package mocks

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/user/mixrender/pkg/ports"
)

// FileSystem is a mock implementation of ports.FileSystem.
type FileSystem struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]bool
	modes map[string]os.FileMode

	ReadFileFunc  func(path string) ([]byte, error)
	OpenFunc      func(path string) (io.ReadSeekCloser, error)
	WriteFileFunc func(path string, data []byte) error
	MkdirAllFunc  func(path string) error
	ExistsFunc    func(path string) (bool, error)
	RemoveFunc    func(path string) error
	ModeFunc      func(path string) (os.FileMode, error)
	ChmodFunc     func(path string, mode os.FileMode) error

	// Recorded calls for verification
	ChmodCalls []ChmodCall
}

// ChmodCall records a call to Chmod.
type ChmodCall struct {
	Path string
	Mode os.FileMode
}

// NewFileSystem creates a new mock FileSystem.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
		modes: make(map[string]os.FileMode),
	}
}

func (m *FileSystem) ReadFile(path string) ([]byte, error) {
	if m.ReadFileFunc != nil {
		return m.ReadFileFunc(path)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if data, ok := m.files[path]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("file not found: %s", path)
}

type readSeekNopCloser struct {
	*bytes.Reader
}

func (readSeekNopCloser) Close() error { return nil }

func (m *FileSystem) Open(path string) (io.ReadSeekCloser, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(path)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return readSeekNopCloser{bytes.NewReader(data)}, nil
}

func (m *FileSystem) WriteFile(path string, data []byte) error {
	if m.WriteFileFunc != nil {
		return m.WriteFileFunc(path, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = data
	return nil
}

func (m *FileSystem) MkdirAll(path string) error {
	if m.MkdirAllFunc != nil {
		return m.MkdirAllFunc(path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[path] = true
	return nil
}

func (m *FileSystem) Exists(path string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(path)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.files[path]; ok {
		return true, nil
	}
	if _, ok := m.dirs[path]; ok {
		return true, nil
	}
	return false, nil
}

func (m *FileSystem) Remove(path string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
	delete(m.dirs, path)
	return nil
}

func (m *FileSystem) Mode(path string) (os.FileMode, error) {
	if m.ModeFunc != nil {
		return m.ModeFunc(path)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.files[path]; !ok {
		return 0, os.ErrNotExist
	}
	if mode, ok := m.modes[path]; ok {
		return mode, nil
	}
	return 0644, nil
}

func (m *FileSystem) Chmod(path string, mode os.FileMode) error {
	m.mu.Lock()
	m.ChmodCalls = append(m.ChmodCalls, ChmodCall{Path: path, Mode: mode})
	m.mu.Unlock()
	if m.ChmodFunc != nil {
		return m.ChmodFunc(path, mode)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modes[path] = mode
	return nil
}

// GetFile returns the contents of a file (for test verification).
func (m *FileSystem) GetFile(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[path]
	return data, ok
}

// GetAllFiles returns all files (for test verification).
func (m *FileSystem) GetAllFiles() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string][]byte)
	for k, v := range m.files {
		result[k] = v
	}
	return result
}

var _ ports.FileSystem = (*FileSystem)(nil)
