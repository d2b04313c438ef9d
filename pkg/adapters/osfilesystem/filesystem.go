// Package osfilesystem implements ports.FileSystem on the local disk.
package osfilesystem

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/user/mixrender/pkg/ports"
)

const (
	dirMode  os.FileMode = 0755
	fileMode os.FileMode = 0644
)

// FileSystem implements ports.FileSystem using the os package.
type FileSystem struct{}

// New creates a new FileSystem.
func New() *FileSystem {
	return &FileSystem{}
}

func (fs *FileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (fs *FileSystem) Open(path string) (io.ReadSeekCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// WriteFile writes data to a temporary file next to path and renames it
// into place, so a summary or debug report is either old or complete.
func (fs *FileSystem) WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(name, fileMode); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}

func (fs *FileSystem) MkdirAll(path string) error {
	return os.MkdirAll(path, dirMode)
}

func (fs *FileSystem) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	}
	return false, err
}

func (fs *FileSystem) Remove(path string) error {
	return os.Remove(path)
}

// Mode returns the permission bits of a file.
func (fs *FileSystem) Mode(path string) (os.FileMode, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Mode().Perm(), nil
}

// Chmod changes the permission bits of a file. Used to make a
// user-supplied encoder binary executable.
func (fs *FileSystem) Chmod(path string, mode os.FileMode) error {
	return os.Chmod(path, mode)
}

var _ ports.FileSystem = (*FileSystem)(nil)
