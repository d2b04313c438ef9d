package ports

import (
	"io"
	"os"
)

// FileSystem abstracts file system operations.
type FileSystem interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// Open opens a file for random access reads.
	Open(path string) (io.ReadSeekCloser, error)

	// WriteFile replaces a file with data, creating parent directories if
	// necessary. Readers never observe a partially written file.
	WriteFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists checks if a file or directory exists.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory.
	Remove(path string) error

	// Mode returns the permission bits of a file.
	Mode(path string) (os.FileMode, error)

	// Chmod changes the permission bits of a file.
	Chmod(path string, mode os.FileMode) error
}
