package osfilesystem

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestFileSystem_WriteAndReadFile(t *testing.T) {
	fs := New()

	tmpDir := t.TempDir()

	// Write file
	testPath := filepath.Join(tmpDir, "mix.wav")
	testData := []byte("RIFF....WAVE")

	if err := fs.WriteFile(testPath, testData); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	// Read file
	data, err := fs.ReadFile(testPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if string(data) != string(testData) {
		t.Errorf("expected %q, got %q", testData, data)
	}
}

func TestFileSystem_WriteFileCreatesParentDirs(t *testing.T) {
	fs := New()

	tmpDir := t.TempDir()

	// Write to nested path
	testPath := filepath.Join(tmpDir, "a", "b", "c", "mix.wav")
	if err := fs.WriteFile(testPath, []byte("test")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	// Verify file exists
	exists, err := fs.Exists(testPath)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected file to exist")
	}
}

func TestFileSystem_MkdirAll(t *testing.T) {
	fs := New()

	tmpDir := t.TempDir()

	testPath := filepath.Join(tmpDir, "a", "b", "c")
	if err := fs.MkdirAll(testPath); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	exists, err := fs.Exists(testPath)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected directory to exist")
	}
}

func TestFileSystem_Exists(t *testing.T) {
	fs := New()

	tmpDir := t.TempDir()

	// Test existing file
	testPath := filepath.Join(tmpDir, "mix.wav")
	os.WriteFile(testPath, []byte("test"), 0644)

	exists, err := fs.Exists(testPath)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected file to exist")
	}

	// Test non-existing file
	exists, err = fs.Exists(filepath.Join(tmpDir, "nonexistent.txt"))
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("expected file to not exist")
	}
}

func TestFileSystem_Remove(t *testing.T) {
	fs := New()

	tmpDir := t.TempDir()

	// Create file
	testPath := filepath.Join(tmpDir, "mix.wav")
	os.WriteFile(testPath, []byte("test"), 0644)

	// Remove file
	if err := fs.Remove(testPath); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	// Verify removed
	exists, _ := fs.Exists(testPath)
	if exists {
		t.Error("expected file to be removed")
	}
}

func TestFileSystem_ModeAndChmod(t *testing.T) {
	fs := New()

	testPath := filepath.Join(t.TempDir(), "tool")
	if err := os.WriteFile(testPath, []byte("#!/bin/sh\n"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if err := fs.Chmod(testPath, 0755); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}

	mode, err := fs.Mode(testPath)
	if err != nil {
		t.Fatalf("Mode failed: %v", err)
	}
	if runtime.GOOS != "windows" && mode&0o111 == 0 {
		t.Errorf("expected executable bits, got %v", mode)
	}
}

func TestFileSystem_ModeMissingFile(t *testing.T) {
	fs := New()

	if _, err := fs.Mode(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFileSystem_WriteFileReplaces(t *testing.T) {
	fs := New()

	tmpDir := t.TempDir()
	testPath := filepath.Join(tmpDir, "summary.md")

	if err := fs.WriteFile(testPath, []byte("first version")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := fs.WriteFile(testPath, []byte("second")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := os.ReadFile(testPath)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("expected %q, got %q", "second", data)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("failed to list dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target file, got %d entries", len(entries))
	}

	info, err := os.Stat(testPath)
	if err != nil {
		t.Fatalf("failed to stat file: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0644 {
		t.Errorf("expected mode 0644, got %v", info.Mode().Perm())
	}
}

func TestFileSystem_Open(t *testing.T) {
	fs := New()

	testPath := filepath.Join(t.TempDir(), "video.mp4")
	if err := os.WriteFile(testPath, []byte("0123456789"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	f, err := fs.Open(testPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	if size != 10 {
		t.Errorf("expected size 10, got %d", size)
	}

	if _, err := f.Seek(4, io.SeekStart); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	buf := make([]byte, 3)
	if _, err := io.ReadFull(f, buf); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(buf) != "456" {
		t.Errorf("expected %q, got %q", "456", buf)
	}
}

func TestFileSystem_OpenMissingFile(t *testing.T) {
	fs := New()

	if _, err := fs.Open(filepath.Join(t.TempDir(), "missing.mp4")); err == nil {
		t.Error("expected error for missing file")
	}
}
