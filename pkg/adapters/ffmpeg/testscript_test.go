package ffmpeg

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// writeScript writes an executable shell script standing in for ffmpeg.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "fake-ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}
