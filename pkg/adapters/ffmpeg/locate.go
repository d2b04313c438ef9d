// Package ffmpeg locates the ffmpeg binary and manages ffmpeg processes:
// long-lived encoders fed through standard input and one-shot invocations.
package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/user/mixrender/pkg/ports"
)

// versionTimeout bounds the "-version" check.
const versionTimeout = 10 * time.Second

// FindFFmpeg searches for ffmpeg.
// Priority: 1) custom, 2) FFMPEG_PATH env, 3) PATH, 4) common locations
func FindFFmpeg(custom string) (string, error) {
	if custom != "" {
		if _, err := os.Stat(custom); err == nil {
			return custom, nil
		}
		return "", fmt.Errorf("%w: custom path %s not found", ErrFFmpegNotFound, custom)
	}

	if envPath := os.Getenv("FFMPEG_PATH"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		return "", fmt.Errorf("%w: FFMPEG_PATH %s not found", ErrFFmpegNotFound, envPath)
	}

	execName := "ffmpeg"
	if runtime.GOOS == "windows" {
		execName = "ffmpeg.exe"
	}
	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	for _, p := range commonPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", ErrFFmpegNotFound
}

func commonPaths() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
		}
	case "darwin":
		return []string{
			"/opt/homebrew/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/usr/bin/ffmpeg",
		}
	default:
		return []string{
			"/usr/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/snap/bin/ffmpeg",
		}
	}
}

// Verify runs "<path> -version" and reports whether it succeeded.
func Verify(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, "-version")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return waitError(err, string(out))
	}
	return nil
}

// Resolver picks the encoder binary once at startup.
type Resolver struct {
	FS     ports.FileSystem
	Logger ports.Logger

	// Default locates the system encoder. Defaults to FindFFmpeg("").
	Default func() (string, error)
}

// Resolve returns a working encoder path. The system default wins when it
// answers -version; otherwise userPath is made executable (on unix) and
// verified.
func (r *Resolver) Resolve(ctx context.Context, userPath string) (string, error) {
	find := r.Default
	if find == nil {
		find = func() (string, error) { return FindFFmpeg("") }
	}

	if path, err := find(); err == nil {
		if err := Verify(ctx, path); err == nil {
			r.Logger.Debug("Using system encoder %s", path)
			return path, nil
		}
		r.Logger.Debug("System encoder %s failed -version", path)
	}

	if userPath == "" {
		return "", ErrFFmpegNotFound
	}

	if runtime.GOOS != "windows" {
		if err := r.ensureExecutable(userPath); err != nil {
			return "", &PathError{Path: userPath, Err: err}
		}
	}

	if err := Verify(ctx, userPath); err != nil {
		return "", &PathError{Path: userPath, Err: err}
	}
	r.Logger.Debug("Using encoder %s", userPath)
	return userPath, nil
}

func (r *Resolver) ensureExecutable(path string) error {
	mode, err := r.FS.Mode(path)
	if err != nil {
		return err
	}
	if mode&0o111 != 0 {
		return nil
	}
	r.Logger.Debug("Adding execute permission to %s", path)
	return r.FS.Chmod(path, mode|0o111)
}
