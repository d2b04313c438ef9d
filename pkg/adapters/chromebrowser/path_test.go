package chromebrowser

import (
	"os"
	"runtime"
	"testing"
)

func TestResolveChromePath_ExplicitPath(t *testing.T) {
	t.Setenv("CHROME_PATH", "/env/chrome")

	if got := ResolveChromePath("/custom/path/to/chrome"); got != "/custom/path/to/chrome" {
		t.Errorf("expected explicit path to take precedence, got %s", got)
	}
}

func TestResolveChromePath_EnvVar(t *testing.T) {
	t.Setenv("CHROME_PATH", "/env/chrome")

	if got := ResolveChromePath(""); got != "/env/chrome" {
		t.Errorf("expected CHROME_PATH to be used, got %s", got)
	}
}

func TestChromeCandidates(t *testing.T) {
	env := map[string]string{"PROGRAMFILES": `C:\Program Files`}
	getenv := func(k string) string { return env[k] }

	win := chromeCandidates("windows", getenv)
	if len(win) != 2 || win[0] != `C:\Program Files\Chromium\Application\chrome.exe` {
		t.Errorf("unexpected windows candidates: %v", win)
	}

	linux := chromeCandidates("linux", getenv)
	if linux[0] != "chromium" {
		t.Errorf("expected chromium first on linux, got %v", linux)
	}

	mac := chromeCandidates("darwin", getenv)
	if len(mac) != 2 {
		t.Errorf("unexpected darwin candidates: %v", mac)
	}
}

func TestResolveExecutable(t *testing.T) {
	if got := resolveExecutable("definitely-not-a-real-command-xyz123"); got != "" {
		t.Errorf("expected empty for an unknown command, got %s", got)
	}
	if got := resolveExecutable("/definitely/not/a/real/path/chrome"); got != "" {
		t.Errorf("expected empty for a missing path, got %s", got)
	}

	var testPath string
	switch runtime.GOOS {
	case "windows":
		testPath = os.Getenv("COMSPEC")
	default:
		testPath = "/bin/sh"
	}
	if testPath == "" {
		t.Skip("No known executable path for this platform")
	}
	if got := resolveExecutable(testPath); got != testPath {
		t.Errorf("expected %s, got %s", testPath, got)
	}
}
