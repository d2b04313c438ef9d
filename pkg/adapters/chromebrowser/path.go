package chromebrowser

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// ResolveChromePath returns explicitPath, then CHROME_PATH, then the first
// Chromium or Chrome found in the platform's usual places. An empty result
// lets chromedp fall back to its own lookup.
func ResolveChromePath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}
	if env := os.Getenv("CHROME_PATH"); env != "" {
		return env
	}
	for _, candidate := range chromeCandidates(runtime.GOOS, os.Getenv) {
		if path := resolveExecutable(candidate); path != "" {
			return path
		}
	}
	return ""
}

// chromeCandidates lists Chromium before Chrome for goos.
func chromeCandidates(goos string, getenv func(string) string) []string {
	switch goos {
	case "darwin":
		return []string{
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		}
	case "windows":
		var out []string
		for _, root := range []string{getenv("PROGRAMFILES"), getenv("PROGRAMFILES(X86)"), getenv("LOCALAPPDATA")} {
			if root == "" {
				continue
			}
			out = append(out,
				root+`\Chromium\Application\chrome.exe`,
				root+`\Google\Chrome\Application\chrome.exe`,
			)
		}
		return out
	default:
		return []string{"chromium", "chromium-browser", "google-chrome-stable", "google-chrome"}
	}
}

// resolveExecutable stats absolute paths and looks bare names up in PATH.
func resolveExecutable(nameOrPath string) string {
	if filepath.IsAbs(nameOrPath) || (len(nameOrPath) > 1 && nameOrPath[1] == ':') {
		if _, err := os.Stat(nameOrPath); err == nil {
			return nameOrPath
		}
		return ""
	}
	if path, err := exec.LookPath(nameOrPath); err == nil {
		return path
	}
	return ""
}
