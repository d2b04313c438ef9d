package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.SampleRate != 44100 || cfg.Channels != 2 {
		t.Errorf("unexpected mix format: %d Hz, %d ch", cfg.SampleRate, cfg.Channels)
	}
	if cfg.Video.Codec != "libx264" || cfg.Video.Bitrate != "8M" || cfg.Video.FPS != 60 {
		t.Errorf("unexpected video defaults: %+v", cfg.Video)
	}
	if cfg.Combine.AudioBitrate != "192k" || !cfg.Combine.Limiter || cfg.Combine.MusicDelayMs != 1000 {
		t.Errorf("unexpected combine defaults: %+v", cfg.Combine)
	}
	if cfg.Normalize {
		t.Error("normalization must be off by default")
	}
	if cfg.Listen != "127.0.0.1:63401" {
		t.Errorf("unexpected listen address %s", cfg.Listen)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixrender.yaml")
	content := `
log_level: debug
sample_rate: 48000
video:
  codec: libx265
  fps: 30
combine:
  limiter: false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.SampleRate != 48000 {
		t.Errorf("unexpected values: %+v", cfg)
	}
	if cfg.Video.Codec != "libx265" || cfg.Video.FPS != 30 {
		t.Errorf("unexpected video: %+v", cfg.Video)
	}
	// Unset keys keep their defaults.
	if cfg.Video.Bitrate != "8M" || cfg.Channels != 2 {
		t.Errorf("expected defaults preserved, got %+v", cfg)
	}
	if cfg.Combine.Limiter {
		t.Error("expected limiter disabled")
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("video: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"FFMPEG_PATH":      "/opt/ffmpeg/bin/ffmpeg",
		"REPORT_INTERVAL":  "30",
		"MIXRENDER_LISTEN": "127.0.0.1:9000",
	}
	cfg := Defaults()
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.FFmpegPath != "/opt/ffmpeg/bin/ffmpeg" || cfg.ReportInterval != 30 || cfg.Listen != "127.0.0.1:9000" {
		t.Errorf("env not applied: %+v", cfg)
	}

	cfg = Defaults()
	err := cfg.ApplyEnv(func(k string) string {
		if k == "REPORT_INTERVAL" {
			return "often"
		}
		return ""
	})
	if err == nil {
		t.Error("expected error for a non-numeric interval")
	}
	if cfg.ReportInterval != 1 {
		t.Errorf("expected interval unchanged, got %d", cfg.ReportInterval)
	}
}

func TestIngestConfig(t *testing.T) {
	cfg := Defaults()
	cfg.InactivityTimeoutSec = 5
	cfg.ConnectTimeoutSec = 30
	cfg.ReportInterval = 10

	ic := cfg.IngestConfig()
	if ic.ConnectTimeout != 30*time.Second {
		t.Errorf("expected 30s connect timeout, got %v", ic.ConnectTimeout)
	}
	if ic.InactivityTimeout != 5*time.Second || ic.ReportInterval != 10 || ic.Addr != cfg.Listen {
		t.Errorf("unexpected ingest config: %+v", ic)
	}
}

func TestParseResolution(t *testing.T) {
	tests := []struct {
		in      string
		w, h    int
		wantErr bool
	}{
		{"1280x720", 1280, 720, false},
		{"1920X1080", 1920, 1080, false},
		{" 640x480 ", 640, 480, false},
		{"1280", 0, 0, true},
		{"0x720", 0, 0, true},
		{"axb", 0, 0, true},
		{"1280x-1", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			w, h, err := ParseResolution(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseResolution(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if w != tt.w || h != tt.h {
				t.Errorf("ParseResolution(%q) = %dx%d, want %dx%d", tt.in, w, h, tt.w, tt.h)
			}
		})
	}
}

func TestToOrchestratorConfig(t *testing.T) {
	cfg := Defaults()
	job, err := ParseJob([]byte(`
output: out/final.mp4
duration: 2.5
resolution: 320x240
fps: 30
sounds:
  - key: kick
    data: kick.wav
events:
  - sound: kick
    offset: 0.5
music:
  - path: bed.mp3
  - path: sting.wav
    gain: 0.3
    delay_ms: 250
`))
	if err != nil {
		t.Fatalf("ParseJob failed: %v", err)
	}

	oc, err := cfg.ToOrchestratorConfig(job)
	if err != nil {
		t.Fatalf("ToOrchestratorConfig failed: %v", err)
	}

	if oc.Video.Width != 320 || oc.Video.Height != 240 || oc.Video.FPS != 30 {
		t.Errorf("unexpected video: %+v", oc.Video)
	}
	if oc.Video.ExpectedFrames != 75 {
		t.Errorf("expected 75 frames, got %d", oc.Video.ExpectedFrames)
	}
	if oc.Video.Output != "out/final.video.mp4" || oc.MixOutput != "out/final.mix.wav" {
		t.Errorf("unexpected intermediates: %s, %s", oc.Video.Output, oc.MixOutput)
	}
	if oc.Music[0].Gain != 1.0 || oc.Music[0].DelayMs != 1000 {
		t.Errorf("expected music defaults, got %+v", oc.Music[0])
	}
	if oc.Music[1].Gain != 0.3 || oc.Music[1].DelayMs != 250 {
		t.Errorf("expected explicit music values kept, got %+v", oc.Music[1])
	}
	if oc.Mix.SampleRate != 44100 || oc.Mix.Normalize {
		t.Errorf("unexpected mix options: %+v", oc.Mix)
	}
	if !oc.Limiter || oc.AudioBitrate != "192k" {
		t.Errorf("unexpected combine options: %+v", oc)
	}
}

func TestToOrchestratorConfig_BadResolution(t *testing.T) {
	job := Job{Output: "a.mp4", Duration: 1, Resolution: "wide"}
	if _, err := Defaults().ToOrchestratorConfig(job); err == nil {
		t.Error("expected resolution error")
	}
}

func TestIntermediate(t *testing.T) {
	tests := map[string]string{
		"final.mp4":        "final.mix.wav",
		"dir.v2/final":     "dir.v2/final.mix.wav",
		"out/a.b/clip.mp4": "out/a.b/clip.mix.wav",
	}
	for in, want := range tests {
		if got := intermediate(in, ".mix.wav"); got != want {
			t.Errorf("intermediate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseJob_EventDefaults(t *testing.T) {
	job, err := ParseJob([]byte(`{
  "output": "a.mp4",
  "duration": 1,
  "events": [
    {"sound": "kick", "offset": 0},
    {"sound": "hat", "offset": 0.25, "volume": 0, "rate": 2}
  ]
}`))
	if err != nil {
		t.Fatalf("ParseJob failed: %v", err)
	}

	if e := job.Events[0]; e.Volume != 1 || e.Rate != 1 {
		t.Errorf("expected unit volume and rate, got %+v", e)
	}
	if e := job.Events[1]; e.Volume != 0 || e.Rate != 2 {
		t.Errorf("expected explicit values, got %+v", e)
	}
}

func TestParseJob_Invalid(t *testing.T) {
	tests := map[string]string{
		"no output":   "duration: 1",
		"no duration": "output: a.mp4",
		"two sources": "output: a.mp4\nduration: 1\nproducer_url: http://x\ntest_pattern: true",
		"keyless":     "output: a.mp4\nduration: 1\nsounds:\n  - data: a.wav",
		"infinite":    "output: a.mp4\nduration: .inf",
		"nan":         "output: a.mp4\nduration: .nan\nvideo: clip.mp4",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseJob([]byte(doc)); !errors.Is(err, ErrInvalidJob) {
				t.Errorf("expected ErrInvalidJob, got %v", err)
			}
		})
	}

	if _, err := ParseJob([]byte("events: {")); err == nil || errors.Is(err, ErrInvalidJob) {
		t.Errorf("expected a parse error, got %v", err)
	}
}

func TestLoadJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	if err := os.WriteFile(path, []byte("output: a.mp4\nvideo: clip.mp4\nmusic:\n  - path: bed.wav\n"), 0644); err != nil {
		t.Fatal(err)
	}
	job, err := LoadJob(path)
	if err != nil {
		t.Fatalf("LoadJob failed: %v", err)
	}
	if job.VideoInput != "clip.mp4" || len(job.Music) != 1 {
		t.Errorf("unexpected job: %+v", job)
	}
}
