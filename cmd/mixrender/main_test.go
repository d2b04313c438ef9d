package main

import (
	"strings"
	"testing"

	"github.com/user/mixrender/pkg/adapters/ffmpeg"
	"github.com/user/mixrender/pkg/orchestrator"
	"github.com/user/mixrender/pkg/pipeline"
)

func TestNewApp_Commands(t *testing.T) {
	app := newApp()

	want := []string{"render", "mix", "record", "combine", "convert", "encoders", "testpattern", "version"}
	if len(app.Commands) != len(want) {
		t.Fatalf("expected %d commands, got %d", len(want), len(app.Commands))
	}
	for i, name := range want {
		if app.Commands[i].Name != name {
			t.Errorf("command %d: expected %s, got %s", i, name, app.Commands[i].Name)
		}
	}
}

func TestAudioInputs(t *testing.T) {
	got := audioInputs([]string{"mix.wav"}, []string{"bed.mp3", "sting.wav"}, 0.4, 1000)

	want := []pipeline.AudioInput{
		{Path: "mix.wav"},
		{Path: "bed.mp3", Gain: 0.4, DelayMs: 1000},
		{Path: "sting.wav", Gain: 0.4, DelayMs: 1000},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d inputs, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("input %d: got %+v, want %+v", i, got[i], want[i])
		}
	}

	if audioInputs(nil, nil, 1, 0) != nil {
		t.Error("expected no inputs")
	}
}

func TestFormatEncoders(t *testing.T) {
	out := formatEncoders([]ffmpeg.Encoder{
		{Name: "libx264", Description: "H.264 / AVC", Codec: "h264", Kind: ffmpeg.KindVideo},
		{Name: "vvc_exp", Description: "VVC", Codec: "vvc", Kind: ffmpeg.KindVideo, Experimental: true},
	})

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "libx264 ") || !strings.HasSuffix(lines[0], "H.264 / AVC") {
		t.Errorf("unexpected line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "vvc_exp*") {
		t.Errorf("expected experimental marker, got %q", lines[1])
	}
}

func TestBuildSummary(t *testing.T) {
	oc := orchestrator.DefaultConfig()
	oc.Video.Width, oc.Video.Height, oc.Video.FPS = 640, 360, 30
	oc.Video.ExpectedFrames = 90
	oc.Music = []pipeline.AudioInput{{Path: "bed.wav"}}

	result := orchestrator.RunResult{
		Output:        "final.mp4",
		Frames:        88,
		CaptureReason: "timeout",
		Events:        4,
		MixPeak:       0.5,
		Tracks:        2,
		FileSize:      4096,
	}

	s := buildSummary(oc, result)
	if s.Capture.Frames != 88 || s.Capture.ExpectedFrames != 90 || s.Capture.Reason != "timeout" {
		t.Errorf("unexpected capture: %+v", s.Capture)
	}
	if s.Audio.MusicTracks != 1 || s.Audio.Events != 4 {
		t.Errorf("unexpected audio: %+v", s.Audio)
	}
	if s.Settings.Width != 640 || s.Settings.SampleRate != 44100 || !s.Settings.Limiter {
		t.Errorf("unexpected settings: %+v", s.Settings)
	}
	if s.Video.FileSize != 4096 {
		t.Errorf("unexpected video: %+v", s.Video)
	}

	oc.VideoInput = "clip.mp4"
	if s := buildSummary(oc, result); !s.Capture.Skipped {
		t.Error("expected capture skipped for a reused video")
	}
}
