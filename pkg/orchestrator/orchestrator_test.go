package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/user/mixrender/pkg/adapters/ffmpeg"
	"github.com/user/mixrender/pkg/adapters/logger"
	"github.com/user/mixrender/pkg/ingest"
	"github.com/user/mixrender/pkg/mixer"
	"github.com/user/mixrender/pkg/mocks"
	"github.com/user/mixrender/pkg/pipeline"
	"github.com/user/mixrender/pkg/session"
)

// mockMixdownStage is a mock for the mixdown stage.
type mockMixdownStage struct {
	mu     sync.Mutex
	input  pipeline.MixdownInput
	calls  int
	result pipeline.MixdownResult
	err    error
}

func (m *mockMixdownStage) Execute(ctx context.Context, input pipeline.MixdownInput) (pipeline.MixdownResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.input = input
	if m.err != nil {
		return pipeline.MixdownResult{}, m.err
	}
	r := m.result
	r.Output = input.Output
	return r, nil
}

// mockCaptureStage is a mock for the capture stage.
type mockCaptureStage struct {
	input  pipeline.CaptureInput
	calls  int
	result pipeline.CaptureResult
	err    error
}

func (m *mockCaptureStage) Execute(ctx context.Context, input pipeline.CaptureInput) (pipeline.CaptureResult, error) {
	m.calls++
	m.input = input
	if m.err != nil {
		return pipeline.CaptureResult{}, m.err
	}
	r := m.result
	r.Output = input.Video.Output
	return r, nil
}

// mockCombineStage is a mock for the combine stage.
type mockCombineStage struct {
	input  pipeline.CombineInput
	calls  int
	result pipeline.CombineResult
	err    error
}

func (m *mockCombineStage) Execute(ctx context.Context, input pipeline.CombineInput) (pipeline.CombineResult, error) {
	m.calls++
	m.input = input
	if m.err != nil {
		return pipeline.CombineResult{}, m.err
	}
	return m.result, nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Events = []mixer.Event{{Sound: "kick", Volume: 1}}
	cfg.Duration = 2
	cfg.MixOutput = "mix.wav"
	cfg.Video = session.Spec{
		VideoOptions: ffmpeg.VideoOptions{
			Width: 4, Height: 4, FPS: 30, Codec: "libx264", Bitrate: "1M", Output: "video.mp4",
		},
		ExpectedFrames: 60,
	}
	cfg.Music = []pipeline.AudioInput{{Path: "music.wav", Gain: 0.4, DelayMs: 1000}}
	cfg.Output = "final.mp4"
	return cfg
}

type fixture struct {
	mixdown *mockMixdownStage
	capture *mockCaptureStage
	combine *mockCombineStage
	fs      *mocks.FileSystem
	orch    *Orchestrator
}

func newFixture() *fixture {
	f := &fixture{
		mixdown: &mockMixdownStage{result: pipeline.MixdownResult{Events: 1, Sounds: 1, Peak: 0.9, Duration: 2}},
		capture: &mockCaptureStage{result: pipeline.CaptureResult{Frames: 60, Reason: ingest.ReasonFinish}},
		combine: &mockCombineStage{result: pipeline.CombineResult{Tracks: 2, DurationSeconds: 2, FileSize: 1234, AudioCodec: "mp4a"}},
		fs:      mocks.NewFileSystem(),
	}
	f.fs.WriteFile("mix.wav", []byte("wav"))
	f.fs.WriteFile("video.mp4", []byte("mp4"))
	f.orch = New(f.mixdown, f.capture, f.combine, f.fs, logger.NewNoop())
	return f
}

func TestOrchestrator_Run(t *testing.T) {
	f := newFixture()

	result, err := f.orch.Run(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.mixdown.calls != 1 || f.capture.calls != 1 || f.combine.calls != 1 {
		t.Fatalf("expected each stage once, got %d/%d/%d", f.mixdown.calls, f.capture.calls, f.combine.calls)
	}

	in := f.combine.input
	if in.Video != "video.mp4" || in.Output != "final.mp4" {
		t.Errorf("unexpected combine paths: %+v", in)
	}
	if len(in.Audio) != 2 || in.Audio[0].Path != "mix.wav" || in.Audio[1].Path != "music.wav" {
		t.Errorf("expected mix first then music, got %+v", in.Audio)
	}
	if !in.Limiter || in.Bitrate != "192k" {
		t.Errorf("expected default limiter and bitrate, got %+v", in)
	}

	if result.Frames != 60 || result.Events != 1 || result.Tracks != 2 || result.FileSize != 1234 {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.CaptureReason != "finish" {
		t.Errorf("expected finish reason, got %q", result.CaptureReason)
	}

	if _, ok := f.fs.GetFile("mix.wav"); ok {
		t.Error("expected intermediate mix removed")
	}
	if _, ok := f.fs.GetFile("video.mp4"); ok {
		t.Error("expected intermediate video removed")
	}
}

func TestOrchestrator_KeepIntermediate(t *testing.T) {
	f := newFixture()
	cfg := testConfig()
	cfg.KeepIntermediate = true

	if _, err := f.orch.Run(context.Background(), cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := f.fs.GetFile("mix.wav"); !ok {
		t.Error("expected mix kept")
	}
	if _, ok := f.fs.GetFile("video.mp4"); !ok {
		t.Error("expected video kept")
	}
}

func TestOrchestrator_VideoOnly(t *testing.T) {
	f := newFixture()
	cfg := testConfig()
	cfg.Events = nil
	cfg.Music = nil

	if _, err := f.orch.Run(context.Background(), cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.mixdown.calls != 0 || f.combine.calls != 0 {
		t.Errorf("expected capture only, got mixdown=%d combine=%d", f.mixdown.calls, f.combine.calls)
	}
	if f.capture.input.Video.Output != "final.mp4" {
		t.Errorf("expected capture straight to the output, got %s", f.capture.input.Video.Output)
	}
}

func TestOrchestrator_ExistingVideo(t *testing.T) {
	f := newFixture()
	cfg := testConfig()
	cfg.VideoInput = "video.mp4"

	if _, err := f.orch.Run(context.Background(), cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.capture.calls != 0 {
		t.Error("expected no capture with an existing video")
	}
	if f.combine.input.Video != "video.mp4" {
		t.Errorf("unexpected combine video: %s", f.combine.input.Video)
	}
	if _, ok := f.fs.GetFile("video.mp4"); !ok {
		t.Error("a user supplied video must never be removed")
	}
}

func TestOrchestrator_CaptureError(t *testing.T) {
	f := newFixture()
	boom := errors.New("encoder crashed")
	f.capture.err = boom

	_, err := f.orch.Run(context.Background(), testConfig())
	if !errors.Is(err, boom) {
		t.Fatalf("expected capture error, got %v", err)
	}
	if f.combine.calls != 0 {
		t.Error("combine must not run after a capture failure")
	}
	f.mixdown.mu.Lock()
	defer f.mixdown.mu.Unlock()
	if f.mixdown.calls != 1 {
		t.Error("expected the background mix to be awaited")
	}
}

func TestOrchestrator_MixdownError(t *testing.T) {
	f := newFixture()
	f.mixdown.err = mixer.ErrUnknownSound

	_, err := f.orch.Run(context.Background(), testConfig())
	if !errors.Is(err, mixer.ErrUnknownSound) {
		t.Fatalf("expected mix error, got %v", err)
	}
	if f.combine.calls != 0 {
		t.Error("combine must not run after a mix failure")
	}
}

func TestOrchestrator_CombineError(t *testing.T) {
	f := newFixture()
	boom := errors.New("exit status 1")
	f.combine.err = boom

	if _, err := f.orch.Run(context.Background(), testConfig()); !errors.Is(err, boom) {
		t.Errorf("expected combine error, got %v", err)
	}
	if _, ok := f.fs.GetFile("mix.wav"); !ok {
		t.Error("intermediates are kept when combine fails")
	}
}

func TestOrchestrator_Validation(t *testing.T) {
	f := newFixture()

	cfg := testConfig()
	cfg.Output = ""
	if _, err := f.orch.Run(context.Background(), cfg); err == nil {
		t.Error("expected error without output")
	}

	cfg = testConfig()
	cfg.MixOutput = ""
	if _, err := f.orch.Run(context.Background(), cfg); err == nil {
		t.Error("expected error without mix path")
	}

	cfg = testConfig()
	cfg.Events = nil
	cfg.Music = nil
	cfg.VideoInput = "video.mp4"
	if _, err := f.orch.Run(context.Background(), cfg); err == nil {
		t.Error("expected error when there is nothing to add")
	}
}
