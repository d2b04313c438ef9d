package convert

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/user/mixrender/pkg/adapters/logger"
	"github.com/user/mixrender/pkg/mocks"
	"github.com/user/mixrender/pkg/pipeline"
)

func TestStage_Execute(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFile("music.ogg", []byte("OggS\x00\x02rest"))
	runner := &mocks.ProcessRunner{}
	stage := NewStage(runner, fs, logger.NewNoop())

	result, err := stage.Execute(context.Background(), pipeline.ConvertInput{
		Source: "music.ogg",
		Output: "music.wav",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Output != "music.wav" || result.SourceFormat != "ogg" {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(runner.RunCalls) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runner.RunCalls))
	}
	args := strings.Join(runner.RunCalls[0], " ")
	if args != "-i music.ogg -ar 44100 -c:a pcm_f32le -y music.wav" {
		t.Errorf("unexpected args: %s", args)
	}
}

func TestStage_CustomSampleRate(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFile("a.mp3", []byte("ID3"))
	runner := &mocks.ProcessRunner{}
	stage := NewStage(runner, fs, logger.NewNoop())

	if _, err := stage.Execute(context.Background(), pipeline.ConvertInput{
		Source: "a.mp3", Output: "a.wav", SampleRate: 48000,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(strings.Join(runner.RunCalls[0], " "), "-ar 48000") {
		t.Errorf("expected 48000 Hz in args, got %v", runner.RunCalls[0])
	}
}

func TestStage_MissingSource(t *testing.T) {
	runner := &mocks.ProcessRunner{}
	stage := NewStage(runner, mocks.NewFileSystem(), logger.NewNoop())

	if _, err := stage.Execute(context.Background(), pipeline.ConvertInput{
		Source: "nope.wav", Output: "out.wav",
	}); err == nil {
		t.Fatal("expected error for a missing source")
	}
	if len(runner.RunCalls) != 0 {
		t.Error("encoder must not run for a missing source")
	}
}

func TestStage_EncoderFailure(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFile("in.wav", []byte("RIFF"))
	boom := errors.New("exit status 1")
	runner := &mocks.ProcessRunner{
		RunFunc: func(ctx context.Context, args []string) error { return boom },
	}
	stage := NewStage(runner, fs, logger.NewNoop())

	_, err := stage.Execute(context.Background(), pipeline.ConvertInput{Source: "in.wav", Output: "out.wav"})
	if !errors.Is(err, boom) {
		t.Errorf("expected encoder error, got %v", err)
	}
}

func TestStage_RequiresPaths(t *testing.T) {
	stage := NewStage(&mocks.ProcessRunner{}, mocks.NewFileSystem(), logger.NewNoop())
	if _, err := stage.Execute(context.Background(), pipeline.ConvertInput{Source: "x"}); err == nil {
		t.Error("expected error without output")
	}
}
