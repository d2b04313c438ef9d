// Package mixdown implements the offline audio mix stage: decode sounds,
// lay them on the timeline and write the result as a float WAV.
package mixdown

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/user/mixrender/pkg/adapters/ffmpeg"
	"github.com/user/mixrender/pkg/mixer"
	"github.com/user/mixrender/pkg/pipeline"
	"github.com/user/mixrender/pkg/ports"
	"github.com/user/mixrender/pkg/soundstore"
)

// chunkFrames is the number of frames per encoder write.
const chunkFrames = 4096

// Loader decodes sound assets into tracks.
type Loader interface {
	Load(ctx context.Context, assets []soundstore.Asset) (map[string]*soundstore.Track, error)
}

// Stage renders a timeline to a WAV file.
type Stage struct {
	loader Loader
	runner ports.ProcessRunner
	sink   ports.DebugSink
	logger ports.Logger
}

// NewStage creates a new mixdown stage.
func NewStage(loader Loader, runner ports.ProcessRunner, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		loader: loader,
		runner: runner,
		sink:   sink,
		logger: logger.WithComponent("mixdown"),
	}
}

// Execute mixes the input and writes it to input.Output.
func (s *Stage) Execute(ctx context.Context, input pipeline.MixdownInput) (pipeline.MixdownResult, error) {
	result := pipeline.MixdownResult{}

	if input.Output == "" {
		return result, fmt.Errorf("no output path for mixdown")
	}

	tracks, err := s.loader.Load(ctx, input.Sounds)
	if err != nil {
		return result, fmt.Errorf("load sounds: %w", err)
	}
	s.logger.Debug("Decoded %d sounds", len(tracks))

	buf, err := mixer.Mix(tracks, input.Events, input.Duration, input.Options)
	if err != nil {
		return result, fmt.Errorf("mix: %w", err)
	}
	if clipped := buf.Clipped(); clipped > 0 {
		s.logger.Warn("%d samples exceed full scale (peak %.3f)", clipped, buf.Peak())
	}

	s.saveDebug(input, tracks, buf)

	if err := ctx.Err(); err != nil {
		return result, err
	}

	args := ffmpeg.MixdownArgs(buf.SampleRate, buf.Channels, input.Output)
	if s.sink.Enabled() {
		s.sink.SaveCommand("mixdown", args)
	}
	if err := s.encode(ctx, buf, args); err != nil {
		return result, err
	}

	s.logger.Info("Mixed %d events into %s (%.2fs)", len(input.Events), input.Output, buf.Seconds())

	result.Output = input.Output
	result.Sounds = len(tracks)
	result.Events = len(input.Events)
	result.Frames = buf.Frames()
	result.Duration = buf.Seconds()
	result.Peak = buf.Peak()
	result.Clipped = buf.Clipped()
	result.Gain = buf.Gain
	return result, nil
}

// encode streams the buffer into the mixdown encoder.
func (s *Stage) encode(ctx context.Context, buf *mixer.Buffer, args []string) error {
	proc, err := s.runner.Start(ctx, args)
	if err != nil {
		return fmt.Errorf("start mixdown encoder: %w", err)
	}

	err = buf.WriteChunks(chunkFrames, func(p []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return proc.Write(p)
	})
	if err != nil {
		proc.Kill()
		proc.Finish()
		return fmt.Errorf("write mix: %w", err)
	}

	if err := proc.Finish(); err != nil {
		return fmt.Errorf("mixdown encoder: %w", err)
	}
	return nil
}

type soundReport struct {
	Key     string  `json:"key"`
	Frames  int     `json:"frames"`
	Seconds float64 `json:"seconds"`
}

type mixReport struct {
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"`
	Duration   float64       `json:"duration"`
	Frames     int           `json:"frames"`
	Peak       float32       `json:"peak"`
	Clipped    int           `json:"clipped"`
	Gain       float32       `json:"gain"`
	Sounds     []soundReport `json:"sounds"`
	Events     []mixer.Event `json:"events"`
}

func (s *Stage) saveDebug(input pipeline.MixdownInput, tracks map[string]*soundstore.Track, buf *mixer.Buffer) {
	if !s.sink.Enabled() {
		return
	}

	report := mixReport{
		SampleRate: buf.SampleRate,
		Channels:   buf.Channels,
		Duration:   input.Duration,
		Frames:     buf.Frames(),
		Peak:       buf.Peak(),
		Clipped:    buf.Clipped(),
		Gain:       buf.Gain,
		Events:     input.Events,
	}
	for _, asset := range input.Sounds {
		if t, ok := tracks[asset.Key]; ok {
			report.Sounds = append(report.Sounds, soundReport{Key: t.Key, Frames: t.Frames(), Seconds: t.Seconds()})
		}
	}
	if data, err := json.MarshalIndent(report, "", "  "); err == nil {
		s.sink.SaveMixJSON(data)
	}

	var pcm bytes.Buffer
	if _, err := buf.WriteTo(&pcm); err == nil {
		s.sink.SaveMixPCM(pcm.Bytes())
	}
}
