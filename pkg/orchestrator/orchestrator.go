// Package orchestrator coordinates the stages of a render job.
//
// The audio mix runs in the background while the video is captured; the
// two meet in the combine stage.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/user/mixrender/pkg/ingest"
	"github.com/user/mixrender/pkg/mixer"
	"github.com/user/mixrender/pkg/pipeline"
	"github.com/user/mixrender/pkg/ports"
	"github.com/user/mixrender/pkg/session"
	"github.com/user/mixrender/pkg/soundstore"
)

// Config contains all configuration for a render job.
type Config struct {
	// Audio timeline
	Sounds    []soundstore.Asset
	Events    []mixer.Event
	Duration  float64 // seconds
	Mix       mixer.Options
	MixOutput string // intermediate float WAV

	// Video capture. VideoInput skips the capture and uses an already
	// encoded file.
	Video      session.Spec
	Ingest     ingest.Config
	Producer   ports.FrameProducer
	VideoInput string

	// Combine
	Music        []pipeline.AudioInput
	Output       string
	AudioBitrate string
	NormalizeMix bool
	Limiter      bool

	// KeepIntermediate leaves the mix WAV and the silent video on disk.
	KeepIntermediate bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Mix:          mixer.DefaultOptions(),
		Ingest:       ingest.DefaultConfig(),
		AudioBitrate: "192k",
		Limiter:      true,
	}
}

// HasAudio reports whether the job has any audio to combine.
func (c Config) HasAudio() bool {
	return len(c.Events) > 0 || len(c.Music) > 0
}

// Orchestrator coordinates the execution of all pipeline stages.
type Orchestrator struct {
	mixdownStage pipeline.Stage[pipeline.MixdownInput, pipeline.MixdownResult]
	captureStage pipeline.Stage[pipeline.CaptureInput, pipeline.CaptureResult]
	combineStage pipeline.Stage[pipeline.CombineInput, pipeline.CombineResult]
	fs           ports.FileSystem
	logger       ports.Logger
}

// New creates a new Orchestrator.
func New(
	mixdownStage pipeline.Stage[pipeline.MixdownInput, pipeline.MixdownResult],
	captureStage pipeline.Stage[pipeline.CaptureInput, pipeline.CaptureResult],
	combineStage pipeline.Stage[pipeline.CombineInput, pipeline.CombineResult],
	fs ports.FileSystem,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		mixdownStage: mixdownStage,
		captureStage: captureStage,
		combineStage: combineStage,
		fs:           fs,
		logger:       logger,
	}
}

// Run executes the complete job.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	started := time.Now()
	result := RunResult{Output: config.Output}

	if config.Output == "" {
		return result, fmt.Errorf("no output path")
	}
	o.logger.Info("Starting render of %s", config.Output)

	// 1. Audio mix in the background
	var mixDone <-chan pipeline.Completion[pipeline.MixdownResult]
	if len(config.Events) > 0 {
		if config.MixOutput == "" {
			return result, fmt.Errorf("no path for the intermediate mix")
		}
		mixDone = pipeline.Go(ctx, o.mixdownStage, pipeline.MixdownInput{
			Sounds:   config.Sounds,
			Events:   config.Events,
			Duration: config.Duration,
			Options:  config.Mix,
			Output:   config.MixOutput,
		})
	}

	// 2. Video capture in the foreground
	video := config.VideoInput
	if video == "" {
		spec := config.Video
		if !config.HasAudio() {
			spec.Output = config.Output
		}
		capture, err := o.captureStage.Execute(ctx, pipeline.CaptureInput{
			Video:    spec,
			Ingest:   config.Ingest,
			Producer: config.Producer,
		})
		if err != nil {
			o.drain(mixDone)
			o.logger.Error("Failed to capture video: %v", err)
			return result, fmt.Errorf("capture stage: %w", err)
		}
		o.logger.Info("Captured %d frames (%s)", capture.Frames, capture.Reason)
		video = capture.Output
		result.Frames = capture.Frames
		result.CaptureReason = string(capture.Reason)
		result.CaptureMs = capture.DurationMs
	}

	// 3. Join the mix
	var audio []pipeline.AudioInput
	if mixDone != nil {
		done := <-mixDone
		if done.Err != nil {
			o.logger.Error("Failed to mix audio: %v", done.Err)
			return result, fmt.Errorf("mixdown stage: %w", done.Err)
		}
		mix := done.Result
		o.logger.Info("Mix ready: %d events, peak %.3f", mix.Events, mix.Peak)
		audio = append(audio, pipeline.AudioInput{Path: mix.Output})
		result.Events = mix.Events
		result.Sounds = mix.Sounds
		result.MixPeak = mix.Peak
		result.MixClipped = mix.Clipped
		result.MixSeconds = mix.Duration
	}
	audio = append(audio, config.Music...)

	if len(audio) == 0 {
		if config.VideoInput != "" {
			return result, fmt.Errorf("nothing to do: no audio to add to %s", config.VideoInput)
		}
		result.ElapsedMs = int(time.Since(started).Milliseconds())
		o.logger.Info("Render completed without audio")
		return result, nil
	}

	// 4. Combine
	combined, err := o.combineStage.Execute(ctx, pipeline.CombineInput{
		Video:     video,
		Audio:     audio,
		Output:    config.Output,
		Bitrate:   config.AudioBitrate,
		Normalize: config.NormalizeMix,
		Limiter:   config.Limiter,
	})
	if err != nil {
		o.logger.Error("Failed to combine streams: %v", err)
		return result, fmt.Errorf("combine stage: %w", err)
	}
	result.Tracks = combined.Tracks
	result.DurationSeconds = combined.DurationSeconds
	result.FileSize = combined.FileSize
	result.AudioCodec = combined.AudioCodec

	// 5. Intermediates
	if !config.KeepIntermediate {
		o.cleanup(config, video)
	}

	result.ElapsedMs = int(time.Since(started).Milliseconds())
	o.logger.Info("Render completed successfully")
	return result, nil
}

// drain waits for a background mix so its encoder is not left running.
func (o *Orchestrator) drain(mixDone <-chan pipeline.Completion[pipeline.MixdownResult]) {
	if mixDone == nil {
		return
	}
	if done := <-mixDone; done.Err != nil {
		o.logger.Debug("Mix ended with: %v", done.Err)
	}
}

func (o *Orchestrator) cleanup(config Config, video string) {
	paths := []string{config.MixOutput}
	if config.VideoInput == "" {
		paths = append(paths, video)
	}
	for _, p := range paths {
		if p == "" || p == config.Output {
			continue
		}
		if err := o.fs.Remove(p); err != nil {
			o.logger.Debug("Could not remove %s: %v", p, err)
		}
	}
}

// RunResult contains the results of a render for summary generation.
type RunResult struct {
	Output string

	// Capture
	Frames        int
	CaptureReason string
	CaptureMs     int

	// Mix
	Sounds     int
	Events     int
	MixPeak    float32
	MixClipped int
	MixSeconds float64

	// Output file
	Tracks          int
	AudioCodec      string
	DurationSeconds float64
	FileSize        int64

	ElapsedMs int
}
