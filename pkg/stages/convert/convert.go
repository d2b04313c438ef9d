// Package convert implements audio file conversion to float WAV.
package convert

import (
	"context"
	"fmt"

	"github.com/user/mixrender/pkg/adapters/codecdetect"
	"github.com/user/mixrender/pkg/adapters/ffmpeg"
	"github.com/user/mixrender/pkg/pipeline"
	"github.com/user/mixrender/pkg/ports"
)

// DefaultSampleRate is the output rate when the input leaves it unset.
const DefaultSampleRate = 44100

// Stage converts one audio file.
type Stage struct {
	runner ports.ProcessRunner
	fs     ports.FileSystem
	logger ports.Logger
}

// NewStage creates a new convert stage.
func NewStage(runner ports.ProcessRunner, fs ports.FileSystem, logger ports.Logger) *Stage {
	return &Stage{
		runner: runner,
		fs:     fs,
		logger: logger.WithComponent("convert"),
	}
}

// Execute converts input.Source to a pcm_f32le WAV at input.SampleRate.
func (s *Stage) Execute(ctx context.Context, input pipeline.ConvertInput) (pipeline.ConvertResult, error) {
	result := pipeline.ConvertResult{}

	if input.Source == "" || input.Output == "" {
		return result, fmt.Errorf("convert needs a source and an output path")
	}
	if input.SampleRate <= 0 {
		input.SampleRate = DefaultSampleRate
	}

	data, err := s.fs.ReadFile(input.Source)
	if err != nil {
		return result, fmt.Errorf("read source: %w", err)
	}
	format := codecdetect.Sniff(data)
	if format == codecdetect.FormatUnknown {
		s.logger.Warn("Unrecognized audio container in %s, leaving it to the encoder", input.Source)
	}

	s.logger.Info("Converting %s (%s) to %s", input.Source, format, input.Output)
	if err := s.runner.Run(ctx, ffmpeg.ConvertArgs(input.Source, input.SampleRate, input.Output)); err != nil {
		return result, fmt.Errorf("convert %s: %w", input.Source, err)
	}

	result.Output = input.Output
	result.SourceFormat = string(format)
	return result, nil
}
