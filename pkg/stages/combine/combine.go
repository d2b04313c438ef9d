// Package combine implements the final mux: the encoded video stream is
// copied and the audio streams are mixed, limited and encoded to AAC.
package combine

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/user/mixrender/pkg/adapters/codecdetect"
	"github.com/user/mixrender/pkg/pipeline"
	"github.com/user/mixrender/pkg/ports"
)

// DefaultBitrate is the AAC bitrate when the input leaves it unset.
const DefaultBitrate = "192k"

const limiterFilter = "alimiter=limit=1.0:level=false:attack=0.1:release=1"

// Stage muxes video and audio into the final file.
type Stage struct {
	runner ports.ProcessRunner
	fs     ports.FileSystem
	sink   ports.DebugSink
	logger ports.Logger
}

// NewStage creates a new combine stage.
func NewStage(runner ports.ProcessRunner, fs ports.FileSystem, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		runner: runner,
		fs:     fs,
		sink:   sink,
		logger: logger.WithComponent("combine"),
	}
}

// Execute runs the combine and inspects the written file.
func (s *Stage) Execute(ctx context.Context, input pipeline.CombineInput) (pipeline.CombineResult, error) {
	result := pipeline.CombineResult{}

	args, err := Args(input)
	if err != nil {
		return result, err
	}
	if s.sink.Enabled() {
		s.sink.SaveCommand("combine", args)
	}

	s.logger.Info("Combining %s with %d audio streams into %s", input.Video, len(input.Audio), input.Output)
	if err := s.runner.Run(ctx, args); err != nil {
		return result, fmt.Errorf("combine streams: %w", err)
	}

	result.Output = input.Output

	info, size, err := s.inspect(input.Output)
	result.FileSize = size
	if err != nil {
		s.logger.Warn("Could not inspect %s: %v", input.Output, err)
		return result, nil
	}

	result.Tracks = len(info.Tracks)
	result.HasVideo = info.HasVideo()
	result.HasAudio = info.HasAudio()
	result.AudioCodec = info.AudioCodec()
	result.DurationSeconds = info.DurationSeconds()

	if !result.HasAudio {
		s.logger.Warn("%s has no audio track", input.Output)
	}
	return result, nil
}

// inspect reads the size and track table of the written file. The size is
// reported even when the track table cannot be parsed.
func (s *Stage) inspect(path string) (codecdetect.MediaInfo, int64, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return codecdetect.MediaInfo{}, 0, err
	}
	defer f.Close()

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return codecdetect.MediaInfo{}, 0, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return codecdetect.MediaInfo{}, size, err
	}

	info, err := codecdetect.InspectReader(f)
	return info, size, err
}

// Args builds the combine invocation. Paths are passed as separate
// arguments, so they may contain spaces.
func Args(input pipeline.CombineInput) ([]string, error) {
	switch {
	case input.Video == "":
		return nil, fmt.Errorf("combine needs a video input")
	case len(input.Audio) == 0:
		return nil, fmt.Errorf("combine needs at least one audio input")
	case input.Output == "":
		return nil, fmt.Errorf("combine needs an output path")
	}

	args := []string{"-y", "-i", input.Video}
	for _, a := range input.Audio {
		if a.Path == "" {
			return nil, fmt.Errorf("audio input without a path")
		}
		args = append(args, "-i", a.Path)
	}

	args = append(args, "-map", "0:v:0")
	if graph := FilterGraph(input.Audio, input.Normalize, input.Limiter); graph != "" {
		args = append(args, "-filter_complex", graph, "-map", "[a]")
	} else {
		args = append(args, "-map", "1:a:0")
	}

	bitrate := input.Bitrate
	if bitrate == "" {
		bitrate = DefaultBitrate
	}
	return append(args,
		"-b:a", bitrate,
		"-c:a", "aac",
		"-c:v", "copy",
		"-movflags", "+faststart",
		input.Output,
	), nil
}

// FilterGraph builds the audio filter graph labelled [a]. Input 1 is the
// primary stream; every later stream is delayed and scaled before the
// mix. A single stream without limiter needs no graph and yields "".
func FilterGraph(audio []pipeline.AudioInput, normalize, limiter bool) string {
	if len(audio) == 0 || (len(audio) == 1 && !limiter) {
		return ""
	}

	var parts []string
	var mixIn strings.Builder
	mixIn.WriteString("[1:a]")

	for i := 1; i < len(audio); i++ {
		label := fmt.Sprintf("[s%d]", i)
		delay := audio[i].DelayMs
		if delay < 0 {
			delay = 0
		}
		parts = append(parts, fmt.Sprintf("[%d:a]adelay=%d|%d,volume=%s%s",
			i+1, delay, delay, formatGain(audio[i].Gain), label))
		mixIn.WriteString(label)
	}

	var filters []string
	if len(audio) > 1 {
		filters = append(filters, fmt.Sprintf("amix=inputs=%d:normalize=%d", len(audio), boolInt(normalize)))
	}
	if limiter {
		filters = append(filters, limiterFilter)
	}

	parts = append(parts, mixIn.String()+strings.Join(filters, ",")+"[a]")
	return strings.Join(parts, ";")
}

// formatGain renders a linear gain. Zero or negative means unity.
func formatGain(g float64) string {
	if g <= 0 {
		g = 1
	}
	return strconv.FormatFloat(g, 'f', -1, 64)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
