package main

import (
	"fmt"
	"strings"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/mixrender/pkg/adapters/ffmpeg"
	"github.com/user/mixrender/pkg/config"
	"github.com/user/mixrender/pkg/orchestrator"
	"github.com/user/mixrender/pkg/pipeline"
	"github.com/user/mixrender/pkg/session"
	"github.com/user/mixrender/pkg/summarizer"
)

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     l10n.T("Render a job file: mix audio, capture frames and combine them"),
		ArgsUsage: "JOB",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: l10n.T("Override the output path of the job")},
			&cli.BoolFlag{Name: "keep", Usage: l10n.T("Keep the intermediate mix and video files")},
			&cli.StringFlag{Name: "summary", Usage: l10n.T("Output execution summary to file (Markdown, or JSON/YAML by extension)")},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit(l10n.T("A job file argument is required"), 2)
			}
			e, err := newEnv(c)
			if err != nil {
				return err
			}

			job, err := config.LoadJob(c.Args().First())
			if err != nil {
				return err
			}
			if c.IsSet("output") {
				job.Output = c.String("output")
			}
			if c.Bool("keep") {
				job.KeepIntermediate = true
			}

			oc, err := e.cfg.ToOrchestratorConfig(job)
			if err != nil {
				return err
			}
			oc.Producer = e.producer(job.ProducerURL, job.TestPattern, oc.Video.Width, oc.Video.Height, oc.Video.ExpectedFrames)

			mixStage, err := e.mixdownStage(c.Context)
			if err != nil {
				return err
			}
			captureStage, err := e.captureStage(c.Context)
			if err != nil {
				return err
			}
			combineStage, err := e.combineStage(c.Context)
			if err != nil {
				return err
			}

			orch := orchestrator.New(mixStage, captureStage, combineStage, e.fs, e.log.WithComponent("render"))
			result, err := orch.Run(c.Context, oc)
			if err != nil {
				return err
			}
			e.log.Info("Output saved to %s", result.Output)

			if path := c.String("summary"); path != "" {
				w := summarizer.NewWriter(summarizer.ForPath(path, summarizer.WithVersion(version)), e.fs)
				if err := w.Write(path, buildSummary(oc, result)); err != nil {
					e.log.Warn("Failed to write summary: %s", err)
				} else {
					e.log.Info("Summary saved to %s", path)
				}
			}
			return nil
		},
	}
}

func mixCommand() *cli.Command {
	return &cli.Command{
		Name:      "mix",
		Usage:     l10n.T("Mix the sound events of a job file into a float WAV"),
		ArgsUsage: "JOB",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: l10n.T("Output WAV path (default: derived from the job output)")},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit(l10n.T("A job file argument is required"), 2)
			}
			e, err := newEnv(c)
			if err != nil {
				return err
			}
			job, err := config.LoadJob(c.Args().First())
			if err != nil {
				return err
			}
			oc, err := e.cfg.ToOrchestratorConfig(job)
			if err != nil {
				return err
			}
			output := oc.MixOutput
			if c.IsSet("output") {
				output = c.String("output")
			}

			stage, err := e.mixdownStage(c.Context)
			if err != nil {
				return err
			}
			res, err := stage.Execute(c.Context, pipeline.MixdownInput{
				Sounds:   oc.Sounds,
				Events:   oc.Events,
				Duration: oc.Duration,
				Options:  oc.Mix,
				Output:   output,
			})
			if err != nil {
				return err
			}
			e.log.Info("Mix saved to %s: %d events, peak %.3f", res.Output, res.Events, res.Peak)
			return nil
		},
	}
}

func captureFlags(defaultDuration float64) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: l10n.T("Output MP4 file path (required)")},
		&cli.StringFlag{Name: "resolution", Aliases: []string{"r"}, Usage: l10n.T("Frame size as WIDTHxHEIGHT")},
		&cli.IntFlag{Name: "fps", Usage: l10n.T("Frames per second")},
		&cli.Float64Flag{Name: "duration", Value: defaultDuration, Usage: l10n.T("Expected duration in seconds (0 = unknown)")},
		&cli.StringFlag{Name: "codec", Usage: l10n.T("Video encoder name")},
		&cli.StringFlag{Name: "bitrate", Usage: l10n.T("Video bitrate (e.g. 8M)")},
		&cli.BoolFlag{Name: "vflip", Usage: l10n.T("Flip frames vertically")},
		&cli.StringFlag{Name: "listen", Usage: l10n.T("Frame socket address")},
		&cli.IntFlag{Name: "timeout", Usage: l10n.T("Seconds without frames before the capture ends")},
		&cli.IntFlag{Name: "connect-timeout", Usage: l10n.T("Seconds to wait for a producer to connect (0 = no limit)")},
	}
}

func recordCommand() *cli.Command {
	flags := captureFlags(0)
	flags = append(flags,
		&cli.StringFlag{Name: "producer-url", Usage: l10n.T("Page that renders and streams frames (opened in headless Chrome)")},
		&cli.StringFlag{Name: "chrome-path", Usage: l10n.T("Path to Chrome executable")},
		&cli.BoolFlag{Name: "no-headless", Usage: l10n.T("Run browser in non-headless mode")},
	)
	return &cli.Command{
		Name:   "record",
		Usage:  l10n.T("Encode frames streamed to the frame socket into a video"),
		Flags:  flags,
		Action: func(c *cli.Context) error { return runCapture(c, false) },
	}
}

func testPatternCommand() *cli.Command {
	return &cli.Command{
		Name:   "testpattern",
		Usage:  l10n.T("Encode a generated test pattern to check the encoder setup"),
		Flags:  captureFlags(5),
		Action: func(c *cli.Context) error { return runCapture(c, true) },
	}
}

func runCapture(c *cli.Context, testPattern bool) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}

	cfg := e.cfg
	if c.IsSet("resolution") {
		w, h, err := config.ParseResolution(c.String("resolution"))
		if err != nil {
			return err
		}
		cfg.Video.Width, cfg.Video.Height = w, h
	}
	if c.IsSet("fps") {
		cfg.Video.FPS = c.Int("fps")
	}
	if c.IsSet("codec") {
		cfg.Video.Codec = c.String("codec")
	}
	if c.IsSet("bitrate") {
		cfg.Video.Bitrate = c.String("bitrate")
	}
	if c.Bool("vflip") {
		cfg.Video.VFlip = true
	}
	if c.IsSet("listen") {
		cfg.Listen = c.String("listen")
	}
	if c.IsSet("timeout") {
		cfg.InactivityTimeoutSec = c.Int("timeout")
	}
	if c.IsSet("connect-timeout") {
		cfg.ConnectTimeoutSec = c.Int("connect-timeout")
	}
	if c.IsSet("chrome-path") {
		cfg.Browser.ChromePath = c.String("chrome-path")
	}
	if c.Bool("no-headless") {
		cfg.Browser.Headless = false
	}
	e.cfg = cfg

	spec := session.Spec{
		VideoOptions:   cfg.VideoOptions(c.String("output")),
		ExpectedFrames: int(c.Float64("duration") * float64(cfg.Video.FPS)),
	}
	if testPattern && spec.ExpectedFrames <= 0 {
		return cli.Exit(l10n.T("The test pattern needs a positive duration"), 2)
	}

	stage, err := e.captureStage(c.Context)
	if err != nil {
		return err
	}
	res, err := stage.Execute(c.Context, pipeline.CaptureInput{
		Video:    spec,
		Ingest:   cfg.IngestConfig(),
		Producer: e.producer(c.String("producer-url"), testPattern, spec.Width, spec.Height, spec.ExpectedFrames),
	})
	if err != nil {
		return err
	}
	e.log.Info("Captured %d frames to %s (%s)", res.Frames, res.Output, res.Reason)
	return nil
}

func combineCommand() *cli.Command {
	return &cli.Command{
		Name:  "combine",
		Usage: l10n.T("Mux a video with one or more audio files"),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "video", Required: true, Usage: l10n.T("Input video file")},
			&cli.StringSliceFlag{Name: "audio", Aliases: []string{"a"}, Usage: l10n.T("Audio file; the first is used unmodified")},
			&cli.StringSliceFlag{Name: "music", Aliases: []string{"m"}, Usage: l10n.T("Music bed, delayed and scaled by --music-delay and --music-gain")},
			&cli.Float64Flag{Name: "music-gain", Usage: l10n.T("Linear gain of music beds")},
			&cli.IntFlag{Name: "music-delay", Usage: l10n.T("Delay of music beds in milliseconds")},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: l10n.T("Output MP4 file path (required)")},
			&cli.StringFlag{Name: "bitrate", Usage: l10n.T("AAC bitrate (e.g. 192k)")},
			&cli.BoolFlag{Name: "normalize", Usage: l10n.T("Let amix normalize the input levels")},
			&cli.BoolFlag{Name: "no-limiter", Usage: l10n.T("Disable the output peak limiter")},
		},
		Action: func(c *cli.Context) error {
			e, err := newEnv(c)
			if err != nil {
				return err
			}

			gain, delay := e.cfg.Combine.MusicGain, e.cfg.Combine.MusicDelayMs
			if c.IsSet("music-gain") {
				gain = c.Float64("music-gain")
			}
			if c.IsSet("music-delay") {
				delay = c.Int("music-delay")
			}
			audio := audioInputs(c.StringSlice("audio"), c.StringSlice("music"), gain, delay)
			if len(audio) == 0 {
				return cli.Exit(l10n.T("At least one --audio or --music file is required"), 2)
			}

			input := pipeline.CombineInput{
				Video:     c.String("video"),
				Audio:     audio,
				Output:    c.String("output"),
				Bitrate:   e.cfg.Combine.AudioBitrate,
				Normalize: e.cfg.Combine.Normalize || c.Bool("normalize"),
				Limiter:   e.cfg.Combine.Limiter && !c.Bool("no-limiter"),
			}
			if c.IsSet("bitrate") {
				input.Bitrate = c.String("bitrate")
			}

			stage, err := e.combineStage(c.Context)
			if err != nil {
				return err
			}
			res, err := stage.Execute(c.Context, input)
			if err != nil {
				return err
			}
			e.log.Info("Output saved to %s (%d tracks, %.2fs)", res.Output, res.Tracks, res.DurationSeconds)
			return nil
		},
	}
}

// audioInputs lists primary audio files unmodified, then music beds with
// the shared gain and delay.
func audioInputs(primary, music []string, gain float64, delayMs int) []pipeline.AudioInput {
	var out []pipeline.AudioInput
	for _, p := range primary {
		out = append(out, pipeline.AudioInput{Path: p})
	}
	for _, p := range music {
		out = append(out, pipeline.AudioInput{Path: p, Gain: gain, DelayMs: delayMs})
	}
	return out
}

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     l10n.T("Convert an audio file to a float WAV"),
		ArgsUsage: "INPUT OUTPUT",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "sample-rate", Usage: l10n.T("Output sample rate (default: 44100)")},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit(l10n.T("Input and output arguments are required"), 2)
			}
			e, err := newEnv(c)
			if err != nil {
				return err
			}
			rate := e.cfg.SampleRate
			if c.IsSet("sample-rate") {
				rate = c.Int("sample-rate")
			}

			stage, err := e.convertStage(c.Context)
			if err != nil {
				return err
			}
			res, err := stage.Execute(c.Context, pipeline.ConvertInput{
				Source:     c.Args().Get(0),
				Output:     c.Args().Get(1),
				SampleRate: rate,
			})
			if err != nil {
				return err
			}
			e.log.Info("Output saved to %s", res.Output)
			return nil
		},
	}
}

func encodersCommand() *cli.Command {
	return &cli.Command{
		Name:  "encoders",
		Usage: l10n.T("List the encoders of the resolved ffmpeg"),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "kind", Value: "video", Usage: l10n.T("Encoder kind (video, audio, subtitle, all)")},
		},
		Action: func(c *cli.Context) error {
			e, err := newEnv(c)
			if err != nil {
				return err
			}
			runner, err := e.ffmpeg(c.Context)
			if err != nil {
				return err
			}
			encoders, err := runner.Encoders(c.Context)
			if err != nil {
				return err
			}
			if kind := strings.ToLower(c.String("kind")); kind != "all" {
				encoders = ffmpeg.FilterKind(encoders, ffmpeg.Kind(kind))
			}
			fmt.Print(formatEncoders(encoders))
			return nil
		},
	}
}

func formatEncoders(encoders []ffmpeg.Encoder) string {
	var b strings.Builder
	for _, enc := range encoders {
		name := enc.Name
		if enc.Experimental {
			name += "*"
		}
		fmt.Fprintf(&b, "%-24s %-8s %-12s %s\n", name, enc.Kind, enc.Codec, enc.Description)
	}
	return b.String()
}

// buildSummary collects a render result for the Markdown summary.
func buildSummary(oc orchestrator.Config, r orchestrator.RunResult) *summarizer.Summary {
	b := summarizer.NewBuilder().
		WithOutput(r.Output, r.ElapsedMs).
		WithAudio(summarizer.AudioInfo{
			Sounds:          r.Sounds,
			Events:          r.Events,
			MusicTracks:     len(oc.Music),
			DurationSeconds: r.MixSeconds,
			Peak:            r.MixPeak,
			ClippedSamples:  r.MixClipped,
		}).
		WithSettings(summarizer.Settings{
			Width:        oc.Video.Width,
			Height:       oc.Video.Height,
			FPS:          oc.Video.FPS,
			Codec:        oc.Video.Codec,
			Bitrate:      oc.Video.Bitrate,
			SampleRate:   oc.Mix.SampleRate,
			Channels:     oc.Mix.Channels,
			AudioBitrate: oc.AudioBitrate,
			Normalize:    oc.NormalizeMix,
			Limiter:      oc.Limiter,
		}).
		WithVideo(summarizer.VideoInfo{
			Tracks:          r.Tracks,
			AudioCodec:      r.AudioCodec,
			DurationSeconds: r.DurationSeconds,
			FileSize:        r.FileSize,
		})

	if oc.VideoInput != "" {
		b.WithReusedVideo()
	} else {
		b.WithCapture(r.Frames, oc.Video.ExpectedFrames, r.CaptureReason, r.CaptureMs)
	}
	return b.Build()
}
