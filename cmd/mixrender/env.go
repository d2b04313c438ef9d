package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/mixrender/pkg/adapters/audiodecoder"
	"github.com/user/mixrender/pkg/adapters/chromebrowser"
	"github.com/user/mixrender/pkg/adapters/ffmpeg"
	"github.com/user/mixrender/pkg/adapters/filesink"
	"github.com/user/mixrender/pkg/adapters/ggrenderer"
	"github.com/user/mixrender/pkg/adapters/logger"
	"github.com/user/mixrender/pkg/adapters/nullsink"
	"github.com/user/mixrender/pkg/adapters/osfilesystem"
	"github.com/user/mixrender/pkg/adapters/progress"
	"github.com/user/mixrender/pkg/config"
	"github.com/user/mixrender/pkg/ports"
	"github.com/user/mixrender/pkg/session"
	"github.com/user/mixrender/pkg/soundstore"
	"github.com/user/mixrender/pkg/stages/capture"
	"github.com/user/mixrender/pkg/stages/combine"
	"github.com/user/mixrender/pkg/stages/convert"
	"github.com/user/mixrender/pkg/stages/mixdown"
)

// env holds what every command shares: settings, logger, filesystem and
// the encoder binary, resolved on first use.
type env struct {
	cfg   config.Config
	log   ports.Logger
	fs    *osfilesystem.FileSystem
	quiet bool

	runner *ffmpeg.Runner
	debug  ports.DebugSink
}

// newEnv builds the env from the config file, the environment and the
// global flags, in that order of precedence (flags win).
func newEnv(c *cli.Context) (*env, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("ffmpeg") {
		cfg.FFmpegPath = c.String("ffmpeg")
	}
	if c.Bool("debug") {
		cfg.Debug = true
	}
	if c.IsSet("debug-dir") {
		cfg.DebugDir = c.String("debug-dir")
	}

	e := &env{cfg: cfg, fs: osfilesystem.New(), quiet: c.Bool("quiet")}
	if e.quiet {
		e.log = logger.NewNoop()
	} else {
		e.log = logger.NewConsole(ports.ParseLogLevel(cfg.LogLevel))
	}
	return e, nil
}

// ffmpeg resolves the encoder once per process.
func (e *env) ffmpeg(ctx context.Context) (*ffmpeg.Runner, error) {
	if e.runner != nil {
		return e.runner, nil
	}
	resolver := &ffmpeg.Resolver{FS: e.fs, Logger: e.log}
	path, err := resolver.Resolve(ctx, e.cfg.FFmpegPath)
	if err != nil {
		return nil, err
	}
	e.runner = ffmpeg.NewRunner(path, e.log.WithComponent("ffmpeg"))
	return e.runner, nil
}

func (e *env) sink() (ports.DebugSink, error) {
	if e.debug != nil {
		return e.debug, nil
	}
	if !e.cfg.Debug {
		e.debug = nullsink.New()
		return e.debug, nil
	}
	if err := e.fs.MkdirAll(e.cfg.DebugDir); err != nil {
		return nil, fmt.Errorf("create debug directory: %w", err)
	}
	e.log.Info("Debug output in %s", e.cfg.DebugDir)
	e.debug = filesink.New(e.cfg.DebugDir, e.fs, ggrenderer.New())
	return e.debug, nil
}

func (e *env) progress() ports.ProgressReporter {
	if e.quiet {
		return progress.NewNoop()
	}
	return progress.NewConsole(l10n.T("Rendering"))
}

func (e *env) mixdownStage(ctx context.Context) (*mixdown.Stage, error) {
	runner, err := e.ffmpeg(ctx)
	if err != nil {
		return nil, err
	}
	sink, err := e.sink()
	if err != nil {
		return nil, err
	}
	decoder := audiodecoder.New(runner, e.cfg.SampleRate, e.cfg.Channels, e.log.WithComponent("decoder"))
	store := soundstore.New(e.fs, decoder, e.log.WithComponent("sounds"), e.cfg.SampleRate, e.cfg.Channels)
	return mixdown.NewStage(store, runner, sink, e.log.WithComponent("mixdown")), nil
}

func (e *env) captureStage(ctx context.Context) (*capture.Stage, error) {
	runner, err := e.ffmpeg(ctx)
	if err != nil {
		return nil, err
	}
	sink, err := e.sink()
	if err != nil {
		return nil, err
	}
	sessions := session.NewManager(runner, e.log.WithComponent("session"))
	return capture.NewStage(sessions, e.progress(), sink, e.log.WithComponent("capture")), nil
}

func (e *env) combineStage(ctx context.Context) (*combine.Stage, error) {
	runner, err := e.ffmpeg(ctx)
	if err != nil {
		return nil, err
	}
	sink, err := e.sink()
	if err != nil {
		return nil, err
	}
	return combine.NewStage(runner, e.fs, sink, e.log.WithComponent("combine")), nil
}

func (e *env) convertStage(ctx context.Context) (*convert.Stage, error) {
	runner, err := e.ffmpeg(ctx)
	if err != nil {
		return nil, err
	}
	return convert.NewStage(runner, e.fs, e.log.WithComponent("convert")), nil
}

// producer picks the frame source: a browser page, the test pattern, or
// nil to wait for an external producer.
func (e *env) producer(pageURL string, testPattern bool, width, height, frames int) ports.FrameProducer {
	switch {
	case pageURL != "":
		browser := chromebrowser.New(e.log)
		return chromebrowser.NewPageProducer(browser, pageURL, ports.BrowserOptions{
			Headless:     e.cfg.Browser.Headless,
			ChromePath:   e.cfg.Browser.ChromePath,
			WindowWidth:  width,
			WindowHeight: height,
		}, e.log)
	case testPattern:
		return ggrenderer.NewProducer(ggrenderer.New(), width, height, frames, e.log)
	}
	return nil
}
