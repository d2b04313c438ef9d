// Package main provides the CLI entry point for mixrender.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, l10n.T("Interrupted, shutting down..."))
		cancel()
	}()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, l10n.F("Error: %s", err))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "mixrender",
		Usage:   l10n.T("Mix timed sound events and encode streamed frames into a finished video"),
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    l10n.T("Settings file (YAML)"),
				EnvVars:  []string{"MIXRENDER_CONFIG"},
				Category: l10n.T("Settings"),
			},
			&cli.StringFlag{
				Name:     "ffmpeg",
				Usage:    l10n.T("Path to the ffmpeg binary, used when no working system ffmpeg is found"),
				Category: l10n.T("Settings"),
			},
			&cli.StringFlag{
				Name:     "log-level",
				Aliases:  []string{"l"},
				Value:    "info",
				Usage:    l10n.T("Log level (debug, info, warn, error)"),
				Category: l10n.T("Logging"),
			},
			&cli.BoolFlag{
				Name:     "quiet",
				Aliases:  []string{"q"},
				Usage:    l10n.T("Suppress all log output"),
				Category: l10n.T("Logging"),
			},
			&cli.BoolFlag{
				Name:     "debug",
				Aliases:  []string{"d"},
				Usage:    l10n.T("Enable debug output"),
				Category: l10n.T("Debug"),
			},
			&cli.StringFlag{
				Name:     "debug-dir",
				Value:    "./debug",
				Usage:    l10n.T("Directory for debug output"),
				Category: l10n.T("Debug"),
			},
		},
		Commands: []*cli.Command{
			renderCommand(),
			mixCommand(),
			recordCommand(),
			combineCommand(),
			convertCommand(),
			encodersCommand(),
			testPatternCommand(),
			{
				Name:  "version",
				Usage: l10n.T("Show version information"),
				Action: func(c *cli.Context) error {
					fmt.Println(l10n.F("mixrender version %s", version))
					return nil
				},
			},
		},
	}
}
