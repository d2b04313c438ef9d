// Package chromebrowser drives a frame-producing web page in headless
// Chrome through chromedp.
package chromebrowser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/user/mixrender/pkg/ports"
)

// Browser implements ports.Browser using chromedp.
type Browser struct {
	logger ports.Logger

	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
}

// New creates a new Browser. Page console output is forwarded to logger.
func New(logger ports.Logger) *Browser {
	return &Browser{logger: logger.WithComponent("browser")}
}

// Launch starts the browser with the given options.
func (b *Browser) Launch(ctx context.Context, opts ports.BrowserOptions) error {
	chromePath := ResolveChromePath(opts.ChromePath)
	if chromePath == "" {
		return fmt.Errorf("chrome not found: install Chrome/Chromium, set CHROME_PATH or use --chrome-path")
	}

	chromedpOpts := []chromedp.ExecAllocatorOption{
		chromedp.ExecPath(chromePath),
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("hide-scrollbars", true),
		// Frame-producing pages must keep rendering while hidden.
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-backgrounding-occluded-windows", true),
	}
	if opts.Headless {
		chromedpOpts = append(chromedpOpts, chromedp.Flag("headless", "new"))
	}
	if opts.WindowWidth > 0 && opts.WindowHeight > 0 {
		chromedpOpts = append(chromedpOpts, chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight))
	}

	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(ctx, chromedpOpts...)
	b.ctx, b.cancel = chromedp.NewContext(b.allocCtx)

	chromedp.ListenTarget(b.ctx, func(ev interface{}) {
		switch e := ev.(type) {
		case *runtime.EventConsoleAPICalled:
			b.logger.Debug("Page console.%s: %s", e.Type, consoleText(e.Args))
		case *runtime.EventExceptionThrown:
			b.logger.Warn("Page exception: %s", e.ExceptionDetails.Text)
		}
	})

	// Starts the browser process.
	if err := chromedp.Run(b.ctx); err != nil {
		b.Close()
		return fmt.Errorf("launch chrome: %w", err)
	}
	return nil
}

// Navigate loads the specified URL.
func (b *Browser) Navigate(url string) error {
	return chromedp.Run(b.ctx, chromedp.Navigate(url))
}

// Evaluate runs a script in the page and stores its result in res.
func (b *Browser) Evaluate(script string, res interface{}) error {
	return chromedp.Run(b.ctx, chromedp.Evaluate(script, res))
}

// Close shuts down the browser.
func (b *Browser) Close() error {
	if b.cancel != nil {
		b.cancel()
	}

	// Give Chrome a moment to shut down gracefully, then force kill
	time.Sleep(100 * time.Millisecond)

	if b.allocCancel != nil {
		b.allocCancel()
	}
	return nil
}

func consoleText(args []*runtime.RemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case len(arg.Value) > 0:
			parts = append(parts, strings.Trim(string(arg.Value), `"`))
		case arg.Description != "":
			parts = append(parts, arg.Description)
		default:
			parts = append(parts, string(arg.Type))
		}
	}
	return strings.Join(parts, " ")
}

// Ensure Browser implements ports.Browser
var _ ports.Browser = (*Browser)(nil)
