package chromebrowser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/user/mixrender/pkg/ports"
)

// SocketParam is the query parameter carrying the frame socket URL.
const SocketParam = "socket"

// StatusScript reads the page's progress flag. Pages set
// window.mixrenderStatus to "finished" after the server replied to
// "finish", or to "error: <message>" when they give up.
const StatusScript = `String(window.mixrenderStatus || "")`

// ErrPageFailed is returned when the page reports an error status.
var ErrPageFailed = errors.New("page reported an error")

// PageProducer renders frames in a web page that streams them to the
// frame socket itself.
type PageProducer struct {
	browser      ports.Browser
	pageURL      string
	opts         ports.BrowserOptions
	pollInterval time.Duration
	logger       ports.Logger
}

// NewPageProducer creates a producer that opens pageURL in browser.
func NewPageProducer(browser ports.Browser, pageURL string, opts ports.BrowserOptions, logger ports.Logger) *PageProducer {
	return &PageProducer{
		browser:      browser,
		pageURL:      pageURL,
		opts:         opts,
		pollInterval: 250 * time.Millisecond,
		logger:       logger.WithComponent("page"),
	}
}

// PageURL returns pageURL with the socket parameter set.
func PageURL(pageURL, socketURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL: %w", err)
	}
	q := u.Query()
	q.Set(SocketParam, socketURL)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Produce launches the browser, opens the page and waits until it reports
// a final status or ctx ends.
func (p *PageProducer) Produce(ctx context.Context, socketURL string) error {
	target, err := PageURL(p.pageURL, socketURL)
	if err != nil {
		return err
	}

	if err := p.browser.Launch(ctx, p.opts); err != nil {
		return err
	}
	defer p.browser.Close()

	p.logger.Info("Opening %s", target)
	if err := p.browser.Navigate(target); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()
	for {
		var status string
		if err := p.browser.Evaluate(StatusScript, &status); err != nil {
			return fmt.Errorf("read page status: %w", err)
		}
		switch {
		case status == "finished":
			p.logger.Debug("Page finished streaming")
			return nil
		case strings.HasPrefix(status, "error"):
			return fmt.Errorf("%w: %s", ErrPageFailed, strings.TrimSpace(strings.TrimPrefix(status, "error:")))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

var _ ports.FrameProducer = (*PageProducer)(nil)
