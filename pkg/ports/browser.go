package ports

import "context"

// Browser abstracts a headless browser that runs a frame-producing page.
type Browser interface {
	// Launch starts the browser with the given options.
	Launch(ctx context.Context, opts BrowserOptions) error

	// Navigate loads the specified URL.
	Navigate(url string) error

	// Evaluate runs a script in the page and stores its result in res.
	Evaluate(script string, res interface{}) error

	// Close shuts down the browser.
	Close() error
}

// BrowserOptions configures browser launch settings.
type BrowserOptions struct {
	Headless     bool
	ChromePath   string
	WindowWidth  int
	WindowHeight int
}
