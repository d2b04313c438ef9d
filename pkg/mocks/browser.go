package mocks

import (
	"context"

	"github.com/user/mixrender/pkg/ports"
)

// Browser is a mock implementation of ports.Browser.
type Browser struct {
	LaunchFunc   func(ctx context.Context, opts ports.BrowserOptions) error
	NavigateFunc func(url string) error
	EvaluateFunc func(script string, res interface{}) error

	// Recorded calls for verification
	LaunchOpts    ports.BrowserOptions
	NavigatedURLs []string
	Scripts       []string
	Closed        bool
}

func (m *Browser) Launch(ctx context.Context, opts ports.BrowserOptions) error {
	m.LaunchOpts = opts
	if m.LaunchFunc != nil {
		return m.LaunchFunc(ctx, opts)
	}
	return nil
}

func (m *Browser) Navigate(url string) error {
	m.NavigatedURLs = append(m.NavigatedURLs, url)
	if m.NavigateFunc != nil {
		return m.NavigateFunc(url)
	}
	return nil
}

func (m *Browser) Evaluate(script string, res interface{}) error {
	m.Scripts = append(m.Scripts, script)
	if m.EvaluateFunc != nil {
		return m.EvaluateFunc(script, res)
	}
	return nil
}

func (m *Browser) Close() error {
	m.Closed = true
	return nil
}

var _ ports.Browser = (*Browser)(nil)
