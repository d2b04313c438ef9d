// Package progress prints frame progress of a running capture.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/user/mixrender/pkg/ports"
)

// Console writes "Rendering: 12.34% (n/N)" lines. On a terminal the line
// is redrawn in place; otherwise one line is written per report.
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	inline bool
	label  string
	wrote  bool
}

// NewConsole reports to stderr.
func NewConsole(label string) *Console {
	return &Console{
		out:    os.Stderr,
		inline: isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()),
		label:  label,
	}
}

// NewWriter reports to w, one line per report.
func NewWriter(label string, w io.Writer) *Console {
	return &Console{out: w, label: label}
}

// Report prints the progress line.
func (c *Console) Report(done, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.wrote = true
	line := Format(c.label, done, total)
	if c.inline {
		fmt.Fprintf(c.out, "\r\033[K%s", line)
		return
	}
	fmt.Fprintln(c.out, line)
}

// Done ends the progress line.
func (c *Console) Done() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inline && c.wrote {
		fmt.Fprintln(c.out)
	}
}

// Format renders one progress line. Without a known total only the
// frame count is shown.
func Format(label string, done, total int) string {
	if total <= 0 {
		return fmt.Sprintf("%s: %d frames", label, done)
	}
	pct := float64(done) / float64(total) * 100
	return fmt.Sprintf("%s: %.2f%% (%d/%d)", label, pct, done, total)
}

// Noop discards progress.
type Noop struct{}

// NewNoop returns a reporter that does nothing.
func NewNoop() Noop { return Noop{} }

func (Noop) Report(done, total int) {}
func (Noop) Done()                  {}

var (
	_ ports.ProgressReporter = (*Console)(nil)
	_ ports.ProgressReporter = Noop{}
)
