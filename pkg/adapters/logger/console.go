// Package logger provides logging implementations.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"

	"github.com/user/mixrender/pkg/ports"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
)

// ConsoleLogger writes translated messages to stdout, or stderr for
// warnings and errors.
type ConsoleLogger struct {
	level     ports.LogLevel
	component string
	color     bool
	out       io.Writer
	errOut    io.Writer
}

// NewConsole creates a console logger at the given level.
// Color output is enabled when stdout is a terminal.
func NewConsole(level ports.LogLevel) *ConsoleLogger {
	fd := os.Stdout.Fd()
	return &ConsoleLogger{
		level:  level,
		color:  isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
		out:    os.Stdout,
		errOut: os.Stderr,
	}
}

// NewWriter creates an uncolored logger writing every level to w.
func NewWriter(level ports.LogLevel, w io.Writer) *ConsoleLogger {
	return &ConsoleLogger{level: level, out: w, errOut: w}
}

// Debug logs a debug message.
func (l *ConsoleLogger) Debug(msg string, args ...interface{}) {
	l.log(ports.LevelDebug, msg, args...)
}

// Info logs an informational message.
func (l *ConsoleLogger) Info(msg string, args ...interface{}) {
	l.log(ports.LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *ConsoleLogger) Warn(msg string, args ...interface{}) {
	l.log(ports.LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *ConsoleLogger) Error(msg string, args ...interface{}) {
	l.log(ports.LevelError, msg, args...)
}

// WithComponent returns a new logger with the specified component name.
func (l *ConsoleLogger) WithComponent(component string) ports.Logger {
	c := *l
	c.component = component
	return &c
}

func (l *ConsoleLogger) log(level ports.LogLevel, msg string, args ...interface{}) {
	if level < l.level {
		return
	}

	line := l10n.F(msg, args...)
	if l.component != "" {
		prefix := "[" + l.component + "]"
		if l.color {
			prefix = colorCyan + prefix + colorReset
		}
		line = prefix + " " + line
	}

	if l.color {
		switch level {
		case ports.LevelDebug:
			line = colorGray + line + colorReset
		case ports.LevelWarn:
			line = colorYellow + line + colorReset
		case ports.LevelError:
			line = colorRed + line + colorReset
		}
	}

	w := l.out
	if level >= ports.LevelWarn {
		w = l.errOut
	}
	fmt.Fprintln(w, line)
}
