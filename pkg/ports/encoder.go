package ports

import "context"

// EncoderProcess is a running external encoder that consumes raw data on
// its standard input.
type EncoderProcess interface {
	// Write sends bytes to the encoder input and flushes them.
	Write(p []byte) error

	// Finish closes the encoder input and waits for the process to exit.
	// A non-zero exit status is returned as an error.
	Finish() error

	// Kill terminates the process without waiting for it to drain.
	Kill() error
}

// ProcessRunner spawns encoder invocations.
type ProcessRunner interface {
	// Start spawns the encoder with a piped standard input.
	Start(ctx context.Context, args []string) (EncoderProcess, error)

	// Run spawns the encoder with no input and waits for it to exit.
	Run(ctx context.Context, args []string) error
}
