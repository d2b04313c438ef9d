// Package pipeline provides the stage abstraction and the data passed
// between the stages of a render job.
package pipeline

import (
	"context"
)

// Stage represents a processing stage in the pipeline.
// Each stage takes an input and produces an output.
type Stage[In, Out any] interface {
	// Execute runs the stage with the given input and returns the output.
	Execute(ctx context.Context, input In) (Out, error)
}

// StageFunc is a function adapter for Stage interface.
type StageFunc[In, Out any] func(ctx context.Context, input In) (Out, error)

// Execute implements Stage interface.
func (f StageFunc[In, Out]) Execute(ctx context.Context, input In) (Out, error) {
	return f(ctx, input)
}

// Completion is the single outcome of a stage run in the background.
type Completion[Out any] struct {
	Result Out
	Err    error
}

// Go runs stage on its own goroutine. The returned channel delivers
// exactly one Completion and is then closed.
func Go[In, Out any](ctx context.Context, stage Stage[In, Out], input In) <-chan Completion[Out] {
	ch := make(chan Completion[Out], 1)
	go func() {
		defer close(ch)
		out, err := stage.Execute(ctx, input)
		ch <- Completion[Out]{Result: out, Err: err}
	}()
	return ch
}
