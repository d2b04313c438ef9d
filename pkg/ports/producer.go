package ports

import "context"

// FrameProducer generates video frames and streams them to the frame
// socket at url. Produce returns once the producer has sent "finish" or
// failed.
type FrameProducer interface {
	Produce(ctx context.Context, url string) error
}
