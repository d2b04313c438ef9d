// Package capture implements the video capture stage: it starts an encode
// session, opens the frame socket and waits for the producer to finish.
package capture

import (
	"context"
	"fmt"

	"github.com/user/mixrender/pkg/ingest"
	"github.com/user/mixrender/pkg/pipeline"
	"github.com/user/mixrender/pkg/ports"
	"github.com/user/mixrender/pkg/session"
)

// Stage runs one video capture.
type Stage struct {
	sessions *session.Manager
	progress ports.ProgressReporter
	sink     ports.DebugSink
	logger   ports.Logger
}

// NewStage creates a new capture stage.
func NewStage(sessions *session.Manager, progress ports.ProgressReporter, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		sessions: sessions,
		progress: progress,
		sink:     sink,
		logger:   logger,
	}
}

// Execute encodes the frames streamed to the socket into input.Video.Output.
func (s *Stage) Execute(ctx context.Context, input pipeline.CaptureInput) (pipeline.CaptureResult, error) {
	result := pipeline.CaptureResult{}

	sess, err := s.sessions.Start(ctx, input.Video)
	if err != nil {
		return result, fmt.Errorf("start session: %w", err)
	}
	result.SessionID = sess.ID

	var frames ingest.FrameSink = sess
	if s.sink.Enabled() {
		frames = &debugTap{
			Session: sess,
			sink:    s.sink,
			every:   input.Video.FPS,
			width:   input.Video.Width,
			height:  input.Video.Height,
		}
	}

	cfg := input.Ingest
	cfg.ExpectedFrames = input.Video.ExpectedFrames
	srv := ingest.New(cfg, frames, s.progress, s.logger)
	if err := srv.Listen(ctx); err != nil {
		sess.Abort()
		return result, err
	}

	producerCtx, cancelProducer := context.WithCancel(ctx)
	defer cancelProducer()

	var producerDone chan error
	if input.Producer != nil {
		producerDone = make(chan error, 1)
		go func() {
			err := input.Producer.Produce(producerCtx, srv.URL())
			if err != nil {
				srv.Close()
			}
			producerDone <- err
		}()
	}

	<-srv.Done()
	res, _ := srv.Wait(context.Background())

	if producerDone != nil {
		if res.Reason != ingest.ReasonFinish {
			cancelProducer()
		}
		if perr := <-producerDone; perr != nil && res.Err == nil {
			res.Err = fmt.Errorf("producer: %w", perr)
		}
	}

	result.Output = input.Video.Output
	result.Frames = res.Frames
	result.Reason = res.Reason
	result.DurationMs = int(res.Duration.Milliseconds())

	if res.Err != nil {
		return result, fmt.Errorf("capture: %w", res.Err)
	}
	if res.Reason == ingest.ReasonCancelled && ctx.Err() != nil {
		return result, ctx.Err()
	}
	if res.Frames == 0 {
		s.logger.Warn("No frames received, %s is empty", input.Video.Output)
	}
	if want := input.Video.ExpectedFrames; want > 0 && res.Frames != want {
		s.logger.Warn("Received %d of %d expected frames", res.Frames, want)
	}
	return result, nil
}

// debugTap saves one frame per second of video to the debug sink. The
// embedded session keeps Finish, Abort and the frame count reachable by
// the server.
type debugTap struct {
	*session.Session
	sink   ports.DebugSink
	every  int
	width  int
	height int
	n      int
}

func (t *debugTap) WriteFrame(frame []byte) error {
	if err := t.Session.WriteFrame(frame); err != nil {
		return err
	}
	if t.every <= 0 || t.n%t.every == 0 {
		t.sink.SaveFrame(t.n, frame, t.width, t.height)
	}
	t.n++
	return nil
}
