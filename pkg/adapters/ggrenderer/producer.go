package ggrenderer

import (
	"context"

	"github.com/user/mixrender/pkg/ports"
	"github.com/user/mixrender/pkg/producer"
)

// Producer streams rendered test-pattern frames to a frame socket.
type Producer struct {
	renderer ports.FrameRenderer
	width    int
	height   int
	frames   int
	config   producer.Config
	logger   ports.Logger
}

// NewProducer creates a Producer sending frames of width x height.
func NewProducer(renderer ports.FrameRenderer, width, height, frames int, logger ports.Logger) *Producer {
	return &Producer{
		renderer: renderer,
		width:    width,
		height:   height,
		frames:   frames,
		config:   producer.DefaultConfig(),
		logger:   logger.WithComponent("testpattern"),
	}
}

// Produce connects to url, sends every frame and finishes the session.
func (p *Producer) Produce(ctx context.Context, url string) error {
	client, err := producer.Dial(ctx, url, p.config, p.logger)
	if err != nil {
		return err
	}
	defer client.Close()

	p.logger.Debug("Streaming %d test frames at %dx%d", p.frames, p.width, p.height)
	src := producer.FrameFunc(func(ctx context.Context, index int) ([]byte, error) {
		return ToRGB24(p.renderer.RenderFrame(index, p.frames, p.width, p.height)), nil
	})
	return producer.Stream(ctx, client, src, p.frames)
}

var _ ports.FrameProducer = (*Producer)(nil)
