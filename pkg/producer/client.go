// Package producer is the sending side of the frame socket: it dials the
// ingest server, streams RGB24 frames and closes the session with
// "finish".
package producer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/user/mixrender/pkg/ingest"
	"github.com/user/mixrender/pkg/ports"
)

// DefaultBatchSize is the number of frames sent between checkpoints.
const DefaultBatchSize = 500

var (
	// ErrUnexpectedReply is returned when the server answers a control
	// message with something else than the protocol reply.
	ErrUnexpectedReply = errors.New("producer: unexpected reply")

	// ErrCheckpointBehind is returned when the server acknowledged fewer
	// frames than were sent.
	ErrCheckpointBehind = errors.New("producer: server checkpoint behind sent frames")
)

// FrameSource yields frame index of a video.
type FrameSource interface {
	Frame(ctx context.Context, index int) ([]byte, error)
}

// FrameFunc adapts a function to FrameSource.
type FrameFunc func(ctx context.Context, index int) ([]byte, error)

// Frame calls f.
func (f FrameFunc) Frame(ctx context.Context, index int) ([]byte, error) {
	return f(ctx, index)
}

// Config controls a Client.
type Config struct {
	BatchSize    int
	ReplyTimeout time.Duration
}

// DefaultConfig returns a batch of 500 frames and a 60s reply timeout.
func DefaultConfig() Config {
	return Config{BatchSize: DefaultBatchSize, ReplyTimeout: 60 * time.Second}
}

// Client is a connected frame producer.
type Client struct {
	conn   *websocket.Conn
	cfg    Config
	logger ports.Logger

	sent    int
	unacked int
}

// Dial connects to the ingest server at url.
func Dial(ctx context.Context, url string, cfg Config, logger ports.Logger) (*Client, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.ReplyTimeout <= 0 {
		cfg.ReplyTimeout = DefaultConfig().ReplyTimeout
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Client{conn: conn, cfg: cfg, logger: logger.WithComponent("producer")}, nil
}

// Sent returns the frames sent so far.
func (c *Client) Sent() int {
	return c.sent
}

// Send writes one frame. After every BatchSize frames it waits for the
// server checkpoint so the producer never runs far ahead of the encoder.
func (c *Client) Send(frame []byte) error {
	if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return fmt.Errorf("send frame %d: %w", c.sent, err)
	}
	c.sent++
	c.unacked++

	if c.unacked >= c.cfg.BatchSize {
		if _, err := c.Checkpoint(); err != nil {
			return err
		}
	}
	return nil
}

// Checkpoint sends "pause" and returns the server's frame count.
func (c *Client) Checkpoint() (int, error) {
	reply, err := c.request(ingest.MsgPause)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(reply)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnexpectedReply, reply)
	}
	if n < c.sent {
		return n, fmt.Errorf("%w: %d of %d", ErrCheckpointBehind, n, c.sent)
	}
	c.unacked = 0
	c.logger.Debug("Checkpoint at %d frames", n)
	return n, nil
}

// Finish asks the server to close the session and waits for the
// encoder to exit.
func (c *Client) Finish() error {
	reply, err := c.request(ingest.MsgFinish)
	if err != nil {
		return err
	}
	if reply != ingest.MsgFinished {
		return fmt.Errorf("%w: %q", ErrUnexpectedReply, reply)
	}
	return nil
}

// Close drops the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) request(msg string) (string, error) {
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		return "", fmt.Errorf("send %s: %w", msg, err)
	}

	c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReplyTimeout))
	defer c.conn.SetReadDeadline(time.Time{})

	for {
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			return "", fmt.Errorf("await %s reply: %w", msg, err)
		}
		if mt == websocket.TextMessage {
			return string(data), nil
		}
	}
}

// Stream sends frames [0, total) from src, then finishes the session.
// Each frame is fetched just before it is sent.
func Stream(ctx context.Context, c *Client, src FrameSource, total int) error {
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		frame, err := src.Frame(ctx, i)
		if err != nil {
			return fmt.Errorf("produce frame %d: %w", i, err)
		}
		if err := c.Send(frame); err != nil {
			return err
		}
	}
	return c.Finish()
}
