// Package ingest receives raw video frames from a producer over a
// websocket and feeds them to the encode session.
//
// Protocol: binary messages are RGB24 frames. The text message "finish"
// closes the session and is answered with "finished"; "pause" is
// answered with the number of frames received so far. Everything else is
// ignored. One producer is served per job.
package ingest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"

	"github.com/user/mixrender/pkg/ports"
)

// Protocol messages.
const (
	MsgFinish   = "finish"
	MsgFinished = "finished"
	MsgPause    = "pause"
)

// DefaultAddr is the loopback address producers connect to.
const DefaultAddr = "127.0.0.1:63401"

// State is the server lifecycle position.
type State int

const (
	StateIdle State = iota
	StateListening
	StateStreaming
	StateFinishing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateStreaming:
		return "streaming"
	case StateFinishing:
		return "finishing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Reason tells why streaming ended.
type Reason string

const (
	ReasonFinish       Reason = "finish"
	ReasonTimeout      Reason = "timeout"
	ReasonDisconnected Reason = "disconnected"
	ReasonCancelled    Reason = "cancelled"
	ReasonError        Reason = "error"
)

// FrameSink is the encode session as seen by the server.
type FrameSink interface {
	WriteFrame(frame []byte) error
	Finish() error
}

// Aborter is implemented by sinks that can be torn down without draining.
// On cancel the server aborts a sink whose Finish outlasts AbortGrace.
type Aborter interface {
	Abort() error
}

// FrameCounter is implemented by sinks that count accepted frames. When
// present its count is the one reported in Result.
type FrameCounter interface {
	FramesReceived() int
}

// Config holds server settings.
type Config struct {
	Addr string

	// InactivityTimeout bounds the wait for the next message once a
	// producer is connected.
	InactivityTimeout time.Duration

	// ConnectTimeout bounds the wait for the first producer. 0 waits until
	// the job is cancelled.
	ConnectTimeout time.Duration

	// AbortGrace is how long a cancelled job waits for the encoder to
	// finish before aborting it.
	AbortGrace time.Duration

	// ReportInterval is the frame cadence of progress reports.
	ReportInterval int

	// ExpectedFrames is passed to the progress reporter, 0 if unknown.
	ExpectedFrames int

	// MaxMessageSize bounds a single websocket message. 0 disables the limit.
	MaxMessageSize int64
}

// DefaultConfig returns the loopback address, a 60s inactivity timeout
// and a progress report for every frame.
func DefaultConfig() Config {
	return Config{
		Addr:              DefaultAddr,
		InactivityTimeout: 60 * time.Second,
		AbortGrace:        10 * time.Second,
		ReportInterval:    1,
		MaxMessageSize:    64 << 20,
	}
}

// Result describes a finished job.
type Result struct {
	Frames   int
	Reason   Reason
	Err      error
	Duration time.Duration
}

// Server accepts one producer connection and streams its frames into a
// FrameSink.
type Server struct {
	cfg      Config
	sink     FrameSink
	progress ports.ProgressReporter
	logger   ports.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	state    State
	listener net.Listener
	httpSrv  *http.Server
	conn     *websocket.Conn
	idle     *time.Timer
	frames   int
	started  time.Time
	result   Result

	once sync.Once
	done chan struct{}
}

// New creates a server that writes frames into sink.
func New(cfg Config, sink FrameSink, progress ports.ProgressReporter, logger ports.Logger) *Server {
	def := DefaultConfig()
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.InactivityTimeout <= 0 {
		cfg.InactivityTimeout = def.InactivityTimeout
	}
	if cfg.ReportInterval <= 0 {
		cfg.ReportInterval = def.ReportInterval
	}
	if cfg.AbortGrace <= 0 {
		cfg.AbortGrace = def.AbortGrace
	}

	return &Server{
		cfg:      cfg,
		sink:     sink,
		progress: progress,
		logger:   logger.WithComponent("ingest"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 << 10,
			WriteBufferSize: 4 << 10,
			CheckOrigin: func(r *http.Request) bool {
				return true // producers are local pages and tools
			},
		},
		done: make(chan struct{}),
	}
}

// Listen binds the socket and starts serving. It returns once the socket
// is bound. ctx acts as the shutdown signal: when it is cancelled the
// session is finished with ReasonCancelled.
func (s *Server) Listen(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateIdle:
	case StateClosed:
		s.mu.Unlock()
		return ErrClosed
	default:
		s.mu.Unlock()
		return ErrAlreadyListening
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		s.mu.Unlock()
		return &SocketError{Addr: s.cfg.Addr, Err: err}
	}

	s.listener = ln
	s.httpSrv = &http.Server{Handler: s, ReadHeaderTimeout: 10 * time.Second}
	s.state = StateListening
	s.started = time.Now()
	if wait := s.cfg.ConnectTimeout; wait > 0 {
		s.idle = time.AfterFunc(wait, func() {
			s.logger.Warn("No producer connected within %s", wait)
			s.finish(ReasonTimeout, nil)
		})
	}
	s.mu.Unlock()

	s.logger.Info("Waiting for frames on ws://%s", ln.Addr())

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Frame server stopped: %v", err)
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			s.finish(ReasonCancelled, nil)
		case <-s.done:
		}
	}()

	return nil
}

// Addr returns the bound address, nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// URL returns the websocket URL producers should dial.
func (s *Server) URL() string {
	addr := s.Addr()
	if addr == nil {
		return ""
	}
	return "ws://" + addr.String() + "/"
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// FramesReceived returns the frames accepted so far.
func (s *Server) FramesReceived() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Done is closed when the job has ended.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the job ends and returns its result.
func (s *Server) Wait(ctx context.Context) (Result, error) {
	select {
	case <-s.done:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Close ends the job as cancelled if it is still running.
func (s *Server) Close() Result {
	return s.finish(ReasonCancelled, nil)
}

// ServeHTTP upgrades the producer connection.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Rejected producer connection: %v", err)
		return
	}

	s.mu.Lock()
	if s.state != StateListening {
		state := s.state
		s.mu.Unlock()
		s.logger.Warn("Closing extra producer connection from %s (%s)", r.RemoteAddr, state)
		reject(conn, "superseded")
		return
	}
	s.state = StateStreaming
	s.conn = conn
	if s.idle != nil {
		s.idle.Stop()
	}
	s.mu.Unlock()

	s.logger.Info("Producer connected from %s", r.RemoteAddr)
	s.stream(conn)
}

func reject(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	conn.Close()
}

// stream is the read loop of the producer connection.
func (s *Server) stream(conn *websocket.Conn) {
	defer conn.Close()

	if s.cfg.MaxMessageSize > 0 {
		conn.SetReadLimit(s.cfg.MaxMessageSize)
	}

	for {
		conn.SetReadDeadline(time.Now().Add(s.cfg.InactivityTimeout))
		mt, data, err := conn.ReadMessage()
		if err != nil {
			s.readFailed(err)
			return
		}

		switch mt {
		case websocket.BinaryMessage:
			if err := s.sink.WriteFrame(data); err != nil {
				s.logger.Error("Frame %d rejected: %v", s.FramesReceived(), err)
				s.finish(ReasonError, err)
				closeWith(conn, websocket.CloseUnsupportedData, err.Error())
				return
			}
			s.frameAccepted()

		case websocket.TextMessage:
			switch string(data) {
			case MsgFinish:
				res := s.finish(ReasonFinish, nil)
				if res.Err != nil {
					closeWith(conn, websocket.CloseInternalServerErr, res.Err.Error())
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, []byte(MsgFinished)); err != nil {
					s.logger.Debug("Could not send %s: %v", MsgFinished, err)
				}
				return
			case MsgPause:
				reply := strconv.Itoa(s.FramesReceived())
				if err := conn.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
					s.readFailed(err)
					return
				}
			default:
				s.logger.Debug("Ignoring text message %q", truncate(string(data), 32))
			}
		}
	}
}

func (s *Server) frameAccepted() {
	s.mu.Lock()
	if s.state == StateClosed {
		// counted by finish
		s.mu.Unlock()
		return
	}
	s.frames++
	n := s.frames
	s.mu.Unlock()

	if n%s.cfg.ReportInterval == 0 && s.progress != nil {
		s.progress.Report(n, s.cfg.ExpectedFrames)
	}
}

func (s *Server) readFailed(err error) {
	if s.State() >= StateFinishing {
		return
	}

	var ne net.Error
	switch {
	case errors.As(err, &ne) && ne.Timeout():
		s.logger.Warn("No frame for %s, finishing", s.cfg.InactivityTimeout)
		s.finish(ReasonTimeout, nil)
	default:
		s.logger.Info("Producer disconnected: %v", err)
		s.finish(ReasonDisconnected, nil)
	}
}

// finish closes the sink once and records the result. Later calls return
// the first result.
func (s *Server) finish(reason Reason, cause error) Result {
	s.once.Do(func() {
		s.mu.Lock()
		s.state = StateFinishing
		if s.idle != nil {
			s.idle.Stop()
		}
		conn := s.conn
		s.mu.Unlock()

		if reason == ReasonCancelled && conn != nil {
			// unblock the read loop
			conn.Close()
		}

		err := s.finishSink(reason)
		if cause != nil {
			if err != nil {
				s.logger.Debug("Finish after frame error: %v", err)
			}
			err = cause
		}

		s.mu.Lock()
		if counter, ok := s.sink.(FrameCounter); ok {
			s.frames = counter.FramesReceived()
		}
		s.state = StateClosed
		s.result = Result{
			Frames: s.frames,
			Reason: reason,
			Err:    err,
		}
		if !s.started.IsZero() {
			s.result.Duration = time.Since(s.started)
		}
		ln, srv := s.listener, s.httpSrv
		s.mu.Unlock()

		if srv != nil {
			srv.Close()
		} else if ln != nil {
			ln.Close()
		}
		if s.progress != nil {
			s.progress.Done()
		}
		s.logger.Info("Frame stream closed: %d frames (%s)", s.result.Frames, reason)
		close(s.done)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// finishSink finishes the sink. A cancelled job aborts a sink that has not
// finished within AbortGrace, which also releases a write stuck on a
// stalled encoder.
func (s *Server) finishSink(reason Reason) error {
	aborter, ok := s.sink.(Aborter)
	if reason != ReasonCancelled || !ok {
		return s.sink.Finish()
	}

	grace := s.cfg.AbortGrace
	timer := time.AfterFunc(grace, func() {
		s.logger.Warn("Encoder did not finish within %s, aborting", grace)
		if err := aborter.Abort(); err != nil {
			s.logger.Debug("Abort: %v", err)
		}
	})
	defer timer.Stop()
	return s.sink.Finish()
}

func closeWith(conn *websocket.Conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, truncate(text, 120))
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}

// truncate cuts s to at most n bytes without splitting a rune. Close
// reasons must stay valid UTF-8.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
