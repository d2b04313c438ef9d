package ingest

import (
	"bytes"
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"

	"github.com/user/mixrender/pkg/adapters/ffmpeg"
	"github.com/user/mixrender/pkg/adapters/logger"
	"github.com/user/mixrender/pkg/mocks"
	"github.com/user/mixrender/pkg/session"
)

type recordingSink struct {
	mu        sync.Mutex
	frames    [][]byte
	finished  int
	writeErr  error
	finishErr error
}

func (s *recordingSink) WriteFrame(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.frames = append(s.frames, append([]byte(nil), frame...))
	return nil
}

func (s *recordingSink) Finish() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished++
	return s.finishErr
}

func (s *recordingSink) snapshot() ([][]byte, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames, s.finished
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.InactivityTimeout = 5 * time.Second
	return cfg
}

func startServer(t *testing.T, cfg Config, sink FrameSink) (*Server, *mocks.ProgressReporter) {
	t.Helper()
	progress := &mocks.ProgressReporter{}
	srv := New(cfg, sink, progress, logger.NewNoop())
	if err := srv.Listen(context.Background()); err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv, progress
}

func dial(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(srv.URL(), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitResult(t *testing.T, srv *Server) Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := srv.Wait(ctx)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	return res
}

func send(t *testing.T, conn *websocket.Conn, mt int, data []byte) {
	t.Helper()
	if err := conn.WriteMessage(mt, data); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	mt, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if mt != websocket.TextMessage {
		t.Fatalf("expected text message, got type %d", mt)
	}
	return string(data)
}

func TestServer_FramesThenFinish(t *testing.T) {
	sink := &recordingSink{}
	srv, progress := startServer(t, testConfig(), sink)
	conn := dial(t, srv)

	for i := byte(0); i < 3; i++ {
		send(t, conn, websocket.BinaryMessage, []byte{i, i, i})
	}
	send(t, conn, websocket.TextMessage, []byte(MsgFinish))

	if reply := readText(t, conn); reply != MsgFinished {
		t.Errorf("expected %q, got %q", MsgFinished, reply)
	}

	res := waitResult(t, srv)
	if res.Frames != 3 || res.Reason != ReasonFinish || res.Err != nil {
		t.Errorf("unexpected result: %+v", res)
	}
	if srv.State() != StateClosed {
		t.Errorf("expected closed, got %s", srv.State())
	}

	frames, finished := sink.snapshot()
	if finished != 1 {
		t.Errorf("expected sink finished once, got %d", finished)
	}
	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}
	for i, f := range frames {
		if !bytes.Equal(f, []byte{byte(i), byte(i), byte(i)}) {
			t.Errorf("frame %d out of order: %v", i, f)
		}
	}
	if progress.Count() != 3 || !progress.IsDone {
		t.Errorf("expected 3 reports and done, got %v done=%v", progress.Reports, progress.IsDone)
	}
}

func TestServer_PauseReportsCheckpoint(t *testing.T) {
	sink := &recordingSink{}
	srv, _ := startServer(t, testConfig(), sink)
	conn := dial(t, srv)

	send(t, conn, websocket.BinaryMessage, []byte{1})
	send(t, conn, websocket.BinaryMessage, []byte{2})
	send(t, conn, websocket.TextMessage, []byte(MsgPause))

	if reply := readText(t, conn); reply != "2" {
		t.Errorf("expected checkpoint 2, got %q", reply)
	}
	if srv.FramesReceived() != 2 {
		t.Errorf("pause must not count as a frame, got %d", srv.FramesReceived())
	}
	if srv.State() != StateStreaming {
		t.Errorf("expected streaming, got %s", srv.State())
	}

	send(t, conn, websocket.TextMessage, []byte(MsgFinish))
	readText(t, conn)
	if res := waitResult(t, srv); res.Frames != 2 {
		t.Errorf("expected 2 frames, got %d", res.Frames)
	}
}

func TestServer_IgnoresUnknownText(t *testing.T) {
	srv, _ := startServer(t, testConfig(), &recordingSink{})
	conn := dial(t, srv)

	send(t, conn, websocket.TextMessage, []byte("hello"))
	send(t, conn, websocket.TextMessage, []byte(MsgPause))
	if reply := readText(t, conn); reply != "0" {
		t.Errorf("expected 0, got %q", reply)
	}
}

func TestServer_InactivityTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.InactivityTimeout = 150 * time.Millisecond
	sink := &recordingSink{}
	srv, _ := startServer(t, cfg, sink)
	conn := dial(t, srv)

	send(t, conn, websocket.BinaryMessage, []byte{9})

	res := waitResult(t, srv)
	if res.Reason != ReasonTimeout {
		t.Errorf("expected timeout, got %s", res.Reason)
	}
	if res.Frames != 1 || res.Err != nil {
		t.Errorf("unexpected result: %+v", res)
	}
	if _, finished := sink.snapshot(); finished != 1 {
		t.Errorf("expected implicit finish, got %d", finished)
	}
	if srv.State() != StateClosed {
		t.Errorf("expected closed, got %s", srv.State())
	}
}

func TestServer_NoProducerTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.ConnectTimeout = 100 * time.Millisecond
	sink := &recordingSink{}
	srv, _ := startServer(t, cfg, sink)

	res := waitResult(t, srv)
	if res.Reason != ReasonTimeout || res.Frames != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
	if _, finished := sink.snapshot(); finished != 1 {
		t.Errorf("expected sink finished, got %d", finished)
	}
}

func TestServer_SecondConnectionRejected(t *testing.T) {
	srv, _ := startServer(t, testConfig(), &recordingSink{})
	first := dial(t, srv)

	send(t, first, websocket.TextMessage, []byte(MsgPause))
	readText(t, first)

	second := dial(t, srv)
	second.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := second.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseTryAgainLater) {
		t.Fatalf("expected try-again-later close, got %v", err)
	}

	send(t, first, websocket.BinaryMessage, []byte{1})
	send(t, first, websocket.TextMessage, []byte(MsgPause))
	if reply := readText(t, first); reply != "1" {
		t.Errorf("first producer should keep streaming, got %q", reply)
	}
}

func TestServer_ProducerDisconnect(t *testing.T) {
	sink := &recordingSink{}
	srv, _ := startServer(t, testConfig(), sink)
	conn := dial(t, srv)

	send(t, conn, websocket.BinaryMessage, []byte{1})
	send(t, conn, websocket.TextMessage, []byte(MsgPause))
	readText(t, conn)
	conn.Close()

	res := waitResult(t, srv)
	if res.Reason != ReasonDisconnected || res.Frames != 1 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestServer_FrameErrorIsFatal(t *testing.T) {
	boom := errors.New("pipe closed")
	sink := &recordingSink{writeErr: boom}
	srv, _ := startServer(t, testConfig(), sink)
	conn := dial(t, srv)

	send(t, conn, websocket.BinaryMessage, []byte{1})

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseUnsupportedData) {
		t.Errorf("expected unsupported-data close, got %v", err)
	}

	res := waitResult(t, srv)
	if res.Reason != ReasonError || !errors.Is(res.Err, boom) {
		t.Errorf("unexpected result: %+v", res)
	}
	if _, finished := sink.snapshot(); finished != 1 {
		t.Errorf("expected session finished after frame error, got %d", finished)
	}
}

func TestServer_FinishErrorClosesConnection(t *testing.T) {
	exit := &ffmpeg.ExitError{Code: 1}
	srv, _ := startServer(t, testConfig(), &recordingSink{finishErr: exit})
	conn := dial(t, srv)

	send(t, conn, websocket.TextMessage, []byte(MsgFinish))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseInternalServerErr) {
		t.Errorf("expected internal-error close, got %v", err)
	}
	if res := waitResult(t, srv); !errors.Is(res.Err, exit) {
		t.Errorf("expected exit error in result, got %v", res.Err)
	}
}

func TestServer_ContextCancel(t *testing.T) {
	sink := &recordingSink{}
	srv := New(testConfig(), sink, nil, logger.NewNoop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.Listen(ctx); err != nil {
		t.Fatalf("listen: %v", err)
	}
	conn := dial(t, srv)
	send(t, conn, websocket.TextMessage, []byte(MsgPause))
	readText(t, conn)

	cancel()

	res := waitResult(t, srv)
	if res.Reason != ReasonCancelled {
		t.Errorf("expected cancelled, got %s", res.Reason)
	}
	if _, finished := sink.snapshot(); finished != 1 {
		t.Errorf("expected implicit finish, got %d", finished)
	}
}

func TestServer_ProgressInterval(t *testing.T) {
	cfg := testConfig()
	cfg.ReportInterval = 2
	cfg.ExpectedFrames = 4
	srv, progress := startServer(t, cfg, &recordingSink{})
	conn := dial(t, srv)

	for i := 0; i < 5; i++ {
		send(t, conn, websocket.BinaryMessage, []byte{byte(i)})
	}
	send(t, conn, websocket.TextMessage, []byte(MsgFinish))
	readText(t, conn)
	waitResult(t, srv)

	want := [][2]int{{2, 4}, {4, 4}}
	if len(progress.Reports) != len(want) {
		t.Fatalf("expected reports %v, got %v", want, progress.Reports)
	}
	for i := range want {
		if progress.Reports[i] != want[i] {
			t.Errorf("report %d: expected %v, got %v", i, want[i], progress.Reports[i])
		}
	}
}

func TestServer_ListenErrors(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	cfg := testConfig()
	cfg.Addr = ln.Addr().String()
	busy := New(cfg, &recordingSink{}, nil, logger.NewNoop())
	err = busy.Listen(context.Background())
	var se *SocketError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SocketError, got %v", err)
	}
	if se.Addr != cfg.Addr {
		t.Errorf("expected address %s, got %s", cfg.Addr, se.Addr)
	}

	srv, _ := startServer(t, testConfig(), &recordingSink{})
	if err := srv.Listen(context.Background()); !errors.Is(err, ErrAlreadyListening) {
		t.Errorf("expected ErrAlreadyListening, got %v", err)
	}
	srv.Close()
	if err := srv.Listen(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestServer_WithEncodeSession(t *testing.T) {
	runner := &mocks.ProcessRunner{}
	manager := session.NewManager(runner, logger.NewNoop())
	sess, err := manager.Start(context.Background(), session.Spec{
		VideoOptions: ffmpeg.VideoOptions{
			Width: 2, Height: 1, FPS: 24, Codec: "libx264", Bitrate: "1M", Output: "out.mp4",
		},
	})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	srv, _ := startServer(t, testConfig(), sess)
	conn := dial(t, srv)

	send(t, conn, websocket.BinaryMessage, make([]byte, 6))
	send(t, conn, websocket.BinaryMessage, make([]byte, 5))

	res := waitResult(t, srv)
	if !errors.Is(res.Err, session.ErrFrameSize) {
		t.Fatalf("expected frame size error, got %v", res.Err)
	}
	if res.Frames != 1 {
		t.Errorf("expected 1 accepted frame, got %d", res.Frames)
	}
	if sess.State() != session.StateClosed {
		t.Errorf("expected session closed, got %s", sess.State())
	}
	if runner.Process.WriteCount() != 1 || runner.Process.FinishCount() != 1 {
		t.Errorf("expected 1 write and 1 finish, got %d and %d",
			runner.Process.WriteCount(), runner.Process.FinishCount())
	}
	if manager.Active() {
		t.Error("expected manager idle")
	}
}

func TestServer_WaitsForFirstProducer(t *testing.T) {
	cfg := testConfig()
	cfg.InactivityTimeout = 100 * time.Millisecond
	sink := &recordingSink{}
	srv, _ := startServer(t, cfg, sink)

	time.Sleep(300 * time.Millisecond)
	if srv.State() != StateListening {
		t.Fatalf("expected the server to keep listening, got %s", srv.State())
	}

	conn := dial(t, srv)
	send(t, conn, websocket.BinaryMessage, []byte{1})
	send(t, conn, websocket.TextMessage, []byte(MsgFinish))
	if reply := readText(t, conn); reply != MsgFinished {
		t.Errorf("expected %q, got %q", MsgFinished, reply)
	}
	if res := waitResult(t, srv); res.Reason != ReasonFinish || res.Frames != 1 {
		t.Errorf("unexpected result: %+v", res)
	}
}

// stallingSink blocks every write until released, holding its lock the
// way an encode session does while the encoder pipe is full.
type stallingSink struct {
	mu      sync.Mutex
	frames  int
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	fail    bool

	amu     sync.Mutex
	aborted bool
}

func newStallingSink(fail bool) *stallingSink {
	return &stallingSink{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
		fail:    fail,
	}
}

func (s *stallingSink) WriteFrame(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entered <- struct{}{}
	<-s.release
	if s.fail {
		return errors.New("encoder killed")
	}
	s.frames++
	return nil
}

func (s *stallingSink) Finish() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return nil
}

func (s *stallingSink) FramesReceived() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

func (s *stallingSink) unblock() {
	s.once.Do(func() { close(s.release) })
}

func (s *stallingSink) wasAborted() bool {
	s.amu.Lock()
	defer s.amu.Unlock()
	return s.aborted
}

// abortingSink adds Abort, which releases the stalled write.
type abortingSink struct {
	*stallingSink
}

func (s abortingSink) Abort() error {
	s.amu.Lock()
	s.aborted = true
	s.amu.Unlock()
	s.unblock()
	return nil
}

func waitForState(t *testing.T, srv *Server, want State) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for srv.State() != want {
		if time.Now().After(deadline) {
			t.Fatalf("server never reached %s, stuck in %s", want, srv.State())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServer_CancelAbortsStalledSink(t *testing.T) {
	cfg := testConfig()
	cfg.AbortGrace = 100 * time.Millisecond
	sink := abortingSink{newStallingSink(true)}
	srv := New(cfg, sink, nil, logger.NewNoop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.Listen(ctx); err != nil {
		t.Fatalf("listen: %v", err)
	}
	conn := dial(t, srv)
	send(t, conn, websocket.BinaryMessage, []byte{1})
	<-sink.entered

	cancel()

	res := waitResult(t, srv)
	if res.Reason != ReasonCancelled {
		t.Errorf("expected cancelled, got %s", res.Reason)
	}
	if !sink.wasAborted() {
		t.Error("expected the stalled sink to be aborted")
	}
	if res.Frames != 0 {
		t.Errorf("a killed write must not be counted, got %d", res.Frames)
	}
}

func TestServer_CancelCountsInFlightFrame(t *testing.T) {
	sink := newStallingSink(false)
	srv := New(testConfig(), sink, nil, logger.NewNoop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.Listen(ctx); err != nil {
		t.Fatalf("listen: %v", err)
	}
	conn := dial(t, srv)
	send(t, conn, websocket.BinaryMessage, []byte{1})
	<-sink.entered

	cancel()
	waitForState(t, srv, StateFinishing)
	sink.unblock()

	res := waitResult(t, srv)
	if res.Reason != ReasonCancelled || res.Frames != 1 {
		t.Errorf("expected the in-flight frame counted, got %+v", res)
	}
	time.Sleep(50 * time.Millisecond)
	if got := srv.FramesReceived(); got != 1 {
		t.Errorf("expected 1 frame after close, got %d", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"abcdef", 3, "abc"},
		{"ééé", 3, "é"},
		{"ééé", 4, "éé"},
		{"日本語", 5, "日"},
		{"日本語", 2, ""},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.n)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.in, tt.n)
		}
	}
}
