package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"sync"
	"syscall"

	"github.com/google/uuid"

	"github.com/dshills/leta/internal/applog"
	"github.com/dshills/leta/internal/ops"
)

// Server is the daemon's IPC front door: a Unix domain socket accepting
// one request per connection (§4.9).
type Server struct {
	socketPath string
	handlers   *ops.Handlers
	log        *applog.Logger

	listener net.Listener
	wg       sync.WaitGroup

	mu       sync.Mutex
	stopping bool

	shutdownFunc func()
}

// NewServer creates a Server bound to socketPath (not yet listening).
func NewServer(socketPath string, handlers *ops.Handlers, log *applog.Logger) *Server {
	if log == nil {
		log = applog.NewNull()
	}
	return &Server{socketPath: socketPath, handlers: handlers, log: log.WithComponent("ipc")}
}

// SetShutdownFunc registers the callback invoked by a "shutdown" RPC
// (§4.9: "On shutdown RPC, it stops accepting, drains..."). The daemon
// wires this to cancel the context its own Run loop is watching.
func (s *Server) SetShutdownFunc(fn func()) {
	s.mu.Lock()
	s.shutdownFunc = fn
	s.mu.Unlock()
}

// Listen removes a stale socket file, if any, and binds the listener.
func (s *Server) Listen() error {
	if _, err := os.Stat(s.socketPath); err == nil {
		os.Remove(s.socketPath)
	}
	l, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return err
	}
	s.listener = l
	return nil
}

// Serve accepts connections until ctx is cancelled or Shutdown is called.
// Each connection is one request/response exchange (§4.9).
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.mu.Lock()
		s.stopping = true
		s.mu.Unlock()
		s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			stopping := s.stopping
			s.mu.Unlock()
			if stopping {
				return nil
			}
			return err
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

// Shutdown stops accepting, closes the listener, and waits for in-flight
// connections to finish up to the context deadline (§4.9 drain step).
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()
	if s.listener != nil {
		s.listener.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) handleConn(parent context.Context, conn net.Conn) {
	defer conn.Close()
	reqID := uuid.New()
	log := s.log.WithField("requestID", reqID.String())

	reqCtx, cancel := context.WithCancel(parent)
	defer cancel()

	body, err := ReadFrame(conn)
	if err != nil {
		log.Warnf("read frame: %v", err)
		return
	}

	// Once the request frame is fully read, any further read activity on
	// this connection can only be the client going away (one request per
	// connection, §4.9): treat it as disconnection and cancel the task.
	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		buf := make([]byte, 1)
		conn.Read(buf)
	}()
	go func() {
		select {
		case <-disconnected:
			cancel()
		case <-reqCtx.Done():
		}
	}()

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(conn, log, errWrapUsage(err))
		return
	}
	log.Debugf("dispatching op=%s", req.Op)

	if req.Op == "shutdown" {
		s.mu.Lock()
		fn := s.shutdownFunc
		s.mu.Unlock()
		if fn != nil {
			go fn()
		}
		resp, err := successEnvelope(struct{}{})
		if err != nil {
			writeError(conn, log, err)
			return
		}
		if err := WriteFrame(conn, resp); err != nil {
			log.Warnf("write response: %v", err)
		}
		return
	}

	result, err := dispatch(reqCtx, s.handlers, req)
	if err != nil {
		writeError(conn, log, err)
		return
	}

	resp, err := successEnvelope(result)
	if err != nil {
		writeError(conn, log, err)
		return
	}
	if err := WriteFrame(conn, resp); err != nil {
		log.Warnf("write response: %v", err)
	}
}

func writeError(conn net.Conn, log *applog.Logger, err error) {
	if errors.Is(err, context.Canceled) {
		log.Debugf("request cancelled: client disconnected")
	}
	if werr := WriteFrame(conn, errorEnvelope(err)); werr != nil {
		log.Warnf("write error response: %v", werr)
	}
}

// EndpointInfo is the content written to the endpoint discovery file
// (§4.9, §6 "persisted state").
type EndpointInfo struct {
	SocketPath string `json:"socketPath"`
	PID        int    `json:"pid"`
	StartedAt  string `json:"startedAt"`
}

// WriteEndpointFile persists endpoint discovery info for the CLI to find
// this daemon.
func WriteEndpointFile(path string, info EndpointInfo) error {
	body, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, body, 0o644)
}

// ReadEndpointFile reads previously persisted endpoint discovery info.
func ReadEndpointFile(path string) (EndpointInfo, error) {
	var info EndpointInfo
	body, err := os.ReadFile(path)
	if err != nil {
		return info, err
	}
	err = json.Unmarshal(body, &info)
	return info, err
}

// Stale reports whether the daemon process named in info is no longer
// alive (best-effort: sends signal 0, POSIX-only per SPEC_FULL.md's
// restated non-goal of Windows support).
func (info EndpointInfo) Stale() bool {
	proc, err := os.FindProcess(info.PID)
	if err != nil {
		return true
	}
	return proc.Signal(syscall.Signal(0)) != nil
}
