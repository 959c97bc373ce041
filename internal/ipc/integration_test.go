package ipc

import (
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dshills/leta/internal/ops"
)

// dialAndCall is a minimal client used only by these tests: dial, send
// one request frame, read one response frame.
func dialAndCall(t *testing.T, socketPath string, req Request) gjson.Result {
	t.Helper()
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	if err := WriteFrame(conn, body); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	resp, err := ReadFrame(conn)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	return gjson.ParseBytes(resp)
}

func TestServerUnknownOpRoundTrip(t *testing.T) {
	dir := t.TempDir()
	socketPath := filepath.Join(dir, "leta.sock")

	h := &ops.Handlers{}
	s := NewServer(socketPath, h, nil)
	if err := s.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	serveErr := make(chan error, 1)
	go func() { serveErr <- s.Serve(ctx) }()

	resp := dialAndCall(t, socketPath, Request{Op: "bogus"})
	if !resp.Get("error").Bool() {
		t.Errorf("expected error envelope for unknown op, got %s", resp.Raw)
	}
	if got := resp.Get("kind").String(); got != "UsageError" {
		t.Errorf("kind = %q, want UsageError", got)
	}

	cancel()
	select {
	case <-serveErr:
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after ctx cancellation")
	}
}

func TestServerShutdownOpTriggersCallback(t *testing.T) {
	dir := t.TempDir()
	socketPath := filepath.Join(dir, "leta.sock")

	h := &ops.Handlers{}
	s := NewServer(socketPath, h, nil)
	if err := s.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}

	triggered := make(chan struct{})
	s.SetShutdownFunc(func() { close(triggered) })

	ctx := context.Background()
	go s.Serve(ctx)

	resp := dialAndCall(t, socketPath, Request{Op: "shutdown"})
	if resp.Get("error").Bool() {
		t.Fatalf("shutdown op returned an error: %s", resp.Raw)
	}

	select {
	case <-triggered:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown callback was not invoked")
	}
}
