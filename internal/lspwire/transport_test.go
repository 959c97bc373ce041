package lspwire

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"
)

// writeFrame writes a Content-Length framed message, mirroring what the
// Transport under test expects to read.
func writeFrame(t *testing.T, w io.Writer, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("write body: %v", err)
	}
}

// readFrame reads one Content-Length framed message off r, mirroring what
// the Transport under test writes.
func readFrame(t *testing.T, r *bufio.Reader) map[string]any {
	t.Helper()
	var contentLength int
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read header: %v", err)
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			break
		}
		if strings.HasPrefix(strings.ToLower(trimmed), "content-length:") {
			parts := strings.SplitN(trimmed, ":", 2)
			n, err := strconv.Atoi(strings.TrimSpace(parts[1]))
			if err != nil {
				t.Fatalf("bad content-length: %v", err)
			}
			contentLength = n
		}
	}
	body := make([]byte, contentLength)
	if _, err := io.ReadFull(r, body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	var v map[string]any
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	return v
}

func TestCallRoundTrip(t *testing.T) {
	clientIn, serverOut := io.Pipe()
	serverIn, clientOut := io.Pipe()

	tr := New(clientIn, clientOut, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tr.Start(ctx)

	sr := bufio.NewReader(serverIn)
	go func() {
		req := readFrame(t, sr)
		resp := map[string]any{
			"jsonrpc": "2.0",
			"id":      req["id"],
			"result":  map[string]any{"ok": true},
		}
		writeFrame(t, serverOut, resp)
	}()

	var result struct {
		OK bool `json:"ok"`
	}
	if err := tr.Call(ctx, "initialize", nil, &result); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !result.OK {
		t.Errorf("expected OK true, got %+v", result)
	}
}

func TestNotifySendsNoID(t *testing.T) {
	clientIn, serverOut := io.Pipe()
	serverIn, clientOut := io.Pipe()
	defer serverOut.Close()

	tr := New(clientIn, clientOut, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tr.Start(ctx)

	sr := bufio.NewReader(serverIn)
	done := make(chan map[string]any, 1)
	go func() { done <- readFrame(t, sr) }()

	if err := tr.Notify(ctx, "textDocument/didOpen", nil); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	select {
	case msg := <-done:
		if _, hasID := msg["id"]; hasID {
			t.Errorf("notification should not carry an id, got %+v", msg)
		}
		if msg["method"] != "textDocument/didOpen" {
			t.Errorf("unexpected method: %+v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
	}
}

func TestOnRequestAnswersInboundRequest(t *testing.T) {
	clientIn, serverOut := io.Pipe()
	serverIn, clientOut := io.Pipe()

	tr := New(clientIn, clientOut, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tr.Start(ctx)

	tr.OnRequest("workspace/configuration", func(method string, params json.RawMessage) (any, error) {
		return []string{"answered"}, nil
	})

	sr := bufio.NewReader(serverIn)
	go func() {
		id := int64(1)
		writeFrame(t, serverOut, map[string]any{
			"jsonrpc": "2.0",
			"id":      id,
			"method":  "workspace/configuration",
		})
	}()

	resp := readFrame(t, sr)
	result, ok := resp["result"].([]any)
	if !ok || len(result) != 1 || result[0] != "answered" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestOnRequestUnregisteredMethodNotFound(t *testing.T) {
	clientIn, serverOut := io.Pipe()
	serverIn, clientOut := io.Pipe()

	tr := New(clientIn, clientOut, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tr.Start(ctx)

	sr := bufio.NewReader(serverIn)
	go func() {
		writeFrame(t, serverOut, map[string]any{
			"jsonrpc": "2.0",
			"id":      int64(2),
			"method":  "window/showMessageRequest",
		})
	}()

	resp := readFrame(t, sr)
	errObj, ok := resp["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error response, got %+v", resp)
	}
	if code, _ := errObj["code"].(float64); code != -32601 {
		t.Errorf("expected code -32601, got %v", errObj["code"])
	}
}

func TestCallAfterCloseReturnsErrShutdown(t *testing.T) {
	r, w := io.Pipe()
	tr := New(r, w, nil)
	tr.Close()

	if err := tr.Call(context.Background(), "initialize", nil, nil); err != ErrShutdown {
		t.Errorf("expected ErrShutdown, got %v", err)
	}
}
