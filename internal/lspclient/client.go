// Package lspclient implements the LSP Client (C2): one instance per
// subprocess, owning its stdin/stdout transport, document-sync state, and
// the initialize handshake. Grounded on keystorm's internal/lsp/client.go
// and internal/lsp/server.go, generalized from an editor-facing single
// server to the daemon's per-(root,language) server instances.
package lspclient

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/dshills/leta/internal/applog"
	"github.com/dshills/leta/internal/errs"
	"github.com/dshills/leta/internal/lspproto"
	"github.com/dshills/leta/internal/lspwire"
)

// State is a LanguageServer's lifecycle state (§3).
type State int

const (
	StateSpawning State = iota
	StateInitializing
	StateReady
	StateRestarting
	StateDead
)

func (s State) String() string {
	switch s {
	case StateSpawning:
		return "Spawning"
	case StateInitializing:
		return "Initializing"
	case StateReady:
		return "Ready"
	case StateRestarting:
		return "Restarting"
	case StateDead:
		return "Dead"
	default:
		return "Unknown"
	}
}

// DefaultRequestTimeout is the per-request deadline (§5), overridable by
// config.
const DefaultRequestTimeout = 30 * time.Second

// Launch describes how to start a language server subprocess (from C3).
type Launch struct {
	LanguageID string
	Executable string
	Args       []string
	Env        []string
	RootPath   string
	// RootPathRequired marks servers that need the deprecated rootPath
	// field in InitializeParams in addition to rootUri.
	RootPathRequired bool
	InitOptions      any
}

// docState tracks one open document's server-side view (§3 Document).
type docState struct {
	version     int
	contentHash string
	open        bool
}

// Client owns one language server subprocess.
type Client struct {
	launch Launch
	log    *applog.Logger

	mu    sync.RWMutex
	state State

	cmd       *exec.Cmd
	transport *lspwire.Transport
	stdinW    io.WriteCloser

	capsMu sync.RWMutex
	caps   lspproto.ServerCapabilities

	docsMu sync.Mutex
	docs   map[lspproto.DocumentURI]*docState

	diagMu sync.Mutex
	diags  map[lspproto.DocumentURI][]lspproto.Diagnostic

	exited chan struct{}
}

// New constructs a Client in the Spawning state; call Start to launch the
// subprocess and run the initialize handshake.
func New(launch Launch, log *applog.Logger) *Client {
	if log == nil {
		log = applog.NewNull()
	}
	return &Client{
		launch: launch,
		log:    log.WithComponent("lsp." + launch.LanguageID),
		state:  StateSpawning,
		docs:   make(map[lspproto.DocumentURI]*docState),
		diags:  make(map[lspproto.DocumentURI][]lspproto.Diagnostic),
		exited: make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Start spawns the subprocess, wires the transport, registers canned
// inbound-request replies, and performs the initialize/initialized
// handshake (§4.4).
func (c *Client) Start(ctx context.Context) error {
	c.setState(StateSpawning)

	cmd := exec.CommandContext(context.Background(), c.launch.Executable, c.launch.Args...)
	cmd.Dir = c.launch.RootPath
	if len(c.launch.Env) > 0 {
		cmd.Env = append(os.Environ(), c.launch.Env...)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("lspclient: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("lspclient: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("lspclient: stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		c.setState(StateDead)
		return fmt.Errorf("lspclient: start %s: %w", c.launch.Executable, err)
	}

	c.mu.Lock()
	c.cmd = cmd
	c.stdinW = stdin
	c.mu.Unlock()

	t := lspwire.New(stdout, stdin, stdin)
	c.transport = t
	c.registerHandlers()
	t.Start(ctx)

	// stderr draining task: routes server logs to the per-server logger,
	// never to the pump (§5 "a stderr-draining task that routes server
	// logs to per-server log files").
	go c.drainStderr(stderr)

	go func() {
		cmd.Wait()
		close(c.exited)
		c.setState(StateDead)
	}()

	c.setState(StateInitializing)
	if err := c.initialize(ctx); err != nil {
		c.setState(StateDead)
		return err
	}
	c.setState(StateReady)
	return nil
}

func (c *Client) drainStderr(r io.Reader) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			c.log.Debugf("stderr: %s", string(buf[:n]))
		}
		if err != nil {
			return
		}
	}
}

// registerHandlers wires the canned replies §4.2 requires: answer
// workspace/configuration with one null per requested item,
// window/showMessageRequest with the first action, and drop progress/log
// notifications.
func (c *Client) registerHandlers() {
	c.transport.OnRequest("workspace/configuration", func(method string, params json.RawMessage) (any, error) {
		var p lspproto.ConfigurationParams
		json.Unmarshal(params, &p)
		out := make([]any, len(p.Items))
		return out, nil
	})
	c.transport.OnRequest("window/showMessageRequest", func(method string, params json.RawMessage) (any, error) {
		var p lspproto.ShowMessageRequestParams
		json.Unmarshal(params, &p)
		if len(p.Actions) > 0 {
			return p.Actions[0], nil
		}
		return nil, nil
	})
	c.transport.OnRequest("client/registerCapability", func(string, json.RawMessage) (any, error) {
		return nil, nil
	})
	c.transport.OnRequest("workspace/applyEdit", func(method string, params json.RawMessage) (any, error) {
		// leta applies WorkspaceEdits itself (C7 rename/mv); a server-
		// initiated applyEdit is acknowledged but not actually applied.
		return map[string]any{"applied": false}, nil
	})

	c.transport.OnNotification("textDocument/publishDiagnostics", func(method string, params json.RawMessage) {
		var p lspproto.PublishDiagnosticsParams
		if err := json.Unmarshal(params, &p); err != nil {
			return
		}
		c.diagMu.Lock()
		c.diags[p.URI] = p.Diagnostics
		c.diagMu.Unlock()
	})
	c.transport.OnNotification("window/logMessage", func(string, json.RawMessage) {})
	c.transport.OnNotification("$/progress", func(string, json.RawMessage) {})
	c.transport.OnNotification("window/showMessage", func(string, json.RawMessage) {})
}

func (c *Client) initialize(ctx context.Context) error {
	pid := os.Getpid()
	params := lspproto.InitializeParams{
		ProcessID:    &pid,
		RootURI:      lspproto.FilePathToURI(c.launch.RootPath),
		Capabilities: lspproto.DefaultClientCapabilities(),
		WorkspaceFolders: []lspproto.WorkspaceFolder{
			{URI: lspproto.FilePathToURI(c.launch.RootPath), Name: c.launch.RootPath},
		},
		InitializationOptions: c.launch.InitOptions,
	}
	if c.launch.RootPathRequired {
		params.RootPath = c.launch.RootPath
	}

	var result lspproto.InitializeResult
	if err := c.transport.Call(ctx, "initialize", params, &result); err != nil {
		return fmt.Errorf("lspclient: initialize: %w", err)
	}

	c.capsMu.Lock()
	c.caps = result.Capabilities
	c.capsMu.Unlock()

	if err := c.transport.Notify(ctx, "initialized", map[string]any{}); err != nil {
		return fmt.Errorf("lspclient: initialized notify: %w", err)
	}
	return nil
}

// Capabilities returns the cached server capabilities from the initialize
// response.
func (c *Client) Capabilities() lspproto.ServerCapabilities {
	c.capsMu.RLock()
	defer c.capsMu.RUnlock()
	return c.caps
}

// HasCapability reports whether the capability selected by get is present
// in the cached server capabilities.
func (c *Client) HasCapability(get func(lspproto.ServerCapabilities) any) bool {
	return lspproto.HasCapability(get(c.Capabilities()))
}

// Request issues a request and decodes its result, translating transport
// failures into the §7 taxonomy.
func (c *Client) Request(ctx context.Context, method string, params any, result any) error {
	if c.State() != StateReady {
		return errs.ErrServerDead
	}
	callCtx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
	defer cancel()

	err := c.transport.Call(callCtx, method, params, result)
	if err == nil {
		return nil
	}
	select {
	case <-c.exited:
		return errs.ErrServerDead
	default:
	}
	if callCtx.Err() == context.DeadlineExceeded {
		return errs.ErrTimedOut
	}
	if rpcErr, ok := err.(*errs.RPCError); ok {
		return rpcErr
	}
	return fmt.Errorf("%w: %v", errs.ErrProtocol, err)
}

// Notify sends a fire-and-forget notification.
func (c *Client) Notify(ctx context.Context, method string, params any) error {
	return c.transport.Notify(ctx, method, params)
}

// Diagnostics returns the last published diagnostics for uri, if any.
func (c *Client) Diagnostics(uri lspproto.DocumentURI) []lspproto.Diagnostic {
	c.diagMu.Lock()
	defer c.diagMu.Unlock()
	return append([]lspproto.Diagnostic(nil), c.diags[uri]...)
}

// HashContent computes the content-hash used by §3's Document invariant
// and §4.4's open-for-operation policy.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// EnsureOpen implements the open-for-operation document sync policy
// (§4.4): if the document is not open, or its recorded content-hash
// differs from the on-disk hash, send didOpen (or didClose+didOpen) with
// the full current contents and bump the version.
func (c *Client) EnsureOpen(ctx context.Context, uri lspproto.DocumentURI, languageID string, content []byte) error {
	hash := HashContent(content)

	c.docsMu.Lock()
	d, exists := c.docs[uri]
	needOpen := !exists || !d.open || d.contentHash != hash
	var needCloseFirst bool
	if exists && d.open && d.contentHash != hash {
		needCloseFirst = true
	}
	c.docsMu.Unlock()

	if !needOpen {
		return nil
	}

	if needCloseFirst {
		if err := c.Notify(ctx, "textDocument/didClose", lspproto.DidCloseTextDocumentParams{
			TextDocument: lspproto.TextDocumentIdentifier{URI: uri},
		}); err != nil {
			return err
		}
	}

	c.docsMu.Lock()
	version := 1
	if exists {
		version = d.version + 1
	}
	c.docs[uri] = &docState{version: version, contentHash: hash, open: true}
	c.docsMu.Unlock()

	return c.Notify(ctx, "textDocument/didOpen", lspproto.DidOpenTextDocumentParams{
		TextDocument: lspproto.TextDocumentItem{
			URI:        uri,
			LanguageID: languageID,
			Version:    version,
			Text:       string(content),
		},
	})
}

// Close sends didClose for uri, ending the batch of operations on it
// (§4.4 step 3).
func (c *Client) Close(ctx context.Context, uri lspproto.DocumentURI) error {
	c.docsMu.Lock()
	d, exists := c.docs[uri]
	if !exists || !d.open {
		c.docsMu.Unlock()
		return nil
	}
	d.open = false
	c.docsMu.Unlock()

	return c.Notify(ctx, "textDocument/didClose", lspproto.DidCloseTextDocumentParams{
		TextDocument: lspproto.TextDocumentIdentifier{URI: uri},
	})
}

// DocumentHash returns the recorded content-hash for an open document, and
// whether it is currently open (§8 invariant 1 round-trip check).
func (c *Client) DocumentHash(uri lspproto.DocumentURI) (hash string, open bool) {
	c.docsMu.Lock()
	defer c.docsMu.Unlock()
	d, ok := c.docs[uri]
	if !ok {
		return "", false
	}
	return d.contentHash, d.open
}

// Shutdown performs the LSP shutdown/exit sequence then terminates the
// process after a short grace period if it hasn't exited (§4.4 remove).
func (c *Client) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_ = c.transport.Call(shutdownCtx, "shutdown", nil, nil)
	_ = c.transport.Notify(shutdownCtx, "exit", nil)

	select {
	case <-c.exited:
	case <-time.After(2 * time.Second):
		c.mu.RLock()
		cmd := c.cmd
		c.mu.RUnlock()
		if cmd != nil && cmd.Process != nil {
			cmd.Process.Kill()
		}
	}
	c.transport.Close()
	c.setState(StateDead)
	return nil
}

// Exited returns a channel closed when the subprocess terminates.
func (c *Client) Exited() <-chan struct{} { return c.exited }

// LanguageID is the language this client serves.
func (c *Client) LanguageID() string { return c.launch.LanguageID }

// RootPath is the workspace root this client was launched for.
func (c *Client) RootPath() string { return c.launch.RootPath }
