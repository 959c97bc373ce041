// Package workspace implements the Workspace/Session component (C4): the
// lifecycle of per-(root,language) servers, capability negotiation, and
// workspace registration/lookup. Grounded on keystorm's
// internal/lsp/manager.go (multi-server map keyed by language) generalized
// to a multi-root, multi-language Session, and internal/lsp/supervisor.go
// (crash recovery), adapted in supervisor.go.
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dshills/leta/internal/applog"
	"github.com/dshills/leta/internal/errs"
	"github.com/dshills/leta/internal/lspclient"
	"github.com/dshills/leta/internal/lspproto"
	"github.com/dshills/leta/internal/registry"
)

// Workspace owns at most one live LanguageServer per language (§3).
type Workspace struct {
	Root string

	mu      sync.Mutex
	servers map[string]*lspclient.Client
}

func newWorkspace(root string) *Workspace {
	return &Workspace{Root: root, servers: make(map[string]*lspclient.Client)}
}

// server returns the current client for a language, if any.
func (w *Workspace) server(languageID string) (*lspclient.Client, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, ok := w.servers[languageID]
	return c, ok
}

// Languages returns the language IDs with a currently tracked server.
func (w *Workspace) Languages() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.servers))
	for lang := range w.servers {
		out = append(out, lang)
	}
	return out
}

// Session is the daemon-wide registry of workspaces (the top of C4).
// Workspaces are tracked in registration order, which is load-bearing for
// the overlapping-roots Open Question decision (see DESIGN.md): the first
// workspace registered that encloses a file owns it.
type Session struct {
	log      *applog.Logger
	registry *registry.Registry
	logDir   string

	mu         sync.RWMutex
	order      []*Workspace // registration order
	byRoot     map[string]*Workspace
	supervisor *Supervisor
}

// New creates an empty Session.
func New(reg *registry.Registry, logDir string, log *applog.Logger) *Session {
	if log == nil {
		log = applog.NewNull()
	}
	s := &Session{
		log:      log.WithComponent("workspace"),
		registry: reg,
		logDir:   logDir,
		byRoot:   make(map[string]*Workspace),
	}
	s.supervisor = newSupervisor(s)
	return s
}

// Add records root as a workspace. Does not eagerly spawn servers (§4.4).
func (s *Session) Add(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.byRoot[abs]; ok {
		return w, nil
	}
	w := newWorkspace(abs)
	s.byRoot[abs] = w
	s.order = append(s.order, w)
	s.log.Infof("workspace added: %s", abs)
	return w, nil
}

// Remove shuts down all servers for root (send shutdown, then exit, then
// terminate after a grace period) and forgets the workspace (§4.4).
func (s *Session) Remove(ctx context.Context, root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	s.mu.Lock()
	w, ok := s.byRoot[abs]
	if ok {
		delete(s.byRoot, abs)
		for i, ww := range s.order {
			if ww == w {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	if !ok {
		return nil
	}

	w.mu.Lock()
	clients := make([]*lspclient.Client, 0, len(w.servers))
	for _, c := range w.servers {
		clients = append(clients, c)
	}
	w.servers = make(map[string]*lspclient.Client)
	w.mu.Unlock()

	for _, c := range clients {
		c.Shutdown(ctx)
	}
	s.log.Infof("workspace removed: %s", abs)
	return nil
}

// Workspaces returns all registered workspaces in registration order.
func (s *Session) Workspaces() []*Workspace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Workspace(nil), s.order...)
}

// WorkspaceForFile resolves which registered workspace owns a file path.
// Per the Open Question decision in DESIGN.md: the first workspace
// registered that encloses the file wins, not the longest-prefix match.
func (s *Session) WorkspaceForFile(path string) (*Workspace, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, w := range s.order {
		if encloses(w.Root, abs) {
			return w, nil
		}
	}
	return nil, fmt.Errorf("%w: no workspace encloses %s", errs.ErrNotFound, path)
}

func encloses(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || !strings.HasPrefix(rel, "..")
}

// Ensure idempotently spawns and initializes the preferred server for a
// language within workspace w, if not already Ready (§4.4 ensure()).
func (s *Session) Ensure(ctx context.Context, w *Workspace, languageID string) (*lspclient.Client, error) {
	if c, ok := w.server(languageID); ok && c.State() == lspclient.StateReady {
		return c, nil
	}

	rec, ok := s.registry.Lookup(languageID)
	if !ok {
		return nil, fmt.Errorf("%w: no server configured for language %q", errs.ErrNotFound, languageID)
	}
	exe := rec.ResolveExecutable()
	if exe == "" {
		return nil, fmt.Errorf("%w: no executable found for %q (tried %s, %v)",
			errs.ErrIO, languageID, rec.Executable, rec.Alternatives)
	}

	var logger *applog.Logger
	if s.logDir != "" {
		if l, err := applog.OpenFile(filepath.Join(s.logDir, languageID+".log"), applog.LevelInfo); err == nil {
			logger = l
		}
	}

	c := lspclient.New(lspclient.Launch{
		LanguageID:       languageID,
		Executable:       exe,
		Args:             rec.Args,
		RootPath:         w.Root,
		RootPathRequired: rec.Quirks.RootPathRequired,
	}, logger)

	w.mu.Lock()
	w.servers[languageID] = c
	w.mu.Unlock()

	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrServerDead, err)
	}

	s.supervisor.watch(w, languageID, c, rec.Quirks.RestartBackoff)
	return c, nil
}

// Restart transitions a language's server through
// Ready->Restarting->Ready within workspace w. In-flight requests against
// the old client fail because its transport is closed before the new one
// starts (§4.4 restart()); the client reports them as ErrServerDead or
// ErrProtocol, not ErrRestarted.
func (s *Session) Restart(ctx context.Context, w *Workspace, languageID string) error {
	w.mu.Lock()
	old, ok := w.servers[languageID]
	delete(w.servers, languageID)
	w.mu.Unlock()

	if ok {
		old.Shutdown(ctx)
	}
	_, err := s.Ensure(ctx, w, languageID)
	return err
}

// EnsureOpenFile applies the open-for-operation policy (§4.4) for a single
// file: resolves its workspace and language, ensures the server is
// running, reads the on-disk content, and sends didOpen if the content
// differs from the server's recorded view.
func (s *Session) EnsureOpenFile(ctx context.Context, path string) (*Workspace, *lspclient.Client, lspproto.DocumentURI, error) {
	languageID := registry.LanguageForFile(path)
	if languageID == "" {
		return nil, nil, "", fmt.Errorf("%w: unrecognized file type %q", errs.ErrNotFound, path)
	}
	w, err := s.WorkspaceForFile(path)
	if err != nil {
		return nil, nil, "", err
	}
	c, err := s.Ensure(ctx, w, languageID)
	if err != nil {
		return nil, nil, "", err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, "", fmt.Errorf("%w: %v", errs.ErrIO, err)
	}
	uri := lspproto.FilePathToURI(path)
	if err := c.EnsureOpen(ctx, uri, languageID, content); err != nil {
		return nil, nil, "", err
	}
	return w, c, uri, nil
}

// Shutdown tears down every workspace's servers (daemon shutdown path).
func (s *Session) Shutdown(ctx context.Context) {
	for _, w := range s.Workspaces() {
		s.Remove(ctx, w.Root)
	}
}
