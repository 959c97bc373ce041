package ops

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/dshills/leta/internal/lspclient"
	"github.com/dshills/leta/internal/lspproto"
	"github.com/dshills/leta/internal/resolver"
	"github.com/dshills/leta/internal/symindex"
)

// collectAll runs collect_workspace() over every registered workspace,
// merging the results (§4.5, §4.6 "gathering document-symbol trees across
// the workspace").
func (h *Handlers) collectAll(ctx context.Context, excludes []string) ([]symindex.Collected, []string) {
	var all []symindex.Collected
	var warnings []string
	for _, w := range h.Session.Workspaces() {
		serverFor := func(ctx context.Context, languageID string) (*lspclient.Client, error) {
			return h.Session.Ensure(ctx, w, languageID)
		}
		collected, warns, err := h.Index.CollectWorkspace(ctx, w.Root, excludes, serverFor)
		if err != nil {
			warnings = append(warnings, w.Root+": "+err.Error())
			continue
		}
		all = append(all, collected...)
		warnings = append(warnings, warns...)
	}
	return all, warnings
}

// resolveExpr implements the common resolve step shared by every
// symbol-expression-taking handler (§4.6): each collected file is matched
// against the expression relative to its own enclosing workspace root, so
// path filters behave consistently across multiple registered roots.
func (h *Handlers) resolveExpr(ctx context.Context, raw string) (*resolver.Resolved, []string, error) {
	expr := resolver.Parse(raw)
	collected, warnings := h.collectAll(ctx, nil)

	var candidates []resolver.Candidate
	for _, w := range h.Session.Workspaces() {
		var inRoot []symindex.Collected
		for _, c := range collected {
			if withinRoot(w.Root, c.Path) {
				inRoot = append(inRoot, c)
			}
		}
		candidates = append(candidates, resolver.FindCandidates(w.Root, expr, inRoot)...)
	}

	resolved, err := resolver.Resolve(expr, candidates)
	return resolved, warnings, err
}

func withinRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || !strings.HasPrefix(rel, "..")
}

// relPath renders an absolute path relative to its owning workspace root
// for user-facing output (§4.7 result shapes), falling back to the
// absolute path when no registered workspace encloses it.
func (h *Handlers) relPath(path string) string {
	w, err := h.Session.WorkspaceForFile(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(w.Root, path)
	if err != nil {
		return path
	}
	return rel
}

// relPaths applies relPath to every entry of paths, for handlers that
// report a batch of touched files (rename, organize-imports).
func (h *Handlers) relPaths(paths []string) []string {
	if paths == nil {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = h.relPath(p)
	}
	return out
}

// ensureOpenForSymbol opens the document backing a resolved symbol on its
// owning server, returning the client for further requests.
func (h *Handlers) ensureOpenForSymbol(ctx context.Context, r *resolver.Resolved) (*lspclient.Client, lspproto.DocumentURI, error) {
	_, client, uri, err := h.Session.EnsureOpenFile(ctx, r.Path)
	return client, uri, err
}
