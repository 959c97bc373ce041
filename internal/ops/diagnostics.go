package ops

import (
	"context"
	"os"
	"time"

	"github.com/dshills/leta/internal/lspproto"
)

// DiagnosticsParams is diagnostics' input (§4.7, §6). Path == "" means
// whole-workspace.
type DiagnosticsParams struct {
	Path        string                      `json:"path,omitempty"`
	MinSeverity lspproto.DiagnosticSeverity `json:"minSeverity,omitempty"`
	HeadLimit   int                         `json:"headLimit,omitempty"`
}

// diagnosticsSettleDelay bounds how long a whole-workspace scan waits for a
// server to push diagnostics for a freshly opened file before moving on.
const diagnosticsSettleDelay = 300 * time.Millisecond

// Diagnostics implements the diagnostics operation. For a single path it
// reads whatever the server has already published for that document
// (opening it first if necessary). For a whole workspace it walks every
// collected file, opportunistically opening each one to receive
// publishDiagnostics, then closing it again (§4.7).
func (h *Handlers) Diagnostics(ctx context.Context, p DiagnosticsParams) (*DiagnosticsResult, error) {
	if p.Path != "" {
		return h.diagnosticsForFile(ctx, p.Path, p.MinSeverity, p.HeadLimit)
	}
	return h.diagnosticsForWorkspace(ctx, p.MinSeverity, p.HeadLimit)
}

func (h *Handlers) diagnosticsForFile(ctx context.Context, path string, minSev lspproto.DiagnosticSeverity, headLimit int) (*DiagnosticsResult, error) {
	_, client, uri, err := h.Session.EnsureOpenFile(ctx, path)
	if err != nil {
		return nil, err
	}
	select {
	case <-time.After(diagnosticsSettleDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	result := &DiagnosticsResult{}
	appendDiagnostics(result, h.relPath(path), client.Diagnostics(uri), minSev, headLimit)
	return result, nil
}

func (h *Handlers) diagnosticsForWorkspace(ctx context.Context, minSev lspproto.DiagnosticSeverity, headLimit int) (*DiagnosticsResult, error) {
	collected, warnings := h.collectAll(ctx, nil)
	result := &DiagnosticsResult{Warnings: warnings}

	for _, w := range h.Session.Workspaces() {
		for _, c := range collected {
			if !withinRoot(w.Root, c.Path) {
				continue
			}
			if _, err := os.Stat(c.Path); err != nil {
				continue
			}
			_, client, uri, err := h.Session.EnsureOpenFile(ctx, c.Path)
			if err != nil {
				result.Warnings = append(result.Warnings, h.relPath(c.Path)+": "+err.Error())
				continue
			}
			select {
			case <-time.After(diagnosticsSettleDelay):
			case <-ctx.Done():
				return result, ctx.Err()
			}
			appendDiagnostics(result, h.relPath(c.Path), client.Diagnostics(uri), minSev, headLimit)
			client.Close(ctx, uri)
			if headLimit > 0 && len(result.Diagnostics) >= headLimit {
				return result, nil
			}
		}
	}
	return result, nil
}

func appendDiagnostics(result *DiagnosticsResult, path string, diags []lspproto.Diagnostic, minSev lspproto.DiagnosticSeverity, headLimit int) {
	for _, d := range diags {
		if minSev != 0 && d.Severity != 0 && d.Severity > minSev {
			continue
		}
		result.Diagnostics = append(result.Diagnostics, DiagnosticHit{
			Path:     path,
			Range:    d.Range,
			Severity: severityName(d.Severity),
			Source:   d.Source,
			Message:  d.Message,
		})
		if headLimit > 0 && len(result.Diagnostics) >= headLimit {
			return
		}
	}
}
