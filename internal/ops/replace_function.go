package ops

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dshills/leta/internal/errs"
	"github.com/dshills/leta/internal/lspproto"
)

// ReplaceFunctionParams is replace-function's input (§4.7, §6).
type ReplaceFunctionParams struct {
	SymbolExpr     string `json:"symbolExpr"`
	NewBody        string `json:"newBody"`
	CheckSignature bool   `json:"checkSignature,omitempty"`
}

var replaceableKinds = map[lspproto.SymbolKind]bool{
	lspproto.SymbolKindFunction:    true,
	lspproto.SymbolKindMethod:      true,
	lspproto.SymbolKindConstructor: true,
}

// ReplaceFunction implements the replace-function operation: a
// snapshot-replace-verify-commit-or-restore sequence, step by step per the
// algorithm in §4.7.
func (h *Handlers) ReplaceFunction(ctx context.Context, p ReplaceFunctionParams) (*ReplaceFunctionResult, error) {
	// Step 1: resolve, require kind in {Function, Method, Constructor}.
	resolved, _, err := h.resolveExpr(ctx, p.SymbolExpr)
	if err != nil {
		return nil, err
	}
	if !replaceableKinds[resolved.Kind] {
		return nil, errWrapSentinel(errs.ErrUsage, fmt.Errorf("symbol %q is not a function, method, or constructor", resolved.QualifiedName()))
	}

	var beforeSignature string
	if p.CheckSignature {
		hover, err := h.hoverAtPosition(ctx, resolved.Path, resolved.SelectionRange.Start)
		if err != nil {
			return nil, err
		}
		beforeSignature = firstSignatureLine(hover)
	}

	// Step 2: snapshot file to a backup path.
	original, err := os.ReadFile(resolved.Path)
	if err != nil {
		return nil, errIO(err)
	}
	backupPath := resolved.Path + ".leta-bak"
	if err := os.WriteFile(backupPath, original, 0o644); err != nil {
		return nil, errIO(err)
	}
	restore := func() {
		os.WriteFile(resolved.Path, original, 0o644)
		os.Remove(backupPath)
	}
	commit := func() {
		os.Remove(backupPath)
	}

	// Step 3: replace the byte range from the enclosing range's start to
	// its end with the new body text.
	lines := splitKeepEnds(string(original))
	linesReplaced := resolved.Range.End.Line - resolved.Range.Start.Line + 1
	updated := applyOneEdit(lines, lspproto.TextEdit{
		Range:   resolved.Range,
		NewText: p.NewBody,
	})
	if err := os.WriteFile(resolved.Path, []byte(joinLines(updated)), 0o644); err != nil {
		restore()
		return nil, errIO(err)
	}

	// Step 4: re-open the file on the server (new content-hash triggers a
	// fresh didOpen/didClose+didOpen cycle via EnsureOpen).
	_, client, uri, err := h.Session.EnsureOpenFile(ctx, resolved.Path)
	if err != nil {
		restore()
		return nil, err
	}

	// Step 5: optional signature check.
	if p.CheckSignature {
		newPos := resolved.SelectionRange.Start
		var hover lspproto.Hover
		if err := client.Request(ctx, "textDocument/hover", lspproto.TextDocumentPositionParams{
			TextDocument: lspproto.TextDocumentIdentifier{URI: uri},
			Position:     newPos,
		}, &hover); err != nil {
			restore()
			return nil, err
		}
		afterSignature := firstSignatureLine(hover.Contents.Value)
		if strings.TrimSpace(afterSignature) != strings.TrimSpace(beforeSignature) {
			restore()
			return nil, errs.ErrSignatureChanged
		}
	}

	// Step 6 (implicit): every path above that hit an error already
	// restored and returned; reaching here means commit.
	commit()
	return &ReplaceFunctionResult{Path: h.relPath(resolved.Path), LinesReplaced: linesReplaced}, nil
}
