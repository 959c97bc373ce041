package ops

import (
	"context"
	"os"

	"github.com/dshills/leta/internal/errs"
	"github.com/dshills/leta/internal/lspproto"
)

// Format implements the format operation: textDocument/formatting using
// the configured tab size / insert-spaces, applied back to the file
// in-place (§4.7).
func (h *Handlers) Format(ctx context.Context, path string) (*EditResult, error) {
	_, client, uri, err := h.Session.EnsureOpenFile(ctx, path)
	if err != nil {
		return nil, err
	}
	if !lspproto.HasCapability(client.Capabilities().DocumentFormattingProvider) {
		return nil, &errs.NotSupportedError{Capability: "documentFormattingProvider", Server: client.LanguageID()}
	}

	var edits []lspproto.TextEdit
	if err := client.Request(ctx, "textDocument/formatting", lspproto.DocumentFormattingParams{
		TextDocument: lspproto.TextDocumentIdentifier{URI: uri},
		Options:      h.formatOptions(),
	}, &edits); err != nil {
		return nil, err
	}
	if len(edits) == 0 {
		return &EditResult{}, nil
	}

	content, path2, err := applyEditsToFile(uri, edits)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path2, content, 0o644); err != nil {
		return nil, errIO(err)
	}
	return &EditResult{Files: []string{h.relPath(path2)}}, nil
}

// OrganizeImports implements the organize-imports operation: requests
// code actions of kind "source.organizeImports" and applies the first
// one's WorkspaceEdit, if any (§4.7).
func (h *Handlers) OrganizeImports(ctx context.Context, path string) (*EditResult, error) {
	_, client, uri, err := h.Session.EnsureOpenFile(ctx, path)
	if err != nil {
		return nil, err
	}
	if !lspproto.HasCapability(client.Capabilities().CodeActionProvider) {
		return nil, &errs.NotSupportedError{Capability: "codeActionProvider", Server: client.LanguageID()}
	}

	var actions []lspproto.CodeAction
	if err := client.Request(ctx, "textDocument/codeAction", lspproto.CodeActionParams{
		TextDocument: lspproto.TextDocumentIdentifier{URI: uri},
		Context:      lspproto.CodeActionContext{Only: []string{"source.organizeImports"}},
	}, &actions); err != nil {
		return nil, err
	}

	for _, a := range actions {
		if a.Kind != "source.organizeImports" || a.Edit == nil {
			continue
		}
		files, err := applyWorkspaceEdit(*a.Edit)
		if err != nil {
			return nil, err
		}
		return &EditResult{Files: h.relPaths(files)}, nil
	}
	return &EditResult{}, nil
}

func (h *Handlers) formatOptions() lspproto.FormattingOptions {
	cfg := h.Config.Get()
	if cfg == nil {
		return lspproto.FormattingOptions{TabSize: 4, InsertSpaces: true}
	}
	return lspproto.FormattingOptions{TabSize: cfg.Format.TabSize, InsertSpaces: cfg.Format.InsertSpaces}
}
