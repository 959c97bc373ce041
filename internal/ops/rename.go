package ops

import (
	"context"
	"os"

	"github.com/dshills/leta/internal/lspproto"
)

// RenameParams is rename's input (§4.7, §6).
type RenameParams struct {
	SymbolExpr string `json:"symbolExpr"`
	NewName    string `json:"newName"`
}

// Rename implements the rename operation: requests a WorkspaceEdit from
// the server and applies it with applyWorkspaceEdit (all text edits
// computed in memory before any file is written; §4.7, §9).
func (h *Handlers) Rename(ctx context.Context, p RenameParams) (*EditResult, error) {
	resolved, _, err := h.resolveExpr(ctx, p.SymbolExpr)
	if err != nil {
		return nil, err
	}
	client, uri, err := h.ensureOpenForSymbol(ctx, resolved)
	if err != nil {
		return nil, err
	}

	var edit lspproto.WorkspaceEdit
	if err := client.Request(ctx, "textDocument/rename", lspproto.RenameParams{
		TextDocumentPositionParams: lspproto.TextDocumentPositionParams{
			TextDocument: lspproto.TextDocumentIdentifier{URI: uri},
			Position:     resolved.SelectionRange.Start,
		},
		NewName: p.NewName,
	}, &edit); err != nil {
		return nil, err
	}

	files, err := applyWorkspaceEdit(edit)
	if err != nil {
		return nil, err
	}
	return &EditResult{Files: h.relPaths(files)}, nil
}

// applyWorkspaceEdit stages every text edit in memory first, then writes
// the staged files only once every file has been successfully staged, so a
// file that cannot be read aborts the edit before any text is written.
// RenameFile operations in DocumentChanges are performed as they are met
// during staging, and a write that fails part-way does not roll back the
// files already written.
func applyWorkspaceEdit(edit lspproto.WorkspaceEdit) ([]string, error) {
	type staged struct {
		path    string
		content []byte
	}
	var out []staged

	if len(edit.DocumentChanges) > 0 {
		for _, dc := range edit.DocumentChanges {
			if dc.TextDocumentEdit != nil {
				content, path, err := applyTextDocumentEdit(*dc.TextDocumentEdit)
				if err != nil {
					return nil, err
				}
				out = append(out, staged{path, content})
			}
			if dc.RenameFile != nil {
				if err := os.Rename(lspproto.URIToFilePath(dc.RenameFile.OldURI), lspproto.URIToFilePath(dc.RenameFile.NewURI)); err != nil {
					return nil, errIO(err)
				}
			}
		}
	} else {
		for uri, edits := range edit.Changes {
			content, path, err := applyEditsToFile(uri, edits)
			if err != nil {
				return nil, err
			}
			out = append(out, staged{path, content})
		}
	}

	var files []string
	for _, s := range out {
		if err := os.WriteFile(s.path, s.content, 0o644); err != nil {
			return nil, errIO(err)
		}
		files = append(files, s.path)
	}
	return files, nil
}

func applyTextDocumentEdit(tde lspproto.TextDocumentEdit) ([]byte, string, error) {
	return applyEditsToFile(tde.TextDocument.URI, tde.Edits)
}

func applyEditsToFile(uri lspproto.DocumentURI, edits []lspproto.TextEdit) ([]byte, string, error) {
	path := lspproto.URIToFilePath(uri)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, "", errIO(err)
	}
	lines := splitKeepEnds(string(content))

	// Apply edits last-to-first by start position so earlier offsets stay
	// valid as later edits in the list are applied.
	sortEditsDescending(edits)
	for _, e := range edits {
		lines = applyOneEdit(lines, e)
	}
	return []byte(joinLines(lines)), path, nil
}
