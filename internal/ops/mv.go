package ops

import (
	"context"
	"os"

	"github.com/dshills/leta/internal/lspproto"
)

// MvParams is mv's input (§4.7, §6).
type MvParams struct {
	OldPath string `json:"oldPath"`
	NewPath string `json:"newPath"`
}

// Mv implements the mv operation: requests workspace/willRenameFiles when
// the server advertises it, applies the returned WorkspaceEdit, then
// performs the on-disk rename. Servers that never registered the
// capability still get the rename, reporting zero edited files (§4.7).
func (h *Handlers) Mv(ctx context.Context, p MvParams) (*MoveResult, error) {
	w, err := h.Session.WorkspaceForFile(p.OldPath)
	if err != nil {
		return nil, err
	}

	languageID := lspproto.DetectLanguageID(p.OldPath)
	var edited []string

	if languageID != "" {
		client, err := h.Session.Ensure(ctx, w, languageID)
		if err == nil && supportsWillRename(client.Capabilities()) {
			oldURI := lspproto.FilePathToURI(p.OldPath)
			newURI := lspproto.FilePathToURI(p.NewPath)

			var edit lspproto.WorkspaceEdit
			if reqErr := client.Request(ctx, "workspace/willRenameFiles", lspproto.RenameFilesParams{
				Files: []lspproto.FileRename{{OldURI: oldURI, NewURI: newURI}},
			}, &edit); reqErr == nil {
				edited, err = applyWorkspaceEdit(edit)
				if err != nil {
					return nil, err
				}
			}
		}
	}

	if err := os.Rename(p.OldPath, p.NewPath); err != nil {
		return nil, errIO(err)
	}

	return &MoveResult{Files: h.relPaths(edited)}, nil
}

func supportsWillRename(caps lspproto.ServerCapabilities) bool {
	return caps.Workspace != nil && caps.Workspace.FileOperations != nil && caps.Workspace.FileOperations.WillRename != nil
}
