package ops

import (
	"testing"

	"github.com/dshills/leta/internal/lspproto"
)

func TestSupportsWillRenameNilWorkspace(t *testing.T) {
	if supportsWillRename(lspproto.ServerCapabilities{}) {
		t.Error("expected false when Workspace is nil")
	}
}

func TestSupportsWillRenameNilFileOperations(t *testing.T) {
	caps := lspproto.ServerCapabilities{Workspace: &lspproto.WorkspaceServerCapabilities{}}
	if supportsWillRename(caps) {
		t.Error("expected false when FileOperations is nil")
	}
}

func TestSupportsWillRenameTrue(t *testing.T) {
	caps := lspproto.ServerCapabilities{
		Workspace: &lspproto.WorkspaceServerCapabilities{
			FileOperations: &lspproto.FileOperationsServerCapabilities{
				WillRename: &lspproto.FileOperationRegistrationOptions{},
			},
		},
	}
	if !supportsWillRename(caps) {
		t.Error("expected true when WillRename is registered")
	}
}
