package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/leta/internal/lspproto"
)

func TestApplyEditsToFileSingleEdit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.go")
	if err := os.WriteFile(path, []byte("func Foo() {}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	uri := lspproto.FilePathToURI(path)
	edits := []lspproto.TextEdit{
		{
			Range: lspproto.Range{
				Start: lspproto.Position{Line: 0, Character: 5},
				End:   lspproto.Position{Line: 0, Character: 8},
			},
			NewText: "Bar",
		},
	}
	content, gotPath, err := applyEditsToFile(uri, edits)
	if err != nil {
		t.Fatalf("applyEditsToFile: %v", err)
	}
	if gotPath != path {
		t.Errorf("path = %q, want %q", gotPath, path)
	}
	if string(content) != "func Bar() {}\n" {
		t.Errorf("content = %q", content)
	}
}

func TestApplyWorkspaceEditViaChangesMapWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.go")
	if err := os.WriteFile(path, []byte("old\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	uri := lspproto.FilePathToURI(path)

	edit := lspproto.WorkspaceEdit{
		Changes: map[lspproto.DocumentURI][]lspproto.TextEdit{
			uri: {
				{
					Range:   lspproto.Range{Start: lspproto.Position{Line: 0, Character: 0}, End: lspproto.Position{Line: 0, Character: 3}},
					NewText: "new",
				},
			},
		},
	}
	files, err := applyWorkspaceEdit(edit)
	if err != nil {
		t.Fatalf("applyWorkspaceEdit: %v", err)
	}
	if len(files) != 1 || files[0] != path {
		t.Fatalf("unexpected files: %v", files)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "new\n" {
		t.Errorf("content = %q, want new\\n", got)
	}
}

func TestApplyWorkspaceEditPrefersDocumentChangesOverChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.go")
	if err := os.WriteFile(path, []byte("old\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	uri := lspproto.FilePathToURI(path)

	edit := lspproto.WorkspaceEdit{
		DocumentChanges: []lspproto.DocumentChange{
			{
				TextDocumentEdit: &lspproto.TextDocumentEdit{
					TextDocument: lspproto.VersionedTextDocumentIdentifier{URI: uri},
					Edits: []lspproto.TextEdit{
						{Range: lspproto.Range{Start: lspproto.Position{Line: 0, Character: 0}, End: lspproto.Position{Line: 0, Character: 3}}, NewText: "doc"},
					},
				},
			},
		},
		Changes: map[lspproto.DocumentURI][]lspproto.TextEdit{
			uri: {{Range: lspproto.Range{Start: lspproto.Position{Line: 0, Character: 0}, End: lspproto.Position{Line: 0, Character: 3}}, NewText: "should-not-apply"}},
		},
	}
	files, err := applyWorkspaceEdit(edit)
	if err != nil {
		t.Fatalf("applyWorkspaceEdit: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("unexpected files: %v", files)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "doc\n" {
		t.Errorf("expected DocumentChanges to take priority, got %q", got)
	}
}
