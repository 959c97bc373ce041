package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/leta/internal/symindex"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestBuildFileTreeBasic(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "main.go"), "package main")
	writeTestFile(t, filepath.Join(root, "sub", "a.go"), "package sub")

	ignore := symindex.LoadIgnore(root, nil)
	node, err := buildFileTree(root, root, ignore, nil, nil)
	if err != nil {
		t.Fatalf("buildFileTree: %v", err)
	}
	if !node.IsDir || len(node.Children) != 2 {
		t.Fatalf("expected root dir with 2 children, got %+v", node)
	}
}

func TestBuildFileTreeRespectsIgnore(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "main.go"), "package main")
	writeTestFile(t, filepath.Join(root, ".git", "HEAD"), "ref: refs/heads/main")

	ignore := symindex.LoadIgnore(root, nil)
	node, err := buildFileTree(root, root, ignore, nil, nil)
	if err != nil {
		t.Fatalf("buildFileTree: %v", err)
	}
	for _, c := range node.Children {
		if c.Name == ".git" {
			t.Error("expected .git to be excluded from the tree")
		}
	}
}

func TestBuildFileTreeIncludeFilterPrunesEmptyDirs(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "a.go"), "package a")
	writeTestFile(t, filepath.Join(root, "sub", "b.md"), "# doc")

	ignore := symindex.LoadIgnore(root, nil)
	node, err := buildFileTree(root, root, ignore, []string{"*.go"}, nil)
	if err != nil {
		t.Fatalf("buildFileTree: %v", err)
	}
	var names []string
	for _, c := range node.Children {
		names = append(names, c.Name)
	}
	if len(names) != 1 || names[0] != "a.go" {
		t.Errorf("expected only a.go to survive the *.go include filter, got %v", names)
	}
}

func TestMatchesFileFiltersIncludeAndFilter(t *testing.T) {
	if !matchesFileFilters("main.go", nil, nil) {
		t.Error("no filters should match everything")
	}
	if !matchesFileFilters("main.go", []string{"*.go"}, nil) {
		t.Error("expected *.go include to match main.go")
	}
	if matchesFileFilters("main.md", []string{"*.go"}, nil) {
		t.Error("expected *.go include not to match main.md")
	}
}

func TestAnyGlobMatchesBaseOrFullPath(t *testing.T) {
	if !anyGlobMatches("pkg/main.go", []string{"*.go"}) {
		t.Error("expected base-name glob to match a nested path")
	}
	if !anyGlobMatches("main.go", []string{"main.go"}) {
		t.Error("expected exact full-path match to succeed")
	}
	if anyGlobMatches("main.go", []string{"*.md"}) {
		t.Error("expected a non-matching pattern to fail")
	}
}
