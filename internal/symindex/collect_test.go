package symindex

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/dshills/leta/internal/lspclient"
)

func TestCollectWorkspaceWalksRespectsIgnoreAndReportsWarnings(t *testing.T) {
	root := t.TempDir()
	mustWrite := func(rel, content string) {
		full := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	mustWrite("main.go", "package main\n")
	mustWrite("helper.go", "package main\n")
	mustWrite("README.md", "not a recognized language\n")
	mustWrite("vendor/dep.go", "package dep\n")

	idx, err := New(1 << 20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	serverErr := errors.New("no server configured")
	collected, warnings, err := idx.CollectWorkspace(context.Background(), root, []string{"vendor"}, func(ctx context.Context, languageID string) (*lspclient.Client, error) {
		return nil, serverErr
	})
	if err != nil {
		t.Fatalf("CollectWorkspace: %v", err)
	}
	if len(collected) != 0 {
		t.Errorf("expected zero successful collections (serverFor always errors), got %d", len(collected))
	}

	sort.Strings(warnings)
	if len(warnings) != 2 {
		t.Fatalf("expected warnings for main.go and helper.go only, got %v", warnings)
	}
	for _, w := range warnings {
		if !strings.Contains(w, serverErr.Error()) {
			t.Errorf("warning %q missing underlying error", w)
		}
		if strings.Contains(w, "vendor") || strings.Contains(w, "README") {
			t.Errorf("excluded/unrecognized file leaked into warnings: %q", w)
		}
	}
}

func TestCollectWorkspaceEmptyRoot(t *testing.T) {
	root := t.TempDir()
	idx, err := New(1 << 20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	collected, warnings, err := idx.CollectWorkspace(context.Background(), root, nil, func(ctx context.Context, languageID string) (*lspclient.Client, error) {
		t.Fatal("serverFor should not be called for an empty root")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("CollectWorkspace: %v", err)
	}
	if len(collected) != 0 || len(warnings) != 0 {
		t.Errorf("expected no results for an empty root, got collected=%v warnings=%v", collected, warnings)
	}
}
