package cliapp

import (
	"testing"

	"github.com/dshills/leta/internal/lspproto"
	"github.com/dshills/leta/internal/ops"
)

func TestParseCommandGrep(t *testing.T) {
	op, params, err := parseCommand("grep", []string{"-C", "-k", "function", "-x", "vendor/**", "Foo.*Bar", `^pkg/`})
	if err != nil {
		t.Fatalf("parseCommand: %v", err)
	}
	if op != "grep" {
		t.Fatalf("op = %q, want grep", op)
	}
	p, ok := params.(ops.GrepParams)
	if !ok {
		t.Fatalf("params type = %T, want ops.GrepParams", params)
	}
	if p.Pattern != "Foo.*Bar" || p.PathRegex != `^pkg/` {
		t.Errorf("unexpected params: %+v", p)
	}
	if !p.CaseSensitive {
		t.Error("expected CaseSensitive true from -C")
	}
	if len(p.Kinds) != 1 || p.Kinds[0] != lspproto.SymbolKindFunction {
		t.Errorf("expected one Function kind, got %v", p.Kinds)
	}
	if len(p.ExcludePatterns) != 1 || p.ExcludePatterns[0] != "vendor/**" {
		t.Errorf("unexpected exclude patterns: %v", p.ExcludePatterns)
	}
}

func TestParseCommandGrepMissingPattern(t *testing.T) {
	if _, _, err := parseCommand("grep", nil); err == nil {
		t.Fatal("expected error for missing PATTERN")
	}
}

func TestParseCommandRename(t *testing.T) {
	op, params, err := parseCommand("rename", []string{"Foo.Bar", "Baz"})
	if err != nil {
		t.Fatalf("parseCommand: %v", err)
	}
	if op != "rename" {
		t.Fatalf("op = %q, want rename", op)
	}
	p := params.(ops.RenameParams)
	if p.SymbolExpr != "Foo.Bar" || p.NewName != "Baz" {
		t.Errorf("unexpected params: %+v", p)
	}
}

func TestParseCommandRenameWrongArity(t *testing.T) {
	if _, _, err := parseCommand("rename", []string{"OnlyOne"}); err == nil {
		t.Fatal("expected usage error for rename with one argument")
	}
}

func TestParseCommandCalls(t *testing.T) {
	op, params, err := parseCommand("calls", []string{"--from", "main", "--to", "Validate", "--max-depth", "5"})
	if err != nil {
		t.Fatalf("parseCommand: %v", err)
	}
	if op != "calls" {
		t.Fatalf("op = %q, want calls", op)
	}
	p := params.(ops.CallsParams)
	if p.From != "main" || p.To != "Validate" || p.MaxDepth != 5 {
		t.Errorf("unexpected params: %+v", p)
	}
}

func TestParseCommandFiles(t *testing.T) {
	op, params, err := parseCommand("files", []string{"-x", "*.log", "-i", "*.go", "src"})
	if err != nil {
		t.Fatalf("parseCommand: %v", err)
	}
	if op != "files" {
		t.Fatalf("op = %q, want files", op)
	}
	p := params.(ops.FilesParams)
	if p.Path != "src" || len(p.ExcludePatterns) != 1 || len(p.IncludePatterns) != 1 {
		t.Errorf("unexpected params: %+v", p)
	}
}

func TestParseCommandWorkspaceDefaultsToCwd(t *testing.T) {
	op, params, err := parseCommand("workspace", []string{"add"})
	if err != nil {
		t.Fatalf("parseCommand: %v", err)
	}
	if op != "workspace.add" {
		t.Fatalf("op = %q, want workspace.add", op)
	}
	p := params.(struct {
		Root string `json:"root"`
	})
	if p.Root == "" {
		t.Error("expected Root to default to the working directory")
	}
}

func TestParseCommandUnknown(t *testing.T) {
	if _, _, err := parseCommand("frobnicate", nil); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestParseSeverity(t *testing.T) {
	cases := map[string]bool{"error": true, "warn": true, "information": true, "hint": true, "bogus": false}
	for s, valid := range cases {
		got := parseSeverity(s)
		if valid && got == 0 {
			t.Errorf("parseSeverity(%q) = 0, want nonzero", s)
		}
		if !valid && got != 0 {
			t.Errorf("parseSeverity(%q) = %v, want 0", s, got)
		}
	}
}
