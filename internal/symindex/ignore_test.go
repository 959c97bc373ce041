package symindex

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadIgnoreDefaultsExcludeDotGit(t *testing.T) {
	dir := t.TempDir()
	is := LoadIgnore(dir, nil)
	if !is.Matches(".git/config", false) {
		t.Error("expected .git to be excluded by default")
	}
	if is.Matches("main.go", false) {
		t.Error("did not expect main.go to be excluded")
	}
}

func TestLoadIgnoreReadsGitignore(t *testing.T) {
	dir := t.TempDir()
	content := "# comment\n*.log\n/build/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(content), 0o644); err != nil {
		t.Fatalf("write .gitignore: %v", err)
	}
	is := LoadIgnore(dir, nil)
	if !is.Matches("debug.log", false) {
		t.Error("expected *.log pattern to match debug.log")
	}
	if !is.Matches("build/output.bin", false) {
		t.Error("expected rooted /build/ pattern to match build/output.bin")
	}
	if is.Matches("src/main.go", false) {
		t.Error("did not expect src/main.go to be excluded")
	}
}

func TestLoadIgnoreExtraExcludes(t *testing.T) {
	dir := t.TempDir()
	is := LoadIgnore(dir, []string{"vendor"})
	if !is.Matches("vendor/pkg/file.go", false) {
		t.Error("expected extra exclude pattern to match")
	}
}

func TestIgnoreSetNegationReincludes(t *testing.T) {
	is := &IgnoreSet{}
	is.addLine("*.log")
	is.addLine("!important.log")
	if is.Matches("debug.log", false) == false {
		t.Error("expected debug.log to be excluded")
	}
	if is.Matches("important.log", false) {
		t.Error("expected a later negation to re-include important.log")
	}
}

func TestIgnoreSetBareNameMatchesAnyDepth(t *testing.T) {
	is := &IgnoreSet{}
	is.addLine("node_modules")
	if !is.Matches("pkg/sub/node_modules/x.js", false) {
		t.Error("expected a bare-name pattern to match at any depth")
	}
}
