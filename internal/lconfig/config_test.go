package lconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	if cfg.Daemon.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.Daemon.LogLevel)
	}
	if cfg.Daemon.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.Daemon.RequestTimeout)
	}
	if cfg.Format.TabSize != 4 || !cfg.Format.InsertSpaces {
		t.Errorf("unexpected Format defaults: %+v", cfg.Format)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Daemon.LogLevel != "info" {
		t.Errorf("expected defaults for a missing file, got %+v", cfg)
	}
}

func TestLoadParsesAndOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leta.toml")
	body := `
[daemon]
log_level = "debug"

[format]
tab_size = 2
insert_spaces = false

[workspaces]
roots = ["/tmp/proj"]
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Daemon.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.Daemon.LogLevel)
	}
	if cfg.Format.TabSize != 2 || cfg.Format.InsertSpaces {
		t.Errorf("unexpected Format: %+v", cfg.Format)
	}
	if len(cfg.Workspaces.Roots) != 1 || cfg.Workspaces.Roots[0] != "/tmp/proj" {
		t.Errorf("unexpected Roots: %v", cfg.Workspaces.Roots)
	}
	// Untouched defaults survive a partial override file.
	if cfg.Daemon.RequestTimeout != 30*time.Second {
		t.Errorf("expected untouched RequestTimeout default, got %v", cfg.Daemon.RequestTimeout)
	}
}

func TestLoadInvalidTOMLErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leta.toml")
	if err := os.WriteFile(path, []byte("not = [valid toml"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected an error parsing invalid TOML")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Daemon.LogLevel = "warn"
	data, err := Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "out.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load roundtrip: %v", err)
	}
	if got.Daemon.LogLevel != "warn" {
		t.Errorf("LogLevel after roundtrip = %q, want warn", got.Daemon.LogLevel)
	}
}

func TestStoreGetSet(t *testing.T) {
	s := NewStore(Default())
	if s.Get().Daemon.LogLevel != "info" {
		t.Fatalf("unexpected initial config")
	}
	updated := Default()
	updated.Daemon.LogLevel = "error"
	s.Set(updated)
	if s.Get().Daemon.LogLevel != "error" {
		t.Errorf("expected Set to replace the stored config")
	}
}
