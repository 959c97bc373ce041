package main

import (
	"os"
	"testing"
)

func TestRunVersionFlagExitsZero(t *testing.T) {
	for _, flag := range []string{"--version", "-v"} {
		if got := run([]string{flag}); got != 0 {
			t.Errorf("run([%q]) = %d, want 0", flag, got)
		}
	}
}

func TestRunVersionFlagPrintsBuildInfo(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Pipe: %v", err)
	}
	old := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = old }()

	run([]string{"--version"})
	w.Close()

	buf := make([]byte, 256)
	n, _ := r.Read(buf)
	out := string(buf[:n])
	if out == "" {
		t.Error("expected version output on stdout")
	}
}
