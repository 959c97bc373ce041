package applog

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelString(t *testing.T) {
	cases := []struct {
		l    Level
		want string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}
	for _, c := range cases {
		if got := c.l.String(); got != c.want {
			t.Errorf("Level(%d).String() = %q, want %q", c.l, got, c.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"DEBUG":   LevelDebug,
		"warn":    LevelWarn,
		"WARN":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"ERROR":   LevelError,
		"info":    LevelInfo,
		"":        LevelInfo,
		"bogus":   LevelInfo,
	}
	for s, want := range cases {
		if got := ParseLevel(s); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)
	l.Infof("should not appear")
	l.Warnf("should appear")
	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Errorf("expected Info to be filtered out, got: %s", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("expected Warn to be logged, got: %s", out)
	}
}

func TestLoggerIncludesComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelDebug).WithComponent("workspace").WithField("root", "/tmp/proj")
	l.Infof("opened")
	out := buf.String()
	if !strings.Contains(out, "workspace") {
		t.Errorf("expected component in output, got: %s", out)
	}
	if !strings.Contains(out, "root=/tmp/proj") {
		t.Errorf("expected field in output, got: %s", out)
	}
}

func TestWithFieldsMergesOverParent(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, LevelDebug).WithField("a", 1)
	child := base.WithFields(map[string]any{"b": 2})
	child.Infof("msg")
	out := buf.String()
	if !strings.Contains(out, "a=1") || !strings.Contains(out, "b=2") {
		t.Errorf("expected both fields present, got: %s", out)
	}
}

func TestNewNullDiscardsOutput(t *testing.T) {
	l := NewNull()
	l.Errorf("this goes nowhere") // must not panic
}

func TestSetDefaultAndDefault(t *testing.T) {
	var buf bytes.Buffer
	custom := New(&buf, LevelDebug)
	SetDefault(custom)
	defer SetDefault(NewNull())

	Default().Infof("via default")
	if !strings.Contains(buf.String(), "via default") {
		t.Errorf("expected message through the installed default logger")
	}
}
