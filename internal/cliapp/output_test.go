package cliapp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func TestRenderPlainGrep(t *testing.T) {
	payload := gjson.Parse(`{"hits":[{"path":"a.go","line":10,"name":"Foo","kind":"Function"}],"warnings":["bar.go: timed out"]}`)
	var buf bytes.Buffer
	render(&buf, payload, false, "grep")
	out := buf.String()
	if !strings.Contains(out, "a.go:10 [Function] Foo") {
		t.Errorf("missing hit line, got:\n%s", out)
	}
	if !strings.Contains(out, "warning: bar.go: timed out") {
		t.Errorf("missing warning line, got:\n%s", out)
	}
}

func TestRenderJSONPassesThroughPrettyPrinted(t *testing.T) {
	payload := gjson.Parse(`{"hits":[]}`)
	var buf bytes.Buffer
	render(&buf, payload, true, "grep")
	if !strings.Contains(buf.String(), `"hits"`) {
		t.Errorf("expected JSON output to contain the payload, got:\n%s", buf.String())
	}
}

func TestRenderFilesTree(t *testing.T) {
	payload := gjson.Parse(`{"roots":[{"name":"proj","isDir":true,"children":[{"name":"main.go","isDir":false}]}]}`)
	var buf bytes.Buffer
	render(&buf, payload, false, "files")
	out := buf.String()
	if !strings.Contains(out, "proj/") || !strings.Contains(out, "  main.go") {
		t.Errorf("unexpected tree output:\n%s", out)
	}
}

func TestRenderCallsPath(t *testing.T) {
	payload := gjson.Parse(`{"path":[{"name":"main","path":"main.go","line":1},{"name":"Validate","path":"v.go","line":5}]}`)
	var buf bytes.Buffer
	render(&buf, payload, false, "calls")
	out := buf.String()
	if !strings.Contains(out, "main (main.go:1)") || !strings.Contains(out, "Validate (v.go:5)") {
		t.Errorf("unexpected path output:\n%s", out)
	}
}

func TestTruncateNameShort(t *testing.T) {
	if got := truncateName("short.go", 80); got != "short.go" {
		t.Errorf("truncateName should be a no-op under the width limit, got %q", got)
	}
}

func TestTruncateNameLong(t *testing.T) {
	long := strings.Repeat("a", 100)
	got := truncateName(long, 10)
	if uniWidth := len([]rune(got)); uniWidth > 10 {
		t.Errorf("truncated name has %d runes, want <= 10", uniWidth)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncated name should end with an ellipsis, got %q", got)
	}
}
