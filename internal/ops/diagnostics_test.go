package ops

import (
	"testing"

	"github.com/dshills/leta/internal/lspproto"
)

func TestAppendDiagnosticsFiltersBySeverity(t *testing.T) {
	diags := []lspproto.Diagnostic{
		{Severity: lspproto.SeverityError, Message: "err"},
		{Severity: lspproto.SeverityHint, Message: "hint"},
	}
	result := &DiagnosticsResult{}
	appendDiagnostics(result, "a.go", diags, lspproto.SeverityWarning, 0)
	if len(result.Diagnostics) != 1 || result.Diagnostics[0].Message != "err" {
		t.Errorf("expected only the error-severity diagnostic to survive, got %+v", result.Diagnostics)
	}
}

func TestAppendDiagnosticsNoFilterWhenMinSeverityZero(t *testing.T) {
	diags := []lspproto.Diagnostic{
		{Severity: lspproto.SeverityError, Message: "err"},
		{Severity: lspproto.SeverityHint, Message: "hint"},
	}
	result := &DiagnosticsResult{}
	appendDiagnostics(result, "a.go", diags, 0, 0)
	if len(result.Diagnostics) != 2 {
		t.Errorf("expected both diagnostics with no severity filter, got %d", len(result.Diagnostics))
	}
}

func TestAppendDiagnosticsRespectsHeadLimit(t *testing.T) {
	diags := []lspproto.Diagnostic{
		{Severity: lspproto.SeverityError, Message: "one"},
		{Severity: lspproto.SeverityError, Message: "two"},
		{Severity: lspproto.SeverityError, Message: "three"},
	}
	result := &DiagnosticsResult{}
	appendDiagnostics(result, "a.go", diags, 0, 2)
	if len(result.Diagnostics) != 2 {
		t.Errorf("expected headLimit to cap at 2, got %d", len(result.Diagnostics))
	}
}
