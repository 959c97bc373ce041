package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyNil(t *testing.T) {
	if got := Classify(nil); got != "" {
		t.Errorf("Classify(nil) = %q, want empty", got)
	}
}

func TestClassifySentinels(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{ErrNotFound, KindNotFound},
		{ErrTimedOut, KindTimedOut},
		{ErrServerDead, KindServerDead},
		{ErrRestarted, KindRestarted},
		{ErrProtocol, KindProtocolError},
		{ErrIO, KindIOError},
		{ErrUsage, KindUsageError},
		{ErrSignatureChanged, KindSignatureChanged},
		{ErrPathNotFound, KindPathNotFound},
	}
	for _, c := range cases {
		if got := Classify(c.err); got != c.want {
			t.Errorf("Classify(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}

func TestClassifyWrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("opening file: %w", ErrIO)
	if got := Classify(wrapped); got != KindIOError {
		t.Errorf("Classify(wrapped) = %q, want %q", got, KindIOError)
	}
}

func TestClassifyAmbiguousError(t *testing.T) {
	err := &AmbiguousError{Expression: "Foo", Candidates: []string{"a.Foo", "b.Foo"}}
	if got := Classify(err); got != KindAmbiguous {
		t.Errorf("Classify(ambiguous) = %q, want %q", got, KindAmbiguous)
	}
}

func TestClassifyNotSupportedError(t *testing.T) {
	err := &NotSupportedError{Capability: "hoverProvider", Server: "gopls"}
	if got := Classify(err); got != KindNotSupported {
		t.Errorf("Classify(notSupported) = %q, want %q", got, KindNotSupported)
	}
}

func TestClassifyRPCError(t *testing.T) {
	err := &RPCError{Code: -32601, Message: "method not found"}
	if got := Classify(err); got != KindServerError {
		t.Errorf("Classify(rpc) = %q, want %q", got, KindServerError)
	}
}

func TestClassifyServerErrorUnwrapsInnerKind(t *testing.T) {
	err := &ServerError{LanguageID: "go", Err: ErrTimedOut}
	if got := Classify(err); got != KindTimedOut {
		t.Errorf("Classify(serverError wrapping timeout) = %q, want %q", got, KindTimedOut)
	}
}

func TestClassifyUnknownErrorIsInternal(t *testing.T) {
	if got := Classify(errors.New("boom")); got != KindInternal {
		t.Errorf("Classify(unknown) = %q, want %q", got, KindInternal)
	}
}

func TestExitCodeSuccess(t *testing.T) {
	if got := ExitCode(""); got != 0 {
		t.Errorf("ExitCode(\"\") = %d, want 0", got)
	}
}

func TestExitCodeUsageError(t *testing.T) {
	if got := ExitCode(KindUsageError); got != 2 {
		t.Errorf("ExitCode(UsageError) = %d, want 2", got)
	}
}

func TestExitCodeOtherKindsAreOne(t *testing.T) {
	for _, k := range []Kind{KindNotFound, KindAmbiguous, KindServerDead, KindInternal} {
		if got := ExitCode(k); got != 1 {
			t.Errorf("ExitCode(%q) = %d, want 1", k, got)
		}
	}
}

func TestServerErrorUnwrap(t *testing.T) {
	inner := errors.New("inner")
	err := &ServerError{LanguageID: "go", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("expected errors.Is to see through ServerError via Unwrap")
	}
}

func TestRPCErrorMessageWithAndWithoutData(t *testing.T) {
	noData := &RPCError{Code: 1, Message: "oops"}
	if got := noData.Error(); got != "rpc error 1: oops" {
		t.Errorf("Error() = %q", got)
	}
	withData := &RPCError{Code: 2, Message: "oops", Data: "extra"}
	if got := withData.Error(); got != "rpc error 2: oops (data: extra)" {
		t.Errorf("Error() = %q", got)
	}
}
