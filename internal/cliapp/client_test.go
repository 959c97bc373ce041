package cliapp

import (
	"errors"
	"testing"

	"github.com/dshills/leta/internal/errs"
)

func TestResponseErrorStringWithKind(t *testing.T) {
	e := &responseError{Kind: "NotFound", Detail: "no symbol matched"}
	if got, want := e.Error(), "NotFound: no symbol matched"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestResponseErrorStringWithoutKind(t *testing.T) {
	e := &responseError{Detail: "plain message"}
	if got, want := e.Error(), "plain message"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestExitCodeForResponseErrorUsesKind(t *testing.T) {
	err := &responseError{Kind: string(errs.KindUsageError), Detail: "bad flag"}
	if got := exitCodeFor(err); got != 2 {
		t.Errorf("exitCodeFor(usage) = %d, want 2", got)
	}
}

func TestExitCodeForResponseErrorDefaultsToOne(t *testing.T) {
	err := &responseError{Kind: string(errs.KindNotFound), Detail: "nope"}
	if got := exitCodeFor(err); got != 1 {
		t.Errorf("exitCodeFor(notFound) = %d, want 1", got)
	}
}

func TestExitCodeForNonResponseErrorClassifiesByTaxonomy(t *testing.T) {
	err := errors.New("boom")
	if got := exitCodeFor(err); got != 1 {
		t.Errorf("exitCodeFor(unclassified) = %d, want 1", got)
	}
}
