package ipc

import (
	"testing"

	"github.com/tidwall/gjson"

	"github.com/dshills/leta/internal/errs"
)

func TestSuccessEnvelope(t *testing.T) {
	body, err := successEnvelope(struct {
		Hits []string `json:"hits"`
	}{Hits: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("successEnvelope: %v", err)
	}
	r := gjson.ParseBytes(body)
	if !r.Get("ok").Bool() {
		t.Error("expected ok:true")
	}
	if r.Get("error").Exists() {
		t.Error("success envelope must not carry an error field")
	}
	if got := r.Get("payload.hits.0").String(); got != "a" {
		t.Errorf("payload.hits.0 = %q, want \"a\"", got)
	}
}

func TestErrorEnvelope(t *testing.T) {
	body := errorEnvelope(errs.ErrNotFound)
	r := gjson.ParseBytes(body)
	if !r.Get("error").Bool() {
		t.Error("expected error:true")
	}
	if r.Get("ok").Exists() {
		t.Error("error envelope must not carry an ok field")
	}
	if got := r.Get("kind").String(); got != string(errs.KindNotFound) {
		t.Errorf("kind = %q, want %q", got, errs.KindNotFound)
	}
}

func TestErrorEnvelopeAmbiguousCandidates(t *testing.T) {
	amb := &errs.AmbiguousError{Expression: "save", Candidates: []string{"A.save", "B.save"}}
	body := errorEnvelope(amb)
	r := gjson.ParseBytes(body)
	if got := r.Get("kind").String(); got != string(errs.KindAmbiguous) {
		t.Errorf("kind = %q, want Ambiguous", got)
	}
	cands := r.Get("candidates").Array()
	if len(cands) != 2 || cands[0].String() != "A.save" {
		t.Errorf("candidates = %v, want [A.save B.save]", cands)
	}
}
