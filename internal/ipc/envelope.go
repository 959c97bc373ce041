package ipc

import (
	"encoding/json"
	"errors"

	"github.com/tidwall/sjson"

	"github.com/dshills/leta/internal/errs"
)

// Request is one IPC call: {op, params, format} per §4.9.
type Request struct {
	Op     string          `json:"op"`
	Params json.RawMessage `json:"params,omitempty"`
	Format string          `json:"format,omitempty"` // "plain" | "json" | "tree"
}

// successEnvelope builds the `{ok, payload}` response shape without a
// full struct round-trip: sjson patches the marshaled payload straight
// into an envelope skeleton.
func successEnvelope(payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	out, err := sjson.SetBytes([]byte(`{"ok":true}`), "payload", json.RawMessage(body))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// errorEnvelope builds the `{error, kind, detail}` response shape for a
// failed request, classifying err via the shared taxonomy (§7).
func errorEnvelope(err error) []byte {
	kind := errs.Classify(err)
	out := []byte(`{"error":true}`)
	out, _ = sjson.SetBytes(out, "kind", string(kind))
	out, _ = sjson.SetBytes(out, "detail", err.Error())
	var amb *errs.AmbiguousError
	if errors.As(err, &amb) {
		out, _ = sjson.SetBytes(out, "candidates", amb.Candidates)
	}
	return out
}
