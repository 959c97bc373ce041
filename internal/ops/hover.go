package ops

import (
	"context"
	"os"
	"strings"

	"github.com/dshills/leta/internal/errs"
	"github.com/dshills/leta/internal/hovercache"
	"github.com/dshills/leta/internal/lspclient"
	"github.com/dshills/leta/internal/lspproto"
)

// Hover implements the hover operation at a resolved symbol's selection
// range start.
func (h *Handlers) Hover(ctx context.Context, symbolExpr string) (*HoverResult, error) {
	resolved, _, err := h.resolveExpr(ctx, symbolExpr)
	if err != nil {
		return nil, err
	}
	text, err := h.hoverAtPosition(ctx, resolved.Path, resolved.SelectionRange.Start)
	if err != nil {
		return nil, err
	}
	return &HoverResult{Text: text}, nil
}

// hoverAtPosition fetches hover text at pos in path, consulting the Hover
// Cache first (§4.8 invariant: only read back if content-hash matches
// on-disk).
func (h *Handlers) hoverAtPosition(ctx context.Context, path string, pos lspproto.Position) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", errIO(err)
	}
	hash := lspclient.HashContent(content)
	uri := lspproto.FilePathToURI(path)

	if h.Hover != nil {
		key := hovercache.Key{URI: uri, Line: pos.Line, Column: pos.Character, ContentHash: hash}
		if text, ok := h.Hover.Get(ctx, key); ok {
			return text, nil
		}
	}

	_, client, _, err := h.Session.EnsureOpenFile(ctx, path)
	if err != nil {
		return "", err
	}

	var result lspproto.Hover
	if err := client.Request(ctx, "textDocument/hover", lspproto.TextDocumentPositionParams{
		TextDocument: lspproto.TextDocumentIdentifier{URI: uri},
		Position:     pos,
	}, &result); err != nil {
		return "", err
	}

	text := result.Contents.Value
	if h.Hover != nil {
		key := hovercache.Key{URI: uri, Line: pos.Line, Column: pos.Character, ContentHash: hash}
		h.Hover.Set(ctx, key, text)
	}
	return text, nil
}

// firstSignatureLine extracts the first non-empty line of a hover string,
// skipping markdown code-fence lines, used by replace-function's signature
// check (§4.7 step 5).
func firstSignatureLine(hover string) string {
	for _, line := range strings.Split(hover, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			continue
		}
		trimmed = strings.Trim(trimmed, "`")
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func errIO(err error) error {
	return errWrapSentinel(errs.ErrIO, err)
}
