package ops

import (
	"context"

	"github.com/dshills/leta/internal/lspproto"
)

// Refs implements the refs operation: strictly the server's references
// response (§4.7).
func (h *Handlers) Refs(ctx context.Context, symbolExpr string) (*RefsResult, error) {
	resolved, _, err := h.resolveExpr(ctx, symbolExpr)
	if err != nil {
		return nil, err
	}
	client, uri, err := h.ensureOpenForSymbol(ctx, resolved)
	if err != nil {
		return nil, err
	}

	var locs []lspproto.Location
	if err := client.Request(ctx, "textDocument/references", lspproto.ReferenceParams{
		TextDocumentPositionParams: lspproto.TextDocumentPositionParams{
			TextDocument: lspproto.TextDocumentIdentifier{URI: uri},
			Position:     resolved.SelectionRange.Start,
		},
		Context: lspproto.ReferenceContext{IncludeDeclaration: false},
	}, &locs); err != nil {
		return nil, err
	}

	result := &RefsResult{}
	for _, loc := range locs {
		result.Locations = append(result.Locations, SymbolHit{
			Path:  h.relPath(lspproto.URIToFilePath(loc.URI)),
			Line:  loc.Range.Start.Line + 1,
			Range: loc.Range,
		})
	}
	return result, nil
}
