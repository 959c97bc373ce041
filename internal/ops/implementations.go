package ops

import (
	"context"

	"github.com/dshills/leta/internal/errs"
	"github.com/dshills/leta/internal/lspproto"
)

// Implementations implements the implementations operation: single-level,
// no transitive closure unless the server itself returns one (§4.7).
func (h *Handlers) Implementations(ctx context.Context, symbolExpr string) (*RefsResult, error) {
	resolved, _, err := h.resolveExpr(ctx, symbolExpr)
	if err != nil {
		return nil, err
	}
	client, uri, err := h.ensureOpenForSymbol(ctx, resolved)
	if err != nil {
		return nil, err
	}
	if !lspproto.HasCapability(client.Capabilities().ImplementationProvider) {
		return nil, &errs.NotSupportedError{Capability: "implementationProvider", Server: client.LanguageID()}
	}

	var locs []lspproto.Location
	if err := client.Request(ctx, "textDocument/implementation", lspproto.TextDocumentPositionParams{
		TextDocument: lspproto.TextDocumentIdentifier{URI: uri},
		Position:     resolved.SelectionRange.Start,
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

// Declaration implements the declaration operation: thin wrapper over
// textDocument/declaration, falling back to NotSupported when the
// capability is absent (§4.7, SPEC_FULL.md C7 note).
func (h *Handlers) Declaration(ctx context.Context, symbolExpr string) (*RefsResult, error) {
	resolved, _, err := h.resolveExpr(ctx, symbolExpr)
	if err != nil {
		return nil, err
	}
	client, uri, err := h.ensureOpenForSymbol(ctx, resolved)
	if err != nil {
		return nil, err
	}
	if !lspproto.HasCapability(client.Capabilities().DeclarationProvider) {
		return nil, &errs.NotSupportedError{Capability: "declarationProvider", Server: client.LanguageID()}
	}

	var locs []lspproto.Location
	if err := client.Request(ctx, "textDocument/declaration", lspproto.TextDocumentPositionParams{
		TextDocument: lspproto.TextDocumentIdentifier{URI: uri},
		Position:     resolved.SelectionRange.Start,
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

// TypeHierarchyDirection selects sub vs supertypes.
type TypeHierarchyDirection int

const (
	Subtypes TypeHierarchyDirection = iota
	Supertypes
)

// TypeHierarchy implements the sub/supertypes operation via
// prepareTypeHierarchy + typeHierarchy/{sub,super}types, returning
// NotSupported if the capability is absent (§4.7).
func (h *Handlers) TypeHierarchy(ctx context.Context, symbolExpr string, dir TypeHierarchyDirection) (*RefsResult, error) {
	resolved, _, err := h.resolveExpr(ctx, symbolExpr)
	if err != nil {
		return nil, err
	}
	client, uri, err := h.ensureOpenForSymbol(ctx, resolved)
	if err != nil {
		return nil, err
	}
	if !lspproto.HasCapability(client.Capabilities().TypeHierarchyProvider) {
		return nil, &errs.NotSupportedError{Capability: "typeHierarchyProvider", Server: client.LanguageID()}
	}

	var items []lspproto.TypeHierarchyItem
	if err := client.Request(ctx, "textDocument/prepareTypeHierarchy", lspproto.TypeHierarchyPrepareParams{
		TextDocumentPositionParams: lspproto.TextDocumentPositionParams{
			TextDocument: lspproto.TextDocumentIdentifier{URI: uri},
			Position:     resolved.SelectionRange.Start,
		},
	}, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return &RefsResult{}, nil
	}

	result := &RefsResult{}
	for _, item := range items {
		var related []lspproto.TypeHierarchyItem
		var reqErr error
		if dir == Subtypes {
			reqErr = client.Request(ctx, "typeHierarchy/subtypes", lspproto.TypeHierarchySubtypesParams{Item: item}, &related)
		} else {
			reqErr = client.Request(ctx, "typeHierarchy/supertypes", lspproto.TypeHierarchySupertypesParams{Item: item}, &related)
		}
		if reqErr != nil {
			return nil, reqErr
		}
		for _, r := range related {
			result.Locations = append(result.Locations, SymbolHit{
				Path:  h.relPath(lspproto.URIToFilePath(r.URI)),
				Line:  r.SelectionRange.Start.Line + 1,
				Name:  r.Name,
				Range: r.Range,
			})
		}
	}
	return result, nil
}
