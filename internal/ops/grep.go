package ops

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dshills/leta/internal/errs"
	"github.com/dshills/leta/internal/lspproto"
)

// GrepParams is grep's input (§4.7, §6).
type GrepParams struct {
	Pattern         string                `json:"pattern"`
	PathRegex       string                `json:"pathRegex,omitempty"`
	Kinds           []lspproto.SymbolKind `json:"kinds,omitempty"`
	ExcludePatterns []string              `json:"excludePatterns,omitempty"`
	CaseSensitive   bool                  `json:"caseSensitive,omitempty"`
	Docs            bool                  `json:"docs,omitempty"`
	HeadLimit       int                   `json:"headLimit,omitempty"`
}

// Grep implements the grep operation: regex over symbol names only, with
// optional path filter (§4.6), kind intersection, and docs fetched via the
// Hover Cache when requested. Transient per-file errors become warnings,
// not aborts (§4.7 failure semantics).
func (h *Handlers) Grep(ctx context.Context, p GrepParams) (*GrepResult, error) {
	re, err := compilePattern(p.Pattern, p.CaseSensitive)
	if err != nil {
		return nil, errUsage(err)
	}

	var pathRe *regexp.Regexp
	if p.PathRegex != "" {
		pathRe, err = compilePattern(p.PathRegex, p.CaseSensitive)
		if err != nil {
			return nil, errUsage(err)
		}
	}

	kindSet := map[lspproto.SymbolKind]bool{}
	for _, k := range p.Kinds {
		kindSet[k] = true
	}

	// SPEC_FULL.md C7: a path-unfiltered grep first tries workspace/symbol
	// as a fast server-side prefilter, falling back to the full
	// collect_workspace() scan below when no server advertises the
	// capability, the pattern has no literal term to query with, or every
	// capable server comes back empty.
	if pathRe == nil {
		if hits, warnings, ok := h.grepViaWorkspaceSymbol(ctx, p, re, kindSet); ok {
			return &GrepResult{Hits: hits, Warnings: warnings}, nil
		}
	}

	collected, warnings := h.collectAll(ctx, p.ExcludePatterns)

	result := &GrepResult{Warnings: warnings}
	for _, w := range h.Session.Workspaces() {
		for _, c := range collected {
			if !withinRoot(w.Root, c.Path) {
				continue
			}
			rel, _ := filepath.Rel(w.Root, c.Path)
			if pathRe != nil && !pathRe.MatchString(rel) {
				continue
			}
			for i, node := range c.Tree.Nodes {
				if !re.MatchString(node.Name) {
					continue
				}
				if len(kindSet) > 0 && !kindSet[node.Kind] {
					continue
				}
				containerPath := c.Tree.ContainerPath(i)
				hit := SymbolHit{
					Path:      rel,
					Line:      node.SelectionRange.Start.Line + 1,
					Name:      node.Name,
					Kind:      kindName(node.Kind),
					Container: joinDotted(containerPath),
					Range:     node.Range,
				}
				if p.Docs {
					if docs, err := h.hoverDocsAt(ctx, c.Path, node.SelectionRange.Start); err == nil {
						hit.Docs = docs
					} else {
						result.Warnings = append(result.Warnings, c.Path+": "+err.Error())
					}
				}
				result.Hits = append(result.Hits, hit)
				if p.HeadLimit > 0 && len(result.Hits) >= p.HeadLimit {
					return result, nil
				}
			}
		}
	}
	return result, nil
}

func compilePattern(pattern string, caseSensitive bool) (*regexp.Regexp, error) {
	if !caseSensitive {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}

func joinDotted(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}

func errUsage(err error) error {
	return errWrapSentinel(errs.ErrUsage, err)
}

// hoverDocsAt fetches hover text at pos for path, using the Hover Cache
// when the on-disk content hash matches (§4.8).
func (h *Handlers) hoverDocsAt(ctx context.Context, path string, pos lspproto.Position) (string, error) {
	res, err := h.hoverAtPosition(ctx, path, pos)
	if err != nil {
		return "", err
	}
	return res, nil
}

// regexMetaChars are the characters literalQueryTerm treats as regex
// syntax rather than query text.
const regexMetaChars = `\^$.|?*+()[]{}`

// literalQueryTerm extracts the longest run of non-metacharacter text from
// a grep pattern, for use as a workspace/symbol query: servers fuzzy-match
// query strings against literal symbol names, not regex syntax, so a
// pattern like "Handler$" yields "Handler".
func literalQueryTerm(pattern string) string {
	var longest, cur strings.Builder
	flush := func() {
		if cur.Len() > longest.Len() {
			longest.Reset()
			longest.WriteString(cur.String())
		}
		cur.Reset()
	}
	for _, r := range pattern {
		if strings.ContainsRune(regexMetaChars, r) {
			flush()
			continue
		}
		cur.WriteRune(r)
	}
	flush()
	return longest.String()
}

// grepViaWorkspaceSymbol attempts grep's workspace/symbol prefilter path
// (SPEC_FULL.md C7). ok is false when the caller should fall back to the
// full per-file scan: no literal query term, no server advertises
// workspaceSymbolProvider, or every capable server returned zero matches.
func (h *Handlers) grepViaWorkspaceSymbol(ctx context.Context, p GrepParams, re *regexp.Regexp, kindSet map[lspproto.SymbolKind]bool) ([]SymbolHit, []string, bool) {
	term := literalQueryTerm(p.Pattern)
	if term == "" {
		return nil, nil, false
	}

	var hits []SymbolHit
	var warnings []string
	queried := false

	for _, w := range h.Session.Workspaces() {
		for _, languageID := range w.Languages() {
			client, err := h.Session.Ensure(ctx, w, languageID)
			if err != nil || !lspproto.HasCapability(client.Capabilities().WorkspaceSymbolProvider) {
				continue
			}
			queried = true

			var syms []lspproto.SymbolInformation
			if err := client.Request(ctx, "workspace/symbol", lspproto.WorkspaceSymbolParams{Query: term}, &syms); err != nil {
				warnings = append(warnings, w.Root+": "+err.Error())
				continue
			}

			for _, s := range syms {
				path := lspproto.URIToFilePath(s.Location.URI)
				if !withinRoot(w.Root, path) || !re.MatchString(s.Name) {
					continue
				}
				if len(kindSet) > 0 && !kindSet[s.Kind] {
					continue
				}
				hit := SymbolHit{
					Path:      h.relPath(path),
					Line:      s.Location.Range.Start.Line + 1,
					Name:      s.Name,
					Kind:      kindName(s.Kind),
					Container: s.ContainerName,
					Range:     s.Location.Range,
				}
				if p.Docs {
					if docs, err := h.hoverDocsAt(ctx, path, s.Location.Range.Start); err == nil {
						hit.Docs = docs
					} else {
						warnings = append(warnings, path+": "+err.Error())
					}
				}
				hits = append(hits, hit)
				if p.HeadLimit > 0 && len(hits) >= p.HeadLimit {
					return hits, warnings, true
				}
			}
		}
	}

	if !queried || len(hits) == 0 {
		return nil, nil, false
	}
	return hits, warnings, true
}
