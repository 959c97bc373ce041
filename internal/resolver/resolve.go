package resolver

import (
	"fmt"
	"path/filepath"

	"github.com/dshills/leta/internal/errs"
	"github.com/dshills/leta/internal/lspproto"
	"github.com/dshills/leta/internal/symindex"
)

// Candidate is one SymbolEntry surviving path/line/name matching, before
// disambiguation.
type Candidate struct {
	Path          string
	RelPath       string // Path relative to the owning workspace root, for display
	URI           lspproto.DocumentURI
	Name          string
	Kind          lspproto.SymbolKind
	ContainerPath []string
	Range         lspproto.Range
	SelectionRange lspproto.Range
}

// QualifiedName renders container path + name dotted, for Ambiguous
// listings and display (§4.7 scenario 3).
func (c Candidate) QualifiedName() string {
	if len(c.ContainerPath) == 0 {
		return c.Name
	}
	out := ""
	for _, p := range c.ContainerPath {
		out += p + "."
	}
	return out + c.Name
}

// Resolved is §3's ResolvedSymbol: a pointer into the tree.
type Resolved struct {
	Candidate
	Line1Based int // 1-based line of SelectionRange.Start
	Column     int // 0-based UTF-16 column of SelectionRange.Start
}

// preferredKinds ranks ahead of Variable/Field/Constant on ambiguity
// (§4.6 disambiguation rationale).
var preferredKinds = map[lspproto.SymbolKind]bool{
	lspproto.SymbolKindClass:     true,
	lspproto.SymbolKindStruct:    true,
	lspproto.SymbolKindInterface: true,
	lspproto.SymbolKindEnum:      true,
	lspproto.SymbolKindTypeParameter: true,
}

// FindCandidates scans collected trees for nodes matching expr's
// path/line/name filters (§4.6).
func FindCandidates(workspaceRoot string, expr Expr, collected []symindex.Collected) []Candidate {
	var out []Candidate
	for _, c := range collected {
		rel, err := filepath.Rel(workspaceRoot, c.Path)
		if err != nil {
			rel = c.Path
		}
		if !expr.MatchesPath(rel) {
			continue
		}
		for i, node := range c.Tree.Nodes {
			if !expr.MatchesLine(node.SelectionRange.Start.Line + 1) {
				continue
			}
			containerPath := c.Tree.ContainerPath(i)
			if !expr.MatchesQualifiedName(containerPath, node.Name) {
				continue
			}
			out = append(out, Candidate{
				Path:           c.Path,
				RelPath:        rel,
				URI:            c.URI,
				Name:           node.Name,
				Kind:           node.Kind,
				ContainerPath:  containerPath,
				Range:          node.Range,
				SelectionRange: node.SelectionRange,
			})
		}
	}
	return out
}

// Resolve disambiguates a candidate list to exactly one Resolved symbol,
// per §4.6: prefer type-like kinds over variable-like kinds on collision;
// if still ambiguous, return AmbiguousError with pastable qualified names;
// if zero candidates, return NotFound (including when a path filter
// matched no file, §8).
func Resolve(expr Expr, candidates []Candidate) (*Resolved, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %q matched zero symbols", errs.ErrNotFound, expr.Raw)
	}
	if len(candidates) == 1 {
		return toResolved(candidates[0]), nil
	}

	var preferred []Candidate
	for _, c := range candidates {
		if preferredKinds[c.Kind] {
			preferred = append(preferred, c)
		}
	}
	if len(preferred) == 1 {
		return toResolved(preferred[0]), nil
	}
	pool := candidates
	if len(preferred) > 1 {
		pool = preferred
	}
	if len(pool) == 1 {
		return toResolved(pool[0]), nil
	}

	names := make([]string, 0, len(pool))
	for _, c := range pool {
		names = append(names, fmt.Sprintf("%s (%s:%d)", c.QualifiedName(), c.RelPath, c.SelectionRange.Start.Line+1))
	}
	return nil, &errs.AmbiguousError{Expression: expr.Raw, Candidates: names}
}

func toResolved(c Candidate) *Resolved {
	return &Resolved{
		Candidate:  c,
		Line1Based: c.SelectionRange.Start.Line + 1,
		Column:     c.SelectionRange.Start.Character,
	}
}
