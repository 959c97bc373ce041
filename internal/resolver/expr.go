// Package resolver implements the Symbol Resolver (C6): parsing a symbol
// expression, enumerating candidates across the Symbol Index, and
// disambiguating to a single ResolvedSymbol. No teacher analog exists for
// the expression grammar itself (keystorm has no symbol-expression
// language); this package is grounded on the *shape* of keystorm's
// navigation.go symbol search helpers (walk a tree, match by name/kind)
// applied fresh to §4.6's grammar.
package resolver

import (
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tidwall/match"
)

// Expr is a parsed symbol expression: (path ':')? (line ':')? qualified_name.
type Expr struct {
	Raw        string
	PathFilter string // "" if absent
	LineFilter int    // 0 if absent
	NameParts  []string
}

// Parse parses a symbol expression per §4.6's grammar.
func Parse(raw string) Expr {
	e := Expr{Raw: raw}
	rest := raw

	// Split off segments greedily from the left: each ':'-delimited
	// segment before the last is tried as path, then line, in order.
	parts := strings.Split(rest, ":")
	if len(parts) == 1 {
		e.NameParts = strings.Split(parts[0], ".")
		return e
	}

	qualified := parts[len(parts)-1]
	prefix := parts[:len(parts)-1]

	// The last prefix segment may be a line number.
	if len(prefix) > 0 {
		last := prefix[len(prefix)-1]
		if n, err := strconv.Atoi(last); err == nil && isAllDigits(last) {
			e.LineFilter = n
			prefix = prefix[:len(prefix)-1]
		}
	}
	if len(prefix) > 0 {
		e.PathFilter = strings.Join(prefix, ":")
	}
	e.NameParts = strings.Split(qualified, ".")
	return e
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// MatchesPath reports whether a workspace-relative path satisfies the
// expression's path filter (§4.6): substring match, or glob if the filter
// contains '*' or '?'.
func (e Expr) MatchesPath(relPath string) bool {
	if e.PathFilter == "" {
		return true
	}
	relPath = filepathToSlash(relPath)
	if strings.ContainsAny(e.PathFilter, "*?") {
		ok, _ := doublestar.Match(e.PathFilter, relPath)
		if ok {
			return true
		}
		return match.Match(relPath, e.PathFilter)
	}
	return strings.Contains(relPath, e.PathFilter)
}

// MatchesLine reports whether a 1-based selection-range start line
// satisfies the expression's line filter (§4.6).
func (e Expr) MatchesLine(line1Based int) bool {
	if e.LineFilter == 0 {
		return true
	}
	return e.LineFilter == line1Based
}

// MatchesQualifiedName reports whether the tail of containerPath+name
// split on '.' equals NameParts (§4.6).
func (e Expr) MatchesQualifiedName(containerPath []string, name string) bool {
	full := append(append([]string(nil), containerPath...), name)
	if len(e.NameParts) > len(full) {
		return false
	}
	tail := full[len(full)-len(e.NameParts):]
	for i, part := range e.NameParts {
		if tail[i] != part {
			return false
		}
	}
	return true
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
