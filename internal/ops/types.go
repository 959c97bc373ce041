package ops

import (
	"github.com/dshills/leta/internal/lspproto"
)

// SymbolHit is one entry in grep/refs/implementations/declaration results.
type SymbolHit struct {
	Path      string              `json:"path"`
	Line      int                 `json:"line"` // 1-based
	Name      string              `json:"name,omitempty"`
	Kind      string              `json:"kind,omitempty"`
	Container string              `json:"container,omitempty"`
	Docs      string              `json:"docs,omitempty"`
	Range     lspproto.Range      `json:"range,omitempty"`
}

// GrepResult is grep's response shape (§4.7).
type GrepResult struct {
	Hits     []SymbolHit `json:"hits"`
	Warnings []string    `json:"warnings,omitempty"`
}

// ShowResult is show's response shape: a text slab with a line anchor.
type ShowResult struct {
	Path      string `json:"path"`
	StartLine int    `json:"startLine"` // 1-based
	EndLine   int    `json:"endLine"`   // 1-based inclusive
	Text      string `json:"text"`
}

// RefsResult is refs' response shape.
type RefsResult struct {
	Locations []SymbolHit `json:"locations"`
}

// CallNode is one node in calls' BFS tree: a callee under --from, or a
// caller under --to.
type CallNode struct {
	Name     string     `json:"name"`
	Path     string     `json:"path"`
	Line     int        `json:"line"`
	Depth    int        `json:"depth"`
	Children []CallNode `json:"children,omitempty"`
}

// CallsTreeResult is calls' response shape for a single-direction BFS:
// --from alone (outgoing/callee tree) or --to alone (incoming/caller
// tree).
type CallsTreeResult struct {
	Root CallNode `json:"root"`
}

// CallsPathResult is calls --from --to's response shape.
type CallsPathResult struct {
	Path []CallNode `json:"path"`
}

// DiagnosticHit is one entry in diagnostics' response.
type DiagnosticHit struct {
	Path     string         `json:"path"`
	Range    lspproto.Range `json:"range"`
	Severity string         `json:"severity"`
	Source   string         `json:"source,omitempty"`
	Message  string         `json:"message"`
}

// DiagnosticsResult is diagnostics' response shape.
type DiagnosticsResult struct {
	Diagnostics []DiagnosticHit `json:"diagnostics"`
	Warnings    []string        `json:"warnings,omitempty"`
}

// EditResult is rename/format/organize-imports' response shape: the list
// of file paths touched.
type EditResult struct {
	Files []string `json:"files"`
}

// MoveResult is mv's response shape.
type MoveResult struct {
	Files []string `json:"files"`
}

// ReplaceFunctionResult is replace-function's response shape.
type ReplaceFunctionResult struct {
	Path         string `json:"path"`
	LinesReplaced int   `json:"linesReplaced"`
}

// HoverResult is hover's response shape.
type HoverResult struct {
	Text string `json:"text"`
}

func severityName(s lspproto.DiagnosticSeverity) string {
	switch s {
	case lspproto.SeverityError:
		return "error"
	case lspproto.SeverityWarning:
		return "warning"
	case lspproto.SeverityInformation:
		return "information"
	case lspproto.SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

func kindName(k lspproto.SymbolKind) string {
	names := map[lspproto.SymbolKind]string{
		lspproto.SymbolKindFile: "File", lspproto.SymbolKindModule: "Module",
		lspproto.SymbolKindNamespace: "Namespace", lspproto.SymbolKindPackage: "Package",
		lspproto.SymbolKindClass: "Class", lspproto.SymbolKindMethod: "Method",
		lspproto.SymbolKindProperty: "Property", lspproto.SymbolKindField: "Field",
		lspproto.SymbolKindConstructor: "Constructor", lspproto.SymbolKindEnum: "Enum",
		lspproto.SymbolKindInterface: "Interface", lspproto.SymbolKindFunction: "Function",
		lspproto.SymbolKindVariable: "Variable", lspproto.SymbolKindConstant: "Constant",
		lspproto.SymbolKindString: "String", lspproto.SymbolKindNumber: "Number",
		lspproto.SymbolKindBoolean: "Boolean", lspproto.SymbolKindArray: "Array",
		lspproto.SymbolKindObject: "Object", lspproto.SymbolKindKey: "Key",
		lspproto.SymbolKindNull: "Null", lspproto.SymbolKindEnumMember: "EnumMember",
		lspproto.SymbolKindStruct: "Struct", lspproto.SymbolKindEvent: "Event",
		lspproto.SymbolKindOperator: "Operator", lspproto.SymbolKindTypeParameter: "TypeParameter",
	}
	if n, ok := names[k]; ok {
		return n
	}
	return "Unknown"
}

// ParseKind parses a lower-case CLI -k KIND value to the set of
// SymbolKinds it matches, accepting a few common aliases ("class" also
// matches Struct, per Go/Rust conventions where "struct" is the class-like
// type — gopls reports a Go struct type as SymbolKindStruct, never
// SymbolKindClass, so a "class" filter that only matched Class would never
// hit a Go codebase).
func ParseKind(s string) ([]lspproto.SymbolKind, bool) {
	aliases := map[string][]lspproto.SymbolKind{
		"class":     {lspproto.SymbolKindClass, lspproto.SymbolKindStruct},
		"struct":    {lspproto.SymbolKindStruct},
		"interface": {lspproto.SymbolKindInterface}, "enum": {lspproto.SymbolKindEnum},
		"function": {lspproto.SymbolKindFunction}, "func": {lspproto.SymbolKindFunction},
		"method": {lspproto.SymbolKindMethod}, "field": {lspproto.SymbolKindField},
		"variable": {lspproto.SymbolKindVariable}, "var": {lspproto.SymbolKindVariable},
		"constant": {lspproto.SymbolKindConstant}, "const": {lspproto.SymbolKindConstant},
		"property": {lspproto.SymbolKindProperty}, "constructor": {lspproto.SymbolKindConstructor},
		"package": {lspproto.SymbolKindPackage}, "module": {lspproto.SymbolKindModule},
		"namespace": {lspproto.SymbolKindNamespace}, "typeparameter": {lspproto.SymbolKindTypeParameter},
	}
	k, ok := aliases[s]
	return k, ok
}
