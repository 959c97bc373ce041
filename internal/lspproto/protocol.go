// Package lspproto defines the LSP 3.17 wire types leta exchanges with
// language servers. It is grounded on keystorm's internal/lsp/protocol.go,
// extended with the capability and hierarchy types that file lacked:
// ImplementationProvider, DeclarationProvider, TypeHierarchyProvider,
// CallHierarchyProvider capability flags, CallHierarchyItem/
// TypeHierarchyItem result types, and a typed ResourceOperation variant of
// WorkspaceEdit.DocumentChanges so `mv` can express file renames instead of
// treating DocumentChanges as opaque `[]any`.
package lspproto

import (
	"encoding/json"
	"net/url"
	"path/filepath"
	"runtime"
)

// DocumentURI is a file:// URI identifying a text document.
type DocumentURI string

// Position is 0-based (line, UTF-16 code-unit column), as the wire requires.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is half-open: [Start, End).
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Location identifies a range within a document.
type Location struct {
	URI   DocumentURI `json:"uri"`
	Range Range       `json:"range"`
}

// TextEdit replaces Range with NewText.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

// TextDocumentIdentifier names a document by URI.
type TextDocumentIdentifier struct {
	URI DocumentURI `json:"uri"`
}

// VersionedTextDocumentIdentifier adds the document's sync version.
type VersionedTextDocumentIdentifier struct {
	URI     DocumentURI `json:"uri"`
	Version int         `json:"version"`
}

// TextDocumentItem is the full document sent on didOpen.
type TextDocumentItem struct {
	URI        DocumentURI `json:"uri"`
	LanguageID string      `json:"languageId"`
	Version    int         `json:"version"`
	Text       string      `json:"text"`
}

// TextDocumentPositionParams locates a position within a document, the
// shape shared by most navigation requests.
type TextDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

// --- Resource operations (file-level WorkspaceEdit members) ---

// ResourceOperationKind discriminates CreateFile/RenameFile/DeleteFile.
type ResourceOperationKind string

const (
	ResourceOpCreate ResourceOperationKind = "create"
	ResourceOpRename ResourceOperationKind = "rename"
	ResourceOpDelete ResourceOperationKind = "delete"
)

// RenameFile renames OldURI to NewURI as part of a WorkspaceEdit. The
// teacher's WorkspaceEdit.DocumentChanges is untyped ([]any); this is the
// typed variant leta needs for the `mv` operation's willRenameFiles/
// WorkspaceEdit application.
type RenameFile struct {
	Kind    ResourceOperationKind `json:"kind"` // always "rename"
	OldURI  DocumentURI           `json:"oldUri"`
	NewURI  DocumentURI           `json:"newUri"`
	Options *RenameFileOptions    `json:"options,omitempty"`
}

type RenameFileOptions struct {
	Overwrite      bool `json:"overwrite,omitempty"`
	IgnoreIfExists bool `json:"ignoreIfExists,omitempty"`
}

// TextDocumentEdit is the typed form of a per-document edit batch inside
// DocumentChanges.
type TextDocumentEdit struct {
	TextDocument VersionedTextDocumentIdentifier `json:"textDocument"`
	Edits        []TextEdit                      `json:"edits"`
}

// DocumentChange is a union of TextDocumentEdit | RenameFile (create/delete
// omitted: leta never issues those). Exactly one of the two is non-nil.
type DocumentChange struct {
	TextDocumentEdit *TextDocumentEdit
	RenameFile       *RenameFile
}

// MarshalJSON emits whichever variant is set, matching the LSP union shape.
func (d DocumentChange) MarshalJSON() ([]byte, error) {
	if d.RenameFile != nil {
		return json.Marshal(d.RenameFile)
	}
	return json.Marshal(d.TextDocumentEdit)
}

// UnmarshalJSON discriminates on the "kind" field.
func (d *DocumentChange) UnmarshalJSON(data []byte) error {
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Kind == string(ResourceOpRename) {
		var rf RenameFile
		if err := json.Unmarshal(data, &rf); err != nil {
			return err
		}
		d.RenameFile = &rf
		return nil
	}
	var te TextDocumentEdit
	if err := json.Unmarshal(data, &te); err != nil {
		return err
	}
	d.TextDocumentEdit = &te
	return nil
}

// WorkspaceEdit describes a set of textual and file-level changes applied
// atomically (§4.7 rename/mv).
type WorkspaceEdit struct {
	Changes         map[DocumentURI][]TextEdit `json:"changes,omitempty"`
	DocumentChanges []DocumentChange           `json:"documentChanges,omitempty"`
}

// Files returns the set of URIs touched by the edit, across both the
// Changes map and typed DocumentChanges.
func (w *WorkspaceEdit) Files() []DocumentURI {
	seen := map[DocumentURI]bool{}
	var out []DocumentURI
	add := func(u DocumentURI) {
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		out = append(out, u)
	}
	for uri := range w.Changes {
		add(uri)
	}
	for _, dc := range w.DocumentChanges {
		if dc.TextDocumentEdit != nil {
			add(dc.TextDocumentEdit.TextDocument.URI)
		}
		if dc.RenameFile != nil {
			add(dc.RenameFile.OldURI)
			add(dc.RenameFile.NewURI)
		}
	}
	return out
}

// --- Symbols ---

// SymbolKind mirrors the LSP enumeration (26 kinds).
type SymbolKind int

const (
	SymbolKindFile SymbolKind = iota + 1
	SymbolKindModule
	SymbolKindNamespace
	SymbolKindPackage
	SymbolKindClass
	SymbolKindMethod
	SymbolKindProperty
	SymbolKindField
	SymbolKindConstructor
	SymbolKindEnum
	SymbolKindInterface
	SymbolKindFunction
	SymbolKindVariable
	SymbolKindConstant
	SymbolKindString
	SymbolKindNumber
	SymbolKindBoolean
	SymbolKindArray
	SymbolKindObject
	SymbolKindKey
	SymbolKindNull
	SymbolKindEnumMember
	SymbolKindStruct
	SymbolKindEvent
	SymbolKindOperator
	SymbolKindTypeParameter
)

// DocumentSymbol is a node in the per-file symbol tree (§3 SymbolEntry,
// before leta's own parent-by-index flattening in symindex).
type DocumentSymbol struct {
	Name           string           `json:"name"`
	Detail         string           `json:"detail,omitempty"`
	Kind           SymbolKind       `json:"kind"`
	Range          Range            `json:"range"`
	SelectionRange Range            `json:"selectionRange"`
	Children       []DocumentSymbol `json:"children,omitempty"`
}

// SymbolInformation is the flat, pre-3.10 documentSymbol/workspaceSymbol
// shape some servers still return instead of DocumentSymbol.
type SymbolInformation struct {
	Name          string     `json:"name"`
	Kind          SymbolKind `json:"kind"`
	ContainerName string     `json:"containerName,omitempty"`
	Location      Location   `json:"location"`
}

// --- Call hierarchy (absent from the teacher's protocol.go) ---

type CallHierarchyItem struct {
	Name           string      `json:"name"`
	Kind           SymbolKind  `json:"kind"`
	Detail         string      `json:"detail,omitempty"`
	URI            DocumentURI `json:"uri"`
	Range          Range       `json:"range"`
	SelectionRange Range       `json:"selectionRange"`
}

type CallHierarchyPrepareParams struct {
	TextDocumentPositionParams
}

type CallHierarchyIncomingCallsParams struct {
	Item CallHierarchyItem `json:"item"`
}

type CallHierarchyIncomingCall struct {
	From       CallHierarchyItem `json:"from"`
	FromRanges []Range           `json:"fromRanges"`
}

type CallHierarchyOutgoingCallsParams struct {
	Item CallHierarchyItem `json:"item"`
}

type CallHierarchyOutgoingCall struct {
	To         CallHierarchyItem `json:"to"`
	FromRanges []Range           `json:"fromRanges"`
}

// --- Type hierarchy (absent from the teacher's protocol.go) ---

type TypeHierarchyItem struct {
	Name           string      `json:"name"`
	Kind           SymbolKind  `json:"kind"`
	Detail         string      `json:"detail,omitempty"`
	URI            DocumentURI `json:"uri"`
	Range          Range       `json:"range"`
	SelectionRange Range       `json:"selectionRange"`
}

type TypeHierarchyPrepareParams struct {
	TextDocumentPositionParams
}

type TypeHierarchySupertypesParams struct {
	Item TypeHierarchyItem `json:"item"`
}

type TypeHierarchySubtypesParams struct {
	Item TypeHierarchyItem `json:"item"`
}

// --- Diagnostics ---

type DiagnosticSeverity int

const (
	SeverityError DiagnosticSeverity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

type Diagnostic struct {
	Range    Range              `json:"range"`
	Severity DiagnosticSeverity `json:"severity,omitempty"`
	Code     any                `json:"code,omitempty"`
	Source   string             `json:"source,omitempty"`
	Message  string             `json:"message"`
}

type PublishDiagnosticsParams struct {
	URI         DocumentURI  `json:"uri"`
	Version     int          `json:"version,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// --- Hover ---

type MarkupContent struct {
	Kind  string `json:"kind"` // "plaintext" | "markdown"
	Value string `json:"value"`
}

type Hover struct {
	Contents MarkupContent `json:"contents"`
	Range    *Range        `json:"range,omitempty"`
}

// --- Capabilities ---

// ServerCapabilities is the subset leta consults before dispatching
// requests. Extended beyond the teacher's struct with
// ImplementationProvider, DeclarationProvider, TypeHierarchyProvider and
// CallHierarchyProvider, required for the implementations/declaration/
// sub/supertypes operations (§4.7) and absent from protocol.go.
type ServerCapabilities struct {
	TextDocumentSync       any `json:"textDocumentSync,omitempty"`
	HoverProvider          any `json:"hoverProvider,omitempty"`
	DefinitionProvider     any `json:"definitionProvider,omitempty"`
	TypeDefinitionProvider any `json:"typeDefinitionProvider,omitempty"`
	ImplementationProvider any `json:"implementationProvider,omitempty"`
	DeclarationProvider    any `json:"declarationProvider,omitempty"`
	ReferencesProvider     any `json:"referencesProvider,omitempty"`
	DocumentSymbolProvider any `json:"documentSymbolProvider,omitempty"`
	WorkspaceSymbolProvider any `json:"workspaceSymbolProvider,omitempty"`
	CodeActionProvider     any `json:"codeActionProvider,omitempty"`
	DocumentFormattingProvider any `json:"documentFormattingProvider,omitempty"`
	RenameProvider         any `json:"renameProvider,omitempty"`
	CallHierarchyProvider  any `json:"callHierarchyProvider,omitempty"`
	TypeHierarchyProvider  any `json:"typeHierarchyProvider,omitempty"`
	DiagnosticProvider     any `json:"diagnosticProvider,omitempty"`
	Workspace              *WorkspaceServerCapabilities `json:"workspace,omitempty"`
}

type WorkspaceServerCapabilities struct {
	FileOperations *FileOperationsServerCapabilities `json:"fileOperations,omitempty"`
}

type FileOperationsServerCapabilities struct {
	WillRename *FileOperationRegistrationOptions `json:"willRename,omitempty"`
	DidRename  *FileOperationRegistrationOptions `json:"didRename,omitempty"`
}

type FileOperationRegistrationOptions struct {
	Filters []FileOperationFilter `json:"filters"`
}

type FileOperationFilter struct {
	Scheme  string                 `json:"scheme,omitempty"`
	Pattern FileOperationPattern   `json:"pattern"`
}

type FileOperationPattern struct {
	Glob string `json:"glob"`
}

// HasCapability reports whether a capability value is present and truthy,
// tolerating both a bare bool and a registration-options object (mirrors
// keystorm's HasCapability helper).
func HasCapability(cap any) bool {
	switch v := cap.(type) {
	case nil:
		return false
	case bool:
		return v
	default:
		return true
	}
}

// ClientCapabilities is the curated set leta sends on initialize — omitting
// features that would cause a server to push work back at the client and
// block, per §4.4 (progress reporting, workspace-folder change
// notifications, dynamic configuration requests).
type ClientCapabilities struct {
	Workspace    WorkspaceClientCapabilities    `json:"workspace"`
	TextDocument TextDocumentClientCapabilities `json:"textDocument"`
}

type WorkspaceClientCapabilities struct {
	ApplyEdit      bool                            `json:"applyEdit"`
	WorkspaceEdit  WorkspaceEditClientCapabilities `json:"workspaceEdit"`
	Symbol         map[string]any                  `json:"symbol,omitempty"`
	FileOperations map[string]any                  `json:"fileOperations,omitempty"`
}

type WorkspaceEditClientCapabilities struct {
	DocumentChanges    bool     `json:"documentChanges"`
	ResourceOperations []string `json:"resourceOperations,omitempty"`
}

type TextDocumentClientCapabilities struct {
	Synchronization    map[string]any `json:"synchronization,omitempty"`
	Hover              map[string]any `json:"hover,omitempty"`
	Definition         map[string]any `json:"definition,omitempty"`
	TypeDefinition     map[string]any `json:"typeDefinition,omitempty"`
	Implementation     map[string]any `json:"implementation,omitempty"`
	Declaration        map[string]any `json:"declaration,omitempty"`
	References         map[string]any `json:"references,omitempty"`
	DocumentSymbol     map[string]any `json:"documentSymbol,omitempty"`
	CodeAction         map[string]any `json:"codeAction,omitempty"`
	Formatting         map[string]any `json:"formatting,omitempty"`
	Rename             map[string]any `json:"rename,omitempty"`
	CallHierarchy      map[string]any `json:"callHierarchy,omitempty"`
	TypeHierarchy      map[string]any `json:"typeHierarchy,omitempty"`
	PublishDiagnostics map[string]any `json:"publishDiagnostics,omitempty"`
}

// DefaultClientCapabilities returns the curated capability set sent on
// every initialize handshake (§4.4).
func DefaultClientCapabilities() ClientCapabilities {
	return ClientCapabilities{
		Workspace: WorkspaceClientCapabilities{
			ApplyEdit: true,
			WorkspaceEdit: WorkspaceEditClientCapabilities{
				DocumentChanges:    true,
				ResourceOperations: []string{"create", "rename", "delete"},
			},
			Symbol:         map[string]any{},
			FileOperations: map[string]any{"willRename": true},
		},
		TextDocument: TextDocumentClientCapabilities{
			Synchronization:    map[string]any{"didSave": true},
			Hover:              map[string]any{"contentFormat": []string{"markdown", "plaintext"}},
			Definition:         map[string]any{},
			TypeDefinition:     map[string]any{},
			Implementation:     map[string]any{},
			Declaration:        map[string]any{},
			References:         map[string]any{},
			DocumentSymbol:     map[string]any{"hierarchicalDocumentSymbolSupport": true},
			CodeAction:         map[string]any{},
			Formatting:         map[string]any{},
			Rename:             map[string]any{},
			CallHierarchy:      map[string]any{},
			TypeHierarchy:      map[string]any{},
			PublishDiagnostics: map[string]any{},
		},
	}
}

// InitializeParams is the payload sent for the initialize request.
type InitializeParams struct {
	ProcessID             *int                `json:"processId"`
	RootURI               DocumentURI         `json:"rootUri"`
	RootPath              string              `json:"rootPath,omitempty"`
	Capabilities          ClientCapabilities  `json:"capabilities"`
	WorkspaceFolders      []WorkspaceFolder   `json:"workspaceFolders,omitempty"`
	InitializationOptions any                 `json:"initializationOptions,omitempty"`
}

type WorkspaceFolder struct {
	URI  DocumentURI `json:"uri"`
	Name string      `json:"name"`
}

type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
}

// --- File conversions ---

// FilePathToURI converts an absolute or relative filesystem path to a
// file:// URI.
func FilePathToURI(path string) DocumentURI {
	if path == "" {
		return ""
	}
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	path = filepath.ToSlash(path)
	if runtime.GOOS == "windows" && len(path) >= 2 && path[1] == ':' {
		path = "/" + path
	}
	u := &url.URL{Scheme: "file", Path: path}
	return DocumentURI(u.String())
}

// URIToFilePath converts a file:// URI back to a filesystem path.
func URIToFilePath(uri DocumentURI) string {
	if uri == "" {
		return ""
	}
	u, err := url.Parse(string(uri))
	if err != nil {
		return string(uri)
	}
	if u.Scheme != "file" {
		return string(uri)
	}
	path := u.Path
	if runtime.GOOS == "windows" && len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path)
}
