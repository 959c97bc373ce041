package lspproto

// Parameter/result shapes for the request methods leta issues. Grouped
// separately from protocol.go's core data types to keep each file under
// the density the teacher shows for similar groupings in its own
// protocol.go (data shapes, then request shapes).

type DocumentSymbolParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

type WorkspaceSymbolParams struct {
	Query string `json:"query"`
}

type ReferenceContext struct {
	IncludeDeclaration bool `json:"includeDeclaration"`
}

type ReferenceParams struct {
	TextDocumentPositionParams
	Context ReferenceContext `json:"context"`
}

type RenameParams struct {
	TextDocumentPositionParams
	NewName string `json:"newName"`
}

type DocumentFormattingParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Options      FormattingOptions      `json:"options"`
}

type FormattingOptions struct {
	TabSize      int  `json:"tabSize"`
	InsertSpaces bool `json:"insertSpaces"`
}

// CodeActionParams requests code actions for organize-imports; leta
// filters the response for the "source.organizeImports" kind.
type CodeActionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Range        Range                  `json:"range"`
	Context      CodeActionContext      `json:"context"`
}

type CodeActionContext struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
	Only        []string     `json:"only,omitempty"`
}

type CodeAction struct {
	Title string         `json:"title"`
	Kind  string         `json:"kind,omitempty"`
	Edit  *WorkspaceEdit `json:"edit,omitempty"`
}

// FileRename names a single rename pair for workspace/willRenameFiles.
type FileRename struct {
	OldURI DocumentURI `json:"oldUri"`
	NewURI DocumentURI `json:"newUri"`
}

type RenameFilesParams struct {
	Files []FileRename `json:"files"`
}

type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier   `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

// TextDocumentContentChangeEvent with no Range is a full-text replace —
// the only form leta sends (§4.4 "full-text sync only").
type TextDocumentContentChangeEvent struct {
	Text string `json:"text"`
}

// --- Inbound server-to-client requests leta must answer (§4.2) ---

// ConfigurationParams is the payload of an inbound workspace/configuration
// request; leta answers with one null entry per requested item.
type ConfigurationParams struct {
	Items []ConfigurationItem `json:"items"`
}

type ConfigurationItem struct {
	ScopeURI DocumentURI `json:"scopeUri,omitempty"`
	Section  string      `json:"section,omitempty"`
}

// ShowMessageRequestParams is the payload of an inbound
// window/showMessageRequest; leta answers with the first offered action.
type ShowMessageRequestParams struct {
	Type    int                   `json:"type"`
	Message string                `json:"message"`
	Actions []MessageActionItem   `json:"actions,omitempty"`
}

type MessageActionItem struct {
	Title string `json:"title"`
}
