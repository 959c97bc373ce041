package ops

import (
	"context"
	"errors"
	"strconv"

	"github.com/dshills/leta/internal/errs"
	"github.com/dshills/leta/internal/lspproto"
)

var errMissingFromOrTo = errors.New("calls requires --from, --to, or both")

// CallsParams is calls' input (§4.7, §6).
type CallsParams struct {
	From                string `json:"from"`
	To                  string `json:"to,omitempty"`
	MaxDepth            int    `json:"maxDepth,omitempty"`
	IncludeNonWorkspace bool   `json:"includeNonWorkspace,omitempty"`
}

type callFrame struct {
	item  lspproto.CallHierarchyItem
	depth int
	path  []CallNode
}

// Calls implements the calls operation (§4.7, §6 "calls [--from S] [--to
// S]"). With only --from, it BFS-expands the callee tree (outgoing calls)
// to MaxDepth. With only --to, it BFS-expands the caller tree (incoming
// calls) to MaxDepth. With both, it BFS-searches the outgoing direction
// for the shortest path from --from toward --to, ties broken by
// first-discovered.
func (h *Handlers) Calls(ctx context.Context, p CallsParams) (*CallsTreeResult, *CallsPathResult, error) {
	switch {
	case p.From == "" && p.To == "":
		return nil, nil, errUsage(errMissingFromOrTo)
	case p.From == "":
		tree, err := h.callsIncoming(ctx, p)
		return tree, nil, err
	default:
		return h.callsOutgoing(ctx, p)
	}
}

// callsOutgoing BFS-expands the callee tree from --from, or searches it
// for --to when both are given.
func (h *Handlers) callsOutgoing(ctx context.Context, p CallsParams) (*CallsTreeResult, *CallsPathResult, error) {
	resolved, _, err := h.resolveExpr(ctx, p.From)
	if err != nil {
		return nil, nil, err
	}
	client, uri, err := h.ensureOpenForSymbol(ctx, resolved)
	if err != nil {
		return nil, nil, err
	}
	if !lspproto.HasCapability(client.Capabilities().CallHierarchyProvider) {
		return nil, nil, &errs.NotSupportedError{Capability: "callHierarchyProvider", Server: client.LanguageID()}
	}

	var prepared []lspproto.CallHierarchyItem
	if err := client.Request(ctx, "textDocument/prepareCallHierarchy", lspproto.CallHierarchyPrepareParams{
		TextDocumentPositionParams: lspproto.TextDocumentPositionParams{
			TextDocument: lspproto.TextDocumentIdentifier{URI: uri},
			Position:     resolved.SelectionRange.Start,
		},
	}, &prepared); err != nil {
		return nil, nil, err
	}
	if len(prepared) == 0 {
		return nil, nil, errs.ErrNotFound
	}
	root := prepared[0]

	maxDepth := p.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 10
	}

	var targetName string
	if p.To != "" {
		toResolved, _, err := h.resolveExpr(ctx, p.To)
		if err != nil {
			return nil, nil, err
		}
		targetName = toResolved.Name
	}

	rootNode := CallNode{Name: root.Name, Path: h.relPath(lspproto.URIToFilePath(root.URI)), Line: root.SelectionRange.Start.Line + 1}

	queue := []callFrame{{item: root, depth: 0, path: []CallNode{rootNode}}}
	visited := map[string]bool{nodeKey(root): true}

	var built CallNode
	built = rootNode

	for len(queue) > 0 {
		frame := queue[0]
		queue = queue[1:]

		if targetName != "" && frame.item.Name == targetName && frame.depth > 0 {
			return nil, &CallsPathResult{Path: frame.path}, nil
		}
		if frame.depth >= maxDepth {
			continue
		}

		var outgoing []lspproto.CallHierarchyOutgoingCall
		if err := client.Request(ctx, "callHierarchy/outgoingCalls", lspproto.CallHierarchyOutgoingCallsParams{Item: frame.item}, &outgoing); err != nil {
			continue // transient failure on one node: skip, don't abort the BFS (§4.7)
		}

		for _, call := range outgoing {
			if !p.IncludeNonWorkspace && !h.isWithinAnyWorkspace(lspproto.URIToFilePath(call.To.URI)) {
				continue
			}
			key := nodeKey(call.To)
			if visited[key] {
				continue
			}
			visited[key] = true

			childNode := CallNode{
				Name:  call.To.Name,
				Path:  h.relPath(lspproto.URIToFilePath(call.To.URI)),
				Line:  call.To.SelectionRange.Start.Line + 1,
				Depth: frame.depth + 1,
			}
			attachChild(&built, frame.path, childNode)

			newPath := append(append([]CallNode(nil), frame.path...), childNode)
			queue = append(queue, callFrame{item: call.To, depth: frame.depth + 1, path: newPath})
		}
	}

	if targetName != "" {
		return nil, nil, errs.ErrPathNotFound
	}
	return &CallsTreeResult{Root: built}, nil, nil
}

// callsIncoming BFS-expands the caller tree from --to: each node's
// children are the symbols that call it, mirroring callsOutgoing's shape
// but walking callHierarchy/incomingCalls instead.
func (h *Handlers) callsIncoming(ctx context.Context, p CallsParams) (*CallsTreeResult, error) {
	resolved, _, err := h.resolveExpr(ctx, p.To)
	if err != nil {
		return nil, err
	}
	client, uri, err := h.ensureOpenForSymbol(ctx, resolved)
	if err != nil {
		return nil, err
	}
	if !lspproto.HasCapability(client.Capabilities().CallHierarchyProvider) {
		return nil, &errs.NotSupportedError{Capability: "callHierarchyProvider", Server: client.LanguageID()}
	}

	var prepared []lspproto.CallHierarchyItem
	if err := client.Request(ctx, "textDocument/prepareCallHierarchy", lspproto.CallHierarchyPrepareParams{
		TextDocumentPositionParams: lspproto.TextDocumentPositionParams{
			TextDocument: lspproto.TextDocumentIdentifier{URI: uri},
			Position:     resolved.SelectionRange.Start,
		},
	}, &prepared); err != nil {
		return nil, err
	}
	if len(prepared) == 0 {
		return nil, errs.ErrNotFound
	}
	root := prepared[0]

	maxDepth := p.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 10
	}

	rootNode := CallNode{Name: root.Name, Path: h.relPath(lspproto.URIToFilePath(root.URI)), Line: root.SelectionRange.Start.Line + 1}

	queue := []callFrame{{item: root, depth: 0, path: []CallNode{rootNode}}}
	visited := map[string]bool{nodeKey(root): true}

	built := rootNode

	for len(queue) > 0 {
		frame := queue[0]
		queue = queue[1:]

		if frame.depth >= maxDepth {
			continue
		}

		var incoming []lspproto.CallHierarchyIncomingCall
		if err := client.Request(ctx, "callHierarchy/incomingCalls", lspproto.CallHierarchyIncomingCallsParams{Item: frame.item}, &incoming); err != nil {
			continue // transient failure on one node: skip, don't abort the BFS (§4.7)
		}

		for _, call := range incoming {
			if !p.IncludeNonWorkspace && !h.isWithinAnyWorkspace(lspproto.URIToFilePath(call.From.URI)) {
				continue
			}
			key := nodeKey(call.From)
			if visited[key] {
				continue
			}
			visited[key] = true

			childNode := CallNode{
				Name:  call.From.Name,
				Path:  h.relPath(lspproto.URIToFilePath(call.From.URI)),
				Line:  call.From.SelectionRange.Start.Line + 1,
				Depth: frame.depth + 1,
			}
			attachChild(&built, frame.path, childNode)

			newPath := append(append([]CallNode(nil), frame.path...), childNode)
			queue = append(queue, callFrame{item: call.From, depth: frame.depth + 1, path: newPath})
		}
	}

	return &CallsTreeResult{Root: built}, nil
}

func nodeKey(item lspproto.CallHierarchyItem) string {
	return string(item.URI) + "#" + item.Name + "#" +
		strconv.Itoa(item.SelectionRange.Start.Line) + ":" + strconv.Itoa(item.SelectionRange.Start.Character)
}

// attachChild finds the node in the tree reachable by path (excluding the
// new child) and appends childNode to its Children. path always includes
// the root as path[0].
func attachChild(root *CallNode, path []CallNode, child CallNode) {
	cur := root
	for _, step := range path[1:] {
		found := false
		for i := range cur.Children {
			if cur.Children[i].Name == step.Name && cur.Children[i].Path == step.Path && cur.Children[i].Line == step.Line {
				cur = &cur.Children[i]
				found = true
				break
			}
		}
		if !found {
			return
		}
	}
	cur.Children = append(cur.Children, child)
}

func (h *Handlers) isWithinAnyWorkspace(path string) bool {
	for _, w := range h.Session.Workspaces() {
		if withinRoot(w.Root, path) {
			return true
		}
	}
	return false
}
