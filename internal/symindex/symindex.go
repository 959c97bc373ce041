// Package symindex implements the Symbol Index (C5): a byte-budgeted cache
// of per-file document-symbol trees keyed by (uri, content-hash), plus
// collect_workspace() enumeration. Grounded on keystorm's
// internal/lsp/navigation.go (SymbolTree/SymbolNode parent-by-index shape)
// and Strob0t-CodeForge's internal/adapter/ristretto/cache.go for the LRU
// tier.
package symindex

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/dshills/leta/internal/errs"
	"github.com/dshills/leta/internal/lspclient"
	"github.com/dshills/leta/internal/lspproto"
)

// Tree is a flattened document-symbol tree avoiding cyclic back-pointers
// (§9): each Node records its parent by index rather than a pointer, so
// lookups walk the parent array instead of following cycles.
type Tree struct {
	URI   lspproto.DocumentURI
	Nodes []Node
}

// Node is one SymbolEntry (§3): name, kind, container name, range,
// selection range, and Parent (-1 for roots).
type Node struct {
	Name           string
	Kind           lspproto.SymbolKind
	ContainerName  string
	Range          lspproto.Range
	SelectionRange lspproto.Range
	Parent         int
	Children       []int
}

// ContainerPath returns the dotted path of container names from the root
// down to (but not including) this node, used by the resolver's
// qualified-name matching (§4.6).
func (t *Tree) ContainerPath(i int) []string {
	var path []string
	n := t.Nodes[i]
	for p := n.Parent; p >= 0; p = t.Nodes[p].Parent {
		path = append([]string{t.Nodes[p].Name}, path...)
	}
	return path
}

func flatten(uri lspproto.DocumentURI, symbols []lspproto.DocumentSymbol) *Tree {
	t := &Tree{URI: uri}
	var add func(sym lspproto.DocumentSymbol, parent int)
	add = func(sym lspproto.DocumentSymbol, parent int) {
		idx := len(t.Nodes)
		t.Nodes = append(t.Nodes, Node{
			Name:           sym.Name,
			Kind:           sym.Kind,
			Range:          sym.Range,
			SelectionRange: sym.SelectionRange,
			Parent:         parent,
		})
		if parent >= 0 {
			t.Nodes[parent].Children = append(t.Nodes[parent].Children, idx)
		}
		for _, child := range sym.Children {
			add(child, idx)
		}
	}
	for _, sym := range symbols {
		add(sym, -1)
	}
	return t
}

// cacheKey is §3's CacheKey (Symbols): (uri, content-hash).
func cacheKey(uri lspproto.DocumentURI, contentHash string) string {
	return string(uri) + "@" + contentHash
}

// Index is the Symbol Index: a byte-budgeted LRU cache of Trees, with
// per-key write guards so concurrent misses on distinct files proceed in
// parallel (§5 "per-key locking to allow parallel misses on distinct
// files").
type Index struct {
	cache *ristretto.Cache[string, *Tree]

	guardsMu sync.Mutex
	guards   map[string]*sync.Mutex
}

// New creates an Index bounded by maxCostBytes, following
// Strob0t-CodeForge's ristretto.Cache sizing idiom (NumCounters =
// maxCost/100*10, BufferItems 64).
func New(maxCostBytes int64) (*Index, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, *Tree]{
		NumCounters: maxCostBytes / 100 * 10,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("symindex: new cache: %w", err)
	}
	return &Index{cache: cache, guards: make(map[string]*sync.Mutex)}, nil
}

func (idx *Index) guard(key string) *sync.Mutex {
	idx.guardsMu.Lock()
	defer idx.guardsMu.Unlock()
	g, ok := idx.guards[key]
	if !ok {
		g = &sync.Mutex{}
		idx.guards[key] = g
	}
	return g
}

// cost approximates a Tree's byte footprint for the LRU budget.
func cost(t *Tree) int64 {
	data, err := json.Marshal(t.Nodes)
	if err != nil {
		return int64(len(t.Nodes) * 128)
	}
	return int64(len(data))
}

// Get returns the cached tree for (uri, contentHash) if present.
func (idx *Index) Get(uri lspproto.DocumentURI, contentHash string) (*Tree, bool) {
	return idx.cache.Get(cacheKey(uri, contentHash))
}

// FetchTree returns the symbol tree for uri, using the cache when the
// on-disk content hash matches a cached entry (§4.5), and otherwise
// opening the document and issuing textDocument/documentSymbol.
func (idx *Index) FetchTree(ctx context.Context, c *lspclient.Client, uri lspproto.DocumentURI, languageID string) (*Tree, error) {
	path := lspproto.URIToFilePath(uri)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}
	hash := lspclient.HashContent(content)
	key := cacheKey(uri, hash)

	guard := idx.guard(key)
	guard.Lock()
	defer guard.Unlock()

	if t, ok := idx.cache.Get(key); ok {
		return t, nil
	}

	if err := c.EnsureOpen(ctx, uri, languageID, content); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := c.Request(ctx, "textDocument/documentSymbol", lspproto.DocumentSymbolParams{
		TextDocument: lspproto.TextDocumentIdentifier{URI: uri},
	}, &raw); err != nil {
		return nil, err
	}

	tree, err := decodeSymbolResponse(uri, raw)
	if err != nil {
		return nil, err
	}
	idx.cache.Set(key, tree, cost(tree))
	idx.cache.Wait()
	return tree, nil
}

// decodeSymbolResponse handles both hierarchical DocumentSymbol[] and the
// flat SymbolInformation[] shape older servers still return.
func decodeSymbolResponse(uri lspproto.DocumentURI, raw json.RawMessage) (*Tree, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return &Tree{URI: uri}, nil
	}

	var hier []lspproto.DocumentSymbol
	if err := json.Unmarshal(raw, &hier); err == nil && len(hier) > 0 {
		if _, ok := probeHierarchical(raw); ok {
			return flatten(uri, hier), nil
		}
	}

	var flat []lspproto.SymbolInformation
	if err := json.Unmarshal(raw, &flat); err == nil {
		t := &Tree{URI: uri}
		for _, si := range flat {
			t.Nodes = append(t.Nodes, Node{
				Name:           si.Name,
				Kind:           si.Kind,
				ContainerName:  si.ContainerName,
				Range:          si.Location.Range,
				SelectionRange: si.Location.Range,
				Parent:         -1,
			})
		}
		return t, nil
	}

	return nil, fmt.Errorf("%w: unrecognized documentSymbol response shape", errs.ErrProtocol)
}

// probeHierarchical distinguishes DocumentSymbol (has "range"+"selectionRange")
// from SymbolInformation (has "location") by sniffing the first element.
func probeHierarchical(raw json.RawMessage) (json.RawMessage, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
		return nil, false
	}
	var probe struct {
		Range    *lspproto.Range `json:"range"`
		Location *lspproto.Location `json:"location"`
	}
	if err := json.Unmarshal(items[0], &probe); err != nil {
		return nil, false
	}
	return items[0], probe.Range != nil && probe.Location == nil
}

// GOMAXPROCSWorkers returns the worker-pool size used to bound
// collect_workspace()'s concurrent fan-out (§4.5 "worker pool sized to
// GOMAXPROCS").
func GOMAXPROCSWorkers() int {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		return 1
	}
	return n
}
