package ops

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dshills/leta/internal/symindex"
)

// FilesParams is files' input: PATH narrows the listing to a subtree of
// a registered workspace root (default: every registered root);
// ExcludePatterns/IncludePatterns/FilterPatterns add to the ignore set or
// narrow the result respectively (§6 CLI surface `files [PATH] [-x PAT]*
// [-i PAT]* [-f PAT]*`).
type FilesParams struct {
	Path            string   `json:"path,omitempty"`
	ExcludePatterns []string `json:"excludePatterns,omitempty"`
	IncludePatterns []string `json:"includePatterns,omitempty"`
	FilterPatterns  []string `json:"filterPatterns,omitempty"`
}

// FileNode is one entry in files' tree result.
type FileNode struct {
	Name     string     `json:"name"`
	Path     string     `json:"path"`
	IsDir    bool       `json:"isDir"`
	Children []FileNode `json:"children,omitempty"`
}

// FilesResult is files' response shape.
type FilesResult struct {
	Roots []FileNode `json:"roots"`
}

// Files lists workspace files respecting ignore rules, without touching
// any LSP server — a pure filesystem walk, used to back the CLI's `files`
// tree view.
func (h *Handlers) Files(ctx context.Context, p FilesParams) (*FilesResult, error) {
	result := &FilesResult{}
	for _, w := range h.Session.Workspaces() {
		root := w.Root
		if p.Path != "" && !withinRoot(root, p.Path) && !withinRoot(p.Path, root) {
			continue
		}
		start := root
		if p.Path != "" {
			start = p.Path
		}

		ignore := symindex.LoadIgnore(root, p.ExcludePatterns)
		node, err := buildFileTree(root, start, ignore, p.IncludePatterns, p.FilterPatterns)
		if err != nil {
			return nil, errIO(err)
		}
		if node != nil {
			result.Roots = append(result.Roots, *node)
		}
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
	}
	return result, nil
}

func buildFileTree(root, path string, ignore *symindex.IgnoreSet, include, filter []string) (*FileNode, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	if rel != "." && ignore.Matches(rel, info.IsDir()) {
		return nil, nil
	}

	node := &FileNode{Name: info.Name(), Path: path, IsDir: info.IsDir()}
	if !info.IsDir() {
		if !matchesFileFilters(rel, include, filter) {
			return nil, nil
		}
		return node, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		child, err := buildFileTree(root, filepath.Join(path, e.Name()), ignore, include, filter)
		if err != nil {
			return nil, err
		}
		if child != nil {
			node.Children = append(node.Children, *child)
		}
	}
	if len(node.Children) == 0 && len(include)+len(filter) > 0 {
		return nil, nil
	}
	return node, nil
}

func matchesFileFilters(rel string, include, filter []string) bool {
	if len(include) > 0 && !anyGlobMatches(rel, include) {
		return false
	}
	if len(filter) > 0 && !anyGlobMatches(rel, filter) {
		return false
	}
	return true
}

func anyGlobMatches(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, filepath.Base(rel)); ok {
			return true
		}
		if ok, _ := filepath.Match(p, rel); ok {
			return true
		}
	}
	return false
}
