package symindex

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/dshills/leta/internal/lspclient"
	"github.com/dshills/leta/internal/lspproto"
	"github.com/dshills/leta/internal/registry"
)

// Collected pairs a file's symbol tree with its path for
// collect_workspace()'s flattened output.
type Collected struct {
	Path string
	URI  lspproto.DocumentURI
	Tree *Tree
}

// ServerFor resolves (and ensures) the language server for a file, used by
// collect_workspace()'s per-language fan-out.
type ServerFor func(ctx context.Context, languageID string) (*lspclient.Client, error)

// CollectWorkspace walks root respecting .gitignore and configured
// excludes, fans files out per detected language to serverFor, and
// collects their symbol trees concurrently, bounded to GOMAXPROCS workers
// (§4.5). Files whose per-file fetch fails with a transient error
// (TimedOut/ServerDead) are skipped into warnings rather than aborting the
// whole collection (§4.7 failure semantics).
func (idx *Index) CollectWorkspace(ctx context.Context, root string, extraExcludes []string, serverFor ServerFor) ([]Collected, []string, error) {
	ignore := LoadIgnore(root, extraExcludes)

	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if rel == "." {
			return nil
		}
		if info.IsDir() {
			if ignore.Matches(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if ignore.Matches(rel, false) {
			return nil
		}
		if registry.LanguageForFile(path) == "" {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	type result struct {
		c   Collected
		ok  bool
		warn string
	}

	sem := make(chan struct{}, GOMAXPROCSWorkers())
	resultsCh := make(chan result, len(files))
	var wg sync.WaitGroup

	for _, path := range files {
		path := path
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			select {
			case <-ctx.Done():
				resultsCh <- result{warn: path + ": cancelled"}
				return
			default:
			}

			languageID := registry.LanguageForFile(path)
			client, err := serverFor(ctx, languageID)
			if err != nil {
				resultsCh <- result{warn: path + ": " + err.Error()}
				return
			}
			uri := lspproto.FilePathToURI(path)
			tree, err := idx.FetchTree(ctx, client, uri, languageID)
			if err != nil {
				resultsCh <- result{warn: path + ": " + err.Error()}
				return
			}
			resultsCh <- result{c: Collected{Path: path, URI: uri, Tree: tree}, ok: true}
		}()
	}

	wg.Wait()
	close(resultsCh)

	var collected []Collected
	var warnings []string
	for r := range resultsCh {
		if r.ok {
			collected = append(collected, r.c)
		} else if r.warn != "" {
			warnings = append(warnings, r.warn)
		}
	}
	return collected, warnings, nil
}
