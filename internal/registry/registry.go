// Package registry implements the Server Registry (C3): a pure table
// keyed by language id mapping to a launch recipe and known quirks.
// Grounded on keystorm's internal/lsp/manager.go DefaultServerConfigs/
// AutoDetectServers/DetectWorkspaceFolders/LanguageIDForExtension, extended
// with the quirks fields SPEC_FULL.md calls for (RootPathRequired,
// AnswersConfiguration, RestartBackoff).
package registry

import (
	"os/exec"
	"time"

	"github.com/dshills/leta/internal/lspproto"
)

// Quirks records how a real server diverges from a strict LSP 3.17
// implementation in ways leta must account for.
type Quirks struct {
	// RootPathRequired marks servers that still expect the deprecated
	// rootPath field alongside rootUri (older server builds).
	RootPathRequired bool
	// AnswersConfiguration marks servers that issue
	// workspace/configuration requests leta must reply to (most do).
	AnswersConfiguration bool
	// RestartBackoff is the base duration for C4's supervised restart
	// exponential backoff.
	RestartBackoff time.Duration
}

// Recipe is one language's launch recipe plus its quirks.
type Recipe struct {
	LanguageID   string
	Executable   string
	Args         []string
	Alternatives []string // preferred-alternative executables, tried in order
	RootMarkers  []string
	Quirks       Quirks
}

// Registry is the pure language -> Recipe table.
type Registry struct {
	recipes map[string]Recipe
}

// New returns a Registry seeded with DefaultRecipes.
func New() *Registry {
	r := &Registry{recipes: make(map[string]Recipe)}
	for _, recipe := range DefaultRecipes() {
		r.recipes[recipe.LanguageID] = recipe
	}
	return r
}

// Register adds or replaces a recipe, used when config's [servers.<lang>]
// overrides the default (SPEC_FULL.md Configuration section).
func (r *Registry) Register(recipe Recipe) {
	r.recipes[recipe.LanguageID] = recipe
}

// Lookup returns the recipe for a language id, if any.
func (r *Registry) Lookup(languageID string) (Recipe, bool) {
	rec, ok := r.recipes[languageID]
	return rec, ok
}

// LanguageForFile detects a file's language by extension (§4.3); unknown
// extensions return "", which callers must treat as "skip silently".
func LanguageForFile(path string) string {
	return lspproto.DetectLanguageID(path)
}

// ResolveExecutable picks the first available executable among a recipe's
// primary Executable and its Alternatives, per PATH lookup. Returns "" if
// none are found — the caller surfaces this as an unconfigured language,
// not an error (§4.3 "unknown languages are skipped silently" extends to
// configured-but-absent binaries).
func (r Recipe) ResolveExecutable() string {
	candidates := append([]string{r.Executable}, r.Alternatives...)
	for _, c := range candidates {
		if _, err := exec.LookPath(c); err == nil {
			return c
		}
	}
	return ""
}

// DefaultRecipes returns the built-in server table, grounded on keystorm's
// DefaultServerConfigs/AutoDetectServers pair.
func DefaultRecipes() []Recipe {
	return []Recipe{
		{
			LanguageID:  "go",
			Executable:  "gopls",
			Args:        []string{"serve"},
			RootMarkers: []string{"go.mod", ".git"},
			Quirks:      Quirks{AnswersConfiguration: true, RestartBackoff: 500 * time.Millisecond},
		},
		{
			LanguageID:  "rust",
			Executable:  "rust-analyzer",
			RootMarkers: []string{"Cargo.toml", ".git"},
			Quirks:      Quirks{AnswersConfiguration: true, RestartBackoff: time.Second},
		},
		{
			LanguageID:   "typescript",
			Executable:   "typescript-language-server",
			Args:         []string{"--stdio"},
			Alternatives: []string{"tsserver"},
			RootMarkers:  []string{"tsconfig.json", "package.json", ".git"},
			Quirks:       Quirks{AnswersConfiguration: true, RestartBackoff: 500 * time.Millisecond},
		},
		{
			LanguageID:   "typescriptreact",
			Executable:   "typescript-language-server",
			Args:         []string{"--stdio"},
			RootMarkers:  []string{"tsconfig.json", "package.json", ".git"},
			Quirks:       Quirks{AnswersConfiguration: true, RestartBackoff: 500 * time.Millisecond},
		},
		{
			LanguageID:  "javascript",
			Executable:  "typescript-language-server",
			Args:        []string{"--stdio"},
			RootMarkers: []string{"package.json", ".git"},
			Quirks:      Quirks{AnswersConfiguration: true, RestartBackoff: 500 * time.Millisecond},
		},
		{
			LanguageID:   "python",
			Executable:   "pyright-langserver",
			Args:         []string{"--stdio"},
			Alternatives: []string{"pylsp", "pyls"},
			RootMarkers:  []string{"pyproject.toml", "setup.py", ".git"},
			Quirks:       Quirks{AnswersConfiguration: true, RestartBackoff: 500 * time.Millisecond},
		},
		{
			LanguageID:  "c",
			Executable:  "clangd",
			RootMarkers: []string{"compile_commands.json", "CMakeLists.txt", ".git"},
			Quirks:      Quirks{RootPathRequired: true, RestartBackoff: time.Second},
		},
		{
			LanguageID:  "cpp",
			Executable:  "clangd",
			RootMarkers: []string{"compile_commands.json", "CMakeLists.txt", ".git"},
			Quirks:      Quirks{RootPathRequired: true, RestartBackoff: time.Second},
		},
	}
}
