package lspproto

import "strings"

// extensionLanguages mirrors keystorm's LanguageIDForExtension map, pruned
// to the languages the default server registry (internal/registry) ships
// recipes for, plus the long tail left in for §4.3's "unknown languages are
// skipped silently" — they resolve here but have no registry entry and are
// filtered out upstream.
var extensionLanguages = map[string]string{
	".go":    "go",
	".rs":    "rust",
	".py":    "python",
	".pyi":   "python",
	".ts":    "typescript",
	".tsx":   "typescriptreact",
	".js":    "javascript",
	".jsx":   "javascriptreact",
	".c":     "c",
	".h":     "c",
	".cc":    "cpp",
	".cpp":   "cpp",
	".cxx":   "cpp",
	".hpp":   "cpp",
	".java":  "java",
	".rb":    "ruby",
	".php":   "php",
	".cs":    "csharp",
	".lua":   "lua",
	".zig":   "zig",
	".kt":    "kotlin",
	".swift": "swift",
}

// DetectLanguageID returns the LSP languageId for a file path, by
// extension, or "" if unknown (§4.3).
func DetectLanguageID(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return ""
	}
	ext := strings.ToLower(path[idx:])
	return extensionLanguages[ext]
}

// RootMarkers are the file/directory names that delimit a project root for
// a language (§4.3). Checked in order; the first ancestor directory
// containing any of these names is the root.
var RootMarkers = map[string][]string{
	"go":               {"go.mod", ".git"},
	"rust":             {"Cargo.toml", ".git"},
	"python":           {"pyproject.toml", "setup.py", "setup.cfg", ".git"},
	"typescript":       {"package.json", "tsconfig.json", ".git"},
	"typescriptreact":  {"package.json", "tsconfig.json", ".git"},
	"javascript":       {"package.json", ".git"},
	"javascriptreact":  {"package.json", ".git"},
	"c":                {"compile_commands.json", "CMakeLists.txt", ".git"},
	"cpp":              {"compile_commands.json", "CMakeLists.txt", ".git"},
	"java":             {"pom.xml", "build.gradle", ".git"},
	"ruby":             {"Gemfile", ".git"},
	"php":              {"composer.json", ".git"},
	"csharp":           {"*.sln", "*.csproj", ".git"},
	"lua":              {".luarc.json", ".git"},
	"zig":              {"build.zig", ".git"},
	"kotlin":           {"build.gradle.kts", "settings.gradle.kts", ".git"},
	"swift":            {"Package.swift", ".git"},
}
