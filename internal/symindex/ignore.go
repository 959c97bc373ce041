package symindex

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ignorePattern is one parsed .gitignore line, adapted from keystorm's
// internal/project/watcher/ignore.go matcher (negation, directory-only,
// rooted patterns) rather than copied verbatim — here it matches
// workspace-relative paths using doublestar instead of the teacher's
// hand-rolled glob, since collect_workspace() already depends on
// doublestar for config excludes and a second glob engine would be
// redundant.
type ignorePattern struct {
	pattern  string
	negation bool
	dirOnly  bool
	rooted   bool
}

// IgnoreSet holds the compiled rules for one workspace root.
type IgnoreSet struct {
	patterns []ignorePattern
}

// LoadIgnore reads root/.gitignore, if present, plus any extra exclude
// globs from configuration.
func LoadIgnore(root string, extraExcludes []string) *IgnoreSet {
	is := &IgnoreSet{}
	is.addDefaults()

	if f, err := os.Open(filepath.Join(root, ".gitignore")); err == nil {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			is.addLine(scanner.Text())
		}
	}
	for _, g := range extraExcludes {
		is.addLine(g)
	}
	return is
}

func (is *IgnoreSet) addDefaults() {
	for _, p := range []string{".git", "node_modules", ".hg", ".svn"} {
		is.addLine(p)
	}
}

func (is *IgnoreSet) addLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	p := ignorePattern{}
	if strings.HasPrefix(line, "!") {
		p.negation = true
		line = line[1:]
	}
	if strings.HasPrefix(line, "/") {
		p.rooted = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	p.pattern = line
	is.patterns = append(is.patterns, p)
}

// Matches reports whether relPath (workspace-relative, forward-slashed)
// should be excluded.
func (is *IgnoreSet) Matches(relPath string, isDir bool) bool {
	relPath = filepath.ToSlash(relPath)
	matched := false
	for _, p := range is.patterns {
		if p.dirOnly && !isDir {
			// still may match a parent directory component
		}
		ok := matchPattern(p, relPath)
		if ok {
			matched = !p.negation
		}
	}
	return matched
}

func matchPattern(p ignorePattern, relPath string) bool {
	pattern := p.pattern
	if !strings.Contains(pattern, "/") && !p.rooted {
		// Bare name: matches at any depth, i.e. check every path segment.
		segments := strings.Split(relPath, "/")
		for _, seg := range segments {
			if ok, _ := doublestar.Match(pattern, seg); ok {
				return true
			}
		}
		return false
	}
	ok, _ := doublestar.Match(pattern, relPath)
	if ok {
		return true
	}
	return strings.HasPrefix(relPath, pattern+"/")
}
