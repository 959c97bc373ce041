package registry

import (
	"os"
	"path/filepath"
)

// DetectRoot walks upward from startDir looking for any of a language's
// root markers, returning the first ancestor (including startDir) that
// contains one. Falls back to startDir if no marker is found, mirroring
// keystorm's DetectWorkspaceFolders fallback behavior.
func (r Recipe) DetectRoot(startDir string) string {
	dir := startDir
	for {
		for _, marker := range r.RootMarkers {
			if hasMarker(dir, marker) {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return startDir
		}
		dir = parent
	}
}

func hasMarker(dir, marker string) bool {
	if containsGlobChar(marker) {
		matches, err := filepath.Glob(filepath.Join(dir, marker))
		return err == nil && len(matches) > 0
	}
	_, err := os.Stat(filepath.Join(dir, marker))
	return err == nil
}

func containsGlobChar(s string) bool {
	for _, r := range s {
		if r == '*' || r == '?' || r == '[' {
			return true
		}
	}
	return false
}
