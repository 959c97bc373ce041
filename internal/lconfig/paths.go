package lconfig

import (
	"os"
	"path/filepath"
)

// ConfigDir returns the user config directory for leta (§6 "table file
// under a user config directory"), creating it if necessary.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "leta")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// CacheDir returns the user cache directory for leta (§6 "persisted state
// under a user cache directory"), creating it if necessary.
func CacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "leta")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// ConfigFilePath is the path to config.toml under ConfigDir.
func ConfigFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EndpointFilePath is the path to the daemon's endpoint/PID file (§6).
func EndpointFilePath() (string, error) {
	dir, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "daemon.endpoint"), nil
}

// SocketFilePath is the Unix domain socket path (C9).
func SocketFilePath() (string, error) {
	dir, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "leta.sock"), nil
}

// LogDir is the directory holding daemon.log and per-server log files.
func LogDir() (string, error) {
	dir, err := CacheDir()
	if err != nil {
		return "", err
	}
	logDir := filepath.Join(dir, "log")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return "", err
	}
	return logDir, nil
}

// HoverDBPath is the sqlite file backing the Hover Cache's L2 tier (C8).
func HoverDBPath() (string, error) {
	dir, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "hover.db"), nil
}
