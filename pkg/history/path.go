package history

import (
	"os"
	"path/filepath"
)

// Environment variables consulted during history path resolution.
const (
	// EnvHistoryFile overrides the history file location outright.
	EnvHistoryFile = "CONSHELL_HISTORY"
	// EnvXDGDataHome overrides the XDG data directory fallback.
	EnvXDGDataHome = "XDG_DATA_HOME"
)

// legacyBasename is checked in the home directory before falling back to
// the XDG data directory.
const legacyBasename = ".conshell_history"

// DefaultPath resolves the history file location: the explicit override
// variable, then ~/.conshell_history if it already exists, then an
// XDG-style data directory fallback.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvHistoryFile); p != "" {
		return p, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	legacy := filepath.Join(home, legacyBasename)
	if _, err := os.Stat(legacy); err == nil {
		return legacy, nil
	}

	dataHome := os.Getenv(EnvXDGDataHome)
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "conshell", "history"), nil
}
