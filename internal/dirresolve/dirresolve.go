// Package dirresolve chooses a target directory for a download: an
// explicit argument, else $HOME/Downloads, else an error. No OS-specific
// known-folder API is part of this codebase's dependency set, so the
// "OS-reported Downloads folder" step from spec.md collapses into the
// home-directory step, same as DefaultSettings in the teacher repository
// (internal/config/settings.go) resolves its default download directory.
package dirresolve

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrUnresolved is returned when no directory could be determined.
var ErrUnresolved = errors.New("Unable to resolve a download directory")

// Resolve returns explicit if non-empty (creating it if missing), else
// $HOME/Downloads (creating it if missing), else ErrUnresolved.
func Resolve(explicit string) (string, error) {
	if explicit != "" {
		if err := os.MkdirAll(explicit, 0o755); err != nil {
			return "", err
		}
		abs, err := filepath.Abs(explicit)
		if err != nil {
			return "", err
		}
		return abs, nil
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", ErrUnresolved
	}
	dir := filepath.Join(home, "Downloads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", ErrUnresolved
	}
	return dir, nil
}
