// Package filex holds filesystem helpers for the command-line client's
// local state.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureSubdir creates dirName under the current working directory if it
// does not exist and returns its absolute path. The CLI keeps its cached
// session there, so the directory is owner-access only.
func EnsureSubdir(dirName string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}
