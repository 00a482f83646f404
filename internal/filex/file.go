// Package filex contains helpers for the local staging directory that holds
// uploaded files until they are pushed to media storage.
package filex

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// EnsureSubDir creates dirName (relative to the working directory unless it
// is absolute) and returns its absolute path.
func EnsureSubDir(dirName string) (string, error) {
	dir := dirName
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dirName)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// StagedPath returns a fresh, collision-free path inside dir that keeps the
// extension of the client supplied file name. The client name itself is
// never used as a path component.
func StagedPath(dir, originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	return filepath.Join(dir, uuid.NewString()+ext)
}

// RemoveIfExists deletes path. A missing file is not an error.
func RemoveIfExists(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
