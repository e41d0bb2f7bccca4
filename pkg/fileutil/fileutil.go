// Package fileutil provides file system utility functions.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FindFileCaseInsensitive searches for a file with the given name in the specified directory.
// The search is case-insensitive, so "Hello.BANG" finds "hello.bang".
//
// Example:
//
//	path, err := FindFileCaseInsensitive("/path/to/dir", "Main.Bang")
//	// Will find "main.bang", "MAIN.BANG", "Main.bang", etc.
func FindFileCaseInsensitive(dir, filename string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(entry.Name(), filename) {
			return filepath.Join(dir, entry.Name()), nil
		}
	}

	return "", fmt.Errorf("file not found: %s (searched in %s)", filename, dir)
}

// ResolveScript finds the file a script path on the command line refers to.
// It tries the path as given, then with ext appended when the path has no
// extension, and finally a case-insensitive match for either name in the
// same directory.
func ResolveScript(path, ext string) (string, error) {
	candidates := []string{path}
	if filepath.Ext(path) == "" && ext != "" {
		candidates = append(candidates, path+ext)
	}

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}

	dir := filepath.Dir(path)
	for _, c := range candidates {
		if found, err := FindFileCaseInsensitive(dir, filepath.Base(c)); err == nil {
			return found, nil
		}
	}

	return "", fmt.Errorf("script not found: %s", path)
}
