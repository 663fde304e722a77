// Package pathutil validates user-supplied file paths before anything opens
// them. Workflow configurations and file sources both take paths straight
// from configuration documents, so both apply the same traversal rules.
package pathutil

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrTraversal matches any rejection caused by a ".." path segment.
var ErrTraversal = errors.New("path escapes its base directory")

// Validate rejects empty paths, paths holding null bytes, and paths with a
// ".." segment anywhere. The check runs on the raw path rather than the
// cleaned one: cleaning "data/../etc/fields.yaml" first would leave
// "etc/fields.yaml" and hide the traversal.
func Validate(path string) error {
	if path == "" {
		return errors.New("file path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return errors.New("file path contains a null byte")
	}
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if segment == ".." {
			return fmt.Errorf("file path %q: %w", path, ErrTraversal)
		}
	}
	return nil
}
