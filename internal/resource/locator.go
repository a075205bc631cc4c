// Package resource locates compiled native-op artifacts (shared objects and
// data files) across the filesystem layouts the package can be run from:
// an installed package tree, a source checkout, or a bazel workspace where
// build outputs live under bazel-bin instead of the package tree.
package resource

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OverrideRootEnv names the environment variable that, when set, is searched
// before any conventional location.
const OverrideRootEnv = "KERAS_CV_DATA_ROOT"

// NotFoundError is returned when a resource cannot be located in any of the
// searched roots. Attempted holds every candidate path in search order.
type NotFoundError struct {
	Path      string
	Attempted []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unable to locate resource %q, looked in: %s", e.Path, strings.Join(e.Attempted, ", "))
}

// Locator resolves logical resource paths against an ordered set of
// candidate roots. It holds no state beyond the package root; every Resolve
// call re-reads the environment and the filesystem.
type Locator struct {
	root string

	// statFn is swappable for tests.
	statFn func(string) (os.FileInfo, error)
}

// NewLocator creates a Locator for the given source root directory,
// conventionally <workspace>/<package>/src.
func NewLocator(root string) *Locator {
	return &Locator{root: root, statFn: os.Stat}
}

// Root returns the source root the locator searches from.
func (l *Locator) Root() string {
	return l.root
}

// searchRoots builds the ordered candidate-root list: the optional
// environment override first, then the source root, the package directory
// above it, and the bazel-bin output directory under the workspace root.
// The bazel-bin subpath mirrors the package tree (bazel-bin/<package>/src).
func (l *Locator) searchRoots() []string {
	packageRoot := filepath.Dir(l.root)
	workspaceRoot := filepath.Dir(packageRoot)

	roots := make([]string, 0, 4)
	if override := os.Getenv(OverrideRootEnv); override != "" {
		roots = append(roots, override)
	}
	roots = append(roots,
		l.root,
		packageRoot,
		filepath.Join(workspaceRoot, "bazel-bin", filepath.Base(packageRoot), "src"),
	)
	return roots
}

// Resolve returns the absolute path of the first existing candidate for rel,
// which is expressed with forward slashes relative to the package root.
// Existence alone is checked; the match may be a file or a directory.
// When no candidate exists, Resolve returns a *NotFoundError listing every
// attempted path in search order.
func (l *Locator) Resolve(rel string) (string, error) {
	normalized := filepath.FromSlash(rel)

	var attempted []string
	for _, root := range l.searchRoots() {
		if root == "" {
			continue
		}

		candidate := filepath.Clean(filepath.Join(root, normalized))
		attempted = append(attempted, candidate)
		if _, err := l.statFn(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", &NotFoundError{Path: rel, Attempted: attempted}
}
