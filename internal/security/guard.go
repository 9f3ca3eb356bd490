// Package security confines file operations to the workspace root.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Guard resolves user-supplied paths against a workspace root and rejects
// anything that escapes it.
type Guard struct {
	root string
}

// NewGuard creates a guard rooted at dir. The root is resolved through
// symlinks once at construction.
func NewGuard(dir string) (*Guard, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace root: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace root: %w", err)
	}
	return &Guard{root: resolved}, nil
}

// Root returns the resolved workspace root.
func (g *Guard) Root() string {
	return g.root
}

// Resolve turns path, relative or absolute, into an absolute path and
// verifies it stays within the workspace root. The target does not have to
// exist; symlinks in the existing part of the path are resolved so a link
// cannot smuggle a write outside the root.
func (g *Guard) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty path")
	}
	if strings.Contains(path, "\x00") {
		return "", fmt.Errorf("null byte in path")
	}

	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(g.root, abs)
	}
	abs = filepath.Clean(abs)

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("resolving %s: %w", path, err)
		}
		// Target missing: resolve the nearest existing ancestor and
		// rebuild the tail on top of it.
		resolved, err = g.resolveMissing(abs)
		if err != nil {
			return "", err
		}
	}

	if !g.contains(resolved) {
		return "", fmt.Errorf("path %q is outside the workspace", path)
	}
	return resolved, nil
}

func (g *Guard) resolveMissing(abs string) (string, error) {
	dir := abs
	var tail []string
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		tail = append([]string{filepath.Base(dir)}, tail...)
		dir = parent

		resolved, err := filepath.EvalSymlinks(dir)
		if err == nil {
			return filepath.Join(append([]string{resolved}, tail...)...), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("resolving %s: %w", abs, err)
		}
	}
}

func (g *Guard) contains(abs string) bool {
	rel, err := filepath.Rel(g.root, abs)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Rel returns abs relative to the workspace root, falling back to abs when
// it cannot be made relative.
func (g *Guard) Rel(abs string) string {
	rel, err := filepath.Rel(g.root, abs)
	if err != nil {
		return abs
	}
	return rel
}
