package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gozen/internal/config"
)

func newTestScanner(t *testing.T, watch bool) (*Scanner, string) {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default().Workspace
	cfg.Watch = watch

	s, err := NewScanner(root, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, root
}

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0644))
}

func TestScanListsFiles(t *testing.T) {
	s, root := newTestScanner(t, false)
	write(t, root, "main.go", "package main")
	write(t, root, "pkg/util.go", "package pkg")

	snap, err := s.Scan()
	require.NoError(t, err)
	assert.Contains(t, snap.Files, "main.go")
	assert.Contains(t, snap.Files, filepath.Join("pkg", "util.go"))
}

func TestScanSkipsIgnoredDirs(t *testing.T) {
	s, root := newTestScanner(t, false)
	write(t, root, "node_modules/dep/index.js", "x")
	write(t, root, "app.js", "x")

	snap, err := s.Scan()
	require.NoError(t, err)
	assert.Contains(t, snap.Files, "app.js")
	for _, f := range snap.Files {
		assert.NotContains(t, f, "node_modules")
	}
}

func TestDetectStack(t *testing.T) {
	s, root := newTestScanner(t, false)
	write(t, root, "go.mod", "module x")

	snap, err := s.Scan()
	require.NoError(t, err)
	assert.Equal(t, "Go", snap.Stack)
}

func TestScanCachesUntilInvalidated(t *testing.T) {
	s, root := newTestScanner(t, false)
	write(t, root, "a.txt", "x")

	first, err := s.Scan()
	require.NoError(t, err)
	require.Len(t, first.Files, 1)

	// New file is invisible until the cache is invalidated.
	write(t, root, "b.txt", "x")
	cached, err := s.Scan()
	require.NoError(t, err)
	assert.Len(t, cached.Files, 1)

	s.Invalidate()
	fresh, err := s.Scan()
	require.NoError(t, err)
	assert.Len(t, fresh.Files, 2)
}

func TestScanLoadsRules(t *testing.T) {
	s, root := newTestScanner(t, false)
	write(t, root, RulesFile, "always use tabs")

	snap, err := s.Scan()
	require.NoError(t, err)
	assert.Equal(t, "always use tabs", snap.Rules)
}

func TestSummaryMentionsStackAndFiles(t *testing.T) {
	s, root := newTestScanner(t, false)
	write(t, root, "go.mod", "module x")
	write(t, root, "main.go", "package main")

	snap, err := s.Scan()
	require.NoError(t, err)
	out := snap.Summary()
	assert.Contains(t, out, "Detected stack: Go")
	assert.Contains(t, out, "main.go")
}
