package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGuard(t *testing.T) *Guard {
	t.Helper()
	g, err := NewGuard(t.TempDir())
	require.NoError(t, err)
	return g
}

func TestResolveRelativeInsideRoot(t *testing.T) {
	g := newTestGuard(t)

	got, err := g.Resolve("sub/file.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(g.Root(), "sub", "file.txt"), got)
}

func TestResolveRejectsTraversal(t *testing.T) {
	g := newTestGuard(t)

	_, err := g.Resolve("../escape.txt")
	assert.Error(t, err)

	_, err = g.Resolve("sub/../../escape.txt")
	assert.Error(t, err)
}

func TestResolveRejectsAbsoluteOutside(t *testing.T) {
	g := newTestGuard(t)

	_, err := g.Resolve("/etc/passwd")
	assert.Error(t, err)
}

func TestResolveRejectsEmptyAndNullByte(t *testing.T) {
	g := newTestGuard(t)

	_, err := g.Resolve("")
	assert.Error(t, err)

	_, err = g.Resolve("a\x00b")
	assert.Error(t, err)
}

func TestResolveSymlinkEscape(t *testing.T) {
	g := newTestGuard(t)
	outside := t.TempDir()
	link := filepath.Join(g.Root(), "link")
	require.NoError(t, os.Symlink(outside, link))

	_, err := g.Resolve("link/file.txt")
	assert.Error(t, err)
}

func TestRelRoundTrip(t *testing.T) {
	g := newTestGuard(t)

	abs, err := g.Resolve("a/b.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("a", "b.txt"), g.Rel(abs))
}
