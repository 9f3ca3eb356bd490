package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesTool(t *testing.T) {
	g := newTestGuard(t)
	writeWorkspaceFile(t, g, "main.go", "package main")
	writeWorkspaceFile(t, g, "pkg/util.go", "package pkg")
	writeWorkspaceFile(t, g, "README.md", "# readme")

	res := NewFindFilesTool(g).Execute(context.Background(), map[string]any{"pattern": "**/*.go"})
	require.True(t, res.Success)
	assert.Contains(t, res.Output, "main.go")
	assert.Contains(t, res.Output, "pkg/util.go")
	assert.NotContains(t, res.Output, "README.md")
}

func TestFindFilesToolSkipsIgnoredDirs(t *testing.T) {
	g := newTestGuard(t)
	writeWorkspaceFile(t, g, "node_modules/dep/index.js", "x")
	writeWorkspaceFile(t, g, "app.js", "x")

	res := NewFindFilesTool(g).Execute(context.Background(), map[string]any{"pattern": "**/*.js"})
	require.True(t, res.Success)
	assert.Contains(t, res.Output, "app.js")
	assert.NotContains(t, res.Output, "node_modules")
}

func TestFindFilesToolNoMatch(t *testing.T) {
	g := newTestGuard(t)
	res := NewFindFilesTool(g).Execute(context.Background(), map[string]any{"pattern": "**/*.rs"})
	require.True(t, res.Success)
	assert.Contains(t, res.Output, "No files match")
}

func TestFindFilesToolValidatesPattern(t *testing.T) {
	g := newTestGuard(t)
	err := NewFindFilesTool(g).Validate(map[string]any{"pattern": "[unclosed"})
	assert.Error(t, err)
}

func TestGrepFilesTool(t *testing.T) {
	g := newTestGuard(t)
	writeWorkspaceFile(t, g, "a.go", "package main\nfunc Target() {}\n")
	writeWorkspaceFile(t, g, "b.go", "package main\n")

	res := NewGrepFilesTool(g).Execute(context.Background(), map[string]any{"pattern": "func Target"})
	require.True(t, res.Success)
	assert.Contains(t, res.Output, "a.go:2")
	assert.NotContains(t, res.Output, "b.go")
}

func TestGrepFilesToolGlobFilter(t *testing.T) {
	g := newTestGuard(t)
	writeWorkspaceFile(t, g, "a.go", "needle\n")
	writeWorkspaceFile(t, g, "a.md", "needle\n")

	res := NewGrepFilesTool(g).Execute(context.Background(), map[string]any{
		"pattern": "needle", "glob": "**/*.go",
	})
	require.True(t, res.Success)
	assert.Contains(t, res.Output, "a.go")
	assert.NotContains(t, res.Output, "a.md")
}

func TestGrepFilesToolValidatesRegexp(t *testing.T) {
	g := newTestGuard(t)
	err := NewGrepFilesTool(g).Validate(map[string]any{"pattern": "("})
	assert.Error(t, err)
}
