package tools

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gozen/internal/config"
)

func TestAPIStringTruncation(t *testing.T) {
	long := strings.Repeat("x", MaxOutputChars+500)
	res := Ok(long)

	out := res.APIString(0)
	assert.True(t, strings.HasSuffix(out, "[output truncated]"))
	assert.LessOrEqual(t, len(out), MaxOutputChars+len("\n... [output truncated]"))
}

func TestAPIStringConfiguredLimit(t *testing.T) {
	res := Ok(strings.Repeat("x", 100))

	out := res.APIString(40)
	assert.True(t, strings.HasSuffix(out, "[output truncated]"))
	assert.Equal(t, 40+len("\n... [output truncated]"), len(out))

	// Output under the limit passes through untouched.
	assert.Equal(t, res.Output, res.APIString(100))
}

func TestAPIStringError(t *testing.T) {
	res := Fail("boom: %d", 42)
	assert.Equal(t, "ERROR: boom: 42", res.APIString(0))
}

func TestToMap(t *testing.T) {
	ok := OkWithMeta("out", map[string]any{"path": "a.txt"})
	m := ok.ToMap()
	assert.Equal(t, true, m["success"])
	assert.Equal(t, "out", m["output"])
	assert.Equal(t, "a.txt", m["path"])

	bad := Fail("nope")
	m = bad.ToMap()
	assert.Equal(t, false, m["success"])
	assert.Equal(t, "nope", m["error"])
}

func TestArgHelpers(t *testing.T) {
	args := map[string]any{
		"s": "str",
		"f": float64(7),
		"b": true,
	}
	s, ok := GetString(args, "s")
	assert.True(t, ok)
	assert.Equal(t, "str", s)

	// Backends deliver integers as float64.
	n, ok := GetInt(args, "f")
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	assert.Equal(t, "def", GetStringDefault(args, "missing", "def"))
	assert.Equal(t, 3, GetIntDefault(args, "missing", 3))
	assert.True(t, GetBoolDefault(args, "b", false))
	assert.False(t, GetBoolDefault(args, "missing", false))
}

func TestRegistryDispatchUnknownTool(t *testing.T) {
	r := NewRegistry()
	res := r.Dispatch(context.Background(), "nonexistent", nil)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "unknown tool")
}

func TestRegistryDispatchValidation(t *testing.T) {
	g := newTestGuard(t)
	r := NewRegistry()
	require.NoError(t, r.Register(NewFileReadTool(g)))

	res := r.Dispatch(context.Background(), "file_read", map[string]any{})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "invalid arguments")
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	g := newTestGuard(t)
	r := NewRegistry()
	require.NoError(t, r.Register(NewFileReadTool(g)))
	assert.Error(t, r.Register(NewFileReadTool(g)))
}

func TestDefaultRegistryCoversToolSurface(t *testing.T) {
	g := newTestGuard(t)
	r := NewDefaultRegistry(g, config.Default().Tools)

	for _, name := range []string{
		"file_read", "file_write", "file_patch", "file_delete", "file_rename", "file_copy",
		"list_directory", "create_directory", "find_files", "grep_files",
		"run_shell", "run_tests", "install_packages",
		"web_fetch", "web_search", "git_command", "rpc_call",
	} {
		_, ok := r.Get(name)
		assert.True(t, ok, "missing tool %s", name)
	}
}

func TestDeclarationsFilterByAllowed(t *testing.T) {
	g := newTestGuard(t)
	r := NewDefaultRegistry(g, config.Default().Tools)

	decls := r.Declarations([]string{"file_read", "not_a_tool", "run_shell"})
	require.Len(t, decls, 2)
	assert.Equal(t, "file_read", decls[0].Name)
	assert.Equal(t, "run_shell", decls[1].Name)
}

func TestRunShellTool(t *testing.T) {
	g := newTestGuard(t)
	tool := NewRunShellTool(g, 10*time.Second)

	res := tool.Execute(context.Background(), map[string]any{"command": "echo hello"})
	require.True(t, res.Success)
	assert.Contains(t, res.Output, "hello")
}

func TestRunShellToolNonZeroExit(t *testing.T) {
	g := newTestGuard(t)
	tool := NewRunShellTool(g, 10*time.Second)

	res := tool.Execute(context.Background(), map[string]any{"command": "exit 3"})
	assert.False(t, res.Success)
	assert.Equal(t, 3, res.Metadata["exit_code"])
}

func TestRunShellToolTimeout(t *testing.T) {
	g := newTestGuard(t)
	tool := NewRunShellTool(g, 100*time.Millisecond)

	res := tool.Execute(context.Background(), map[string]any{"command": "sleep 5"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "timed out")
}
