package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryHasBuiltins(t *testing.T) {
	r := DefaultRegistry()
	for _, name := range []string{"chat", "architect", "coder", "researcher", "debug", "git"} {
		assert.True(t, r.Has(name), "missing builtin %s", name)
	}
	assert.False(t, r.Has("intern"))
}

func TestGet(t *testing.T) {
	r := DefaultRegistry()
	p, ok := r.Get("coder")
	require.True(t, ok)
	assert.Equal(t, "coder", p.Name)
	assert.NotEmpty(t, p.SystemPrompt)
	assert.Greater(t, p.MaxTokens, 0)
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(&Profile{Name: "a"}, &Profile{Name: "a"})
	assert.Error(t, err)

	_, err = NewRegistry(&Profile{})
	assert.Error(t, err)
}

func TestAllowsTool(t *testing.T) {
	r := DefaultRegistry()
	chat, _ := r.Get("chat")
	assert.True(t, chat.AllowsTool("file_read"))
	assert.False(t, chat.AllowsTool("file_write"))

	coder, _ := r.Get("coder")
	assert.True(t, coder.AllowsTool("file_write"))
	assert.True(t, coder.AllowsTool("run_shell"))
}

func TestNamesSorted(t *testing.T) {
	r := DefaultRegistry()
	names := r.Names()
	require.Len(t, names, 6)
	assert.Equal(t, []string{"architect", "chat", "coder", "debug", "git", "researcher"}, names)
}
