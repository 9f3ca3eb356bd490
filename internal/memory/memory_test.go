package memory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndOrder(t *testing.T) {
	m := New(10)
	m.Add(RoleUser, "hello")
	m.Add(RoleAssistant, "hi")

	msgs := m.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
}

func TestBoundEvictsOldestFirst(t *testing.T) {
	m := New(3)
	for i := 0; i < 5; i++ {
		m.Add(RoleUser, fmt.Sprintf("msg-%d", i))
	}

	msgs := m.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "msg-2", msgs[0].Content)
	assert.Equal(t, "msg-4", msgs[2].Content)
}

func TestNonPositiveLimitUsesDefault(t *testing.T) {
	m := New(0)
	for i := 0; i < DefaultLimit+5; i++ {
		m.Add(RoleUser, "x")
	}
	assert.Equal(t, DefaultLimit, m.Len())
}

func TestMessagesReturnsCopy(t *testing.T) {
	m := New(10)
	m.Add(RoleUser, "original")

	msgs := m.Messages()
	msgs[0].Content = "mutated"
	assert.Equal(t, "original", m.Messages()[0].Content)
}

func TestClear(t *testing.T) {
	m := New(10)
	m.Add(RoleUser, "x")
	m.Clear()
	assert.Equal(t, 0, m.Len())
}
