// Package memory keeps the bounded conversation log shared across agents.
package memory

import "sync"

// Role tags the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry in the conversation log.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Memory is an ordered message log bounded to a maximum count. When the
// bound is exceeded the oldest entries are evicted first.
type Memory struct {
	mu       sync.Mutex
	messages []Message
	limit    int
}

// DefaultLimit is the message bound used when none is configured.
const DefaultLimit = 60

// New creates a memory bounded to limit messages. Non-positive limits fall
// back to DefaultLimit.
func New(limit int) *Memory {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Memory{limit: limit}
}

// Add appends a message, evicting the oldest entries past the bound.
func (m *Memory) Add(role Role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, Message{Role: role, Content: content})
	if excess := len(m.messages) - m.limit; excess > 0 {
		m.messages = m.messages[excess:]
	}
}

// Messages returns a copy of the log in turn order.
func (m *Memory) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Len returns the number of retained messages.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// Clear discards all messages.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
}
