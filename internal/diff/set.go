package diff

// Set is the ordered batch of diffs produced by one tracked agent turn.
type Set struct {
	// Agent is the name of the agent that produced the changes.
	Agent string `json:"agent"`
	// Task is a short description of what the agent was asked to do.
	Task  string     `json:"task"`
	Diffs []FileDiff `json:"diffs"`
}

// NewSet creates an empty set tagged with its originating agent and task.
func NewSet(agent, task string) *Set {
	return &Set{Agent: agent, Task: task}
}

// Add appends a diff, preserving the order writes were issued.
func (s *Set) Add(d FileDiff) {
	s.Diffs = append(s.Diffs, d)
}

// Empty reports whether the set holds no diffs.
func (s *Set) Empty() bool {
	return len(s.Diffs) == 0
}

// Len returns the number of diffs in the set.
func (s *Set) Len() int {
	return len(s.Diffs)
}
