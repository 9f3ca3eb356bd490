package core

import (
	"time"

	"gozen/internal/diff"
	"gozen/internal/tools"
)

// EventType discriminates orchestrator events.
type EventType string

const (
	// EventDelta carries an incremental fragment of the final answer.
	EventDelta EventType = "delta"
	// EventToolCall announces a tool invocation before it runs.
	EventToolCall EventType = "tool_call"
	// EventToolResult carries the finished call with its result attached.
	EventToolResult EventType = "tool_result"
	// EventStatus carries progress notes, mainly during plan execution.
	EventStatus EventType = "status"
	// EventDiffReady hands the accumulated diff set to the caller.
	EventDiffReady EventType = "diff_ready"
	// EventDone terminates the stream. Exactly one per run.
	EventDone EventType = "done"
)

// ToolCall is one tool invocation requested by the model, terminal once
// its result is attached.
type ToolCall struct {
	ID      string
	Name    string
	Args    map[string]any
	Result  *tools.Result
	Elapsed time.Duration
}

// Completion is the payload of the final event of a run.
type Completion struct {
	Agent        string
	Text         string
	ToolCalls    []ToolCall
	InputTokens  int
	OutputTokens int
	Elapsed      time.Duration
	Err          error
}

// Event is one item in the ordered stream produced by a run.
type Event struct {
	Type       EventType
	Delta      string
	Call       *ToolCall
	Status     string
	Diffs      *diff.Set
	Completion *Completion
	// Report is attached to the done event of a plan execution.
	Report *ExecutionReport
}
