package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gozen/internal/client"
	"gozen/internal/config"
	"gozen/internal/plan"
)

// scriptedClient returns a fixed response sequence per Complete call,
// regardless of which task is running.
func planClient(responses ...*client.Response) *fakeClient {
	return &fakeClient{responses: responses}
}

func seedPlan(c *Core, p *plan.Plan) {
	c.setPendingPlan(p)
}

func TestExecuteBuildRunsAllTasksInOrder(t *testing.T) {
	// Each task: one immediate text answer.
	fc := planClient(
		&client.Response{Text: "scaffolded"},
		&client.Response{Text: "implemented"},
	)
	c := newTestCore(t, fc)
	seedPlan(c, &plan.Plan{
		Name: "Demo", TargetDir: ".", Stack: "Go",
		Tasks: []plan.Task{
			{Agent: "architect", Label: "A1", Description: "scaffold"},
			{Agent: "coder", Label: "C1", Description: "implement"},
		},
	})

	events := collect(t, c.ExecuteBuild(context.Background(), "build demo"))
	done := doneEvent(t, events)

	require.NoError(t, done.Completion.Err)
	require.NotNil(t, done.Report)
	require.Len(t, done.Report.Outcomes, 2)
	assert.Equal(t, "A1", done.Report.Outcomes[0].Task.Label)
	assert.Equal(t, "C1", done.Report.Outcomes[1].Task.Label)
	assert.Empty(t, done.Report.Failed())

	// The plan is consumed exactly once.
	assert.Nil(t, c.PendingPlan())

	var statuses int
	for _, ev := range events {
		if ev.Type == EventStatus {
			statuses++
		}
	}
	assert.GreaterOrEqual(t, statuses, 2, "one status per task")
}

func TestExecuteBuildContinuesPastFailures(t *testing.T) {
	fc := &fakeClient{
		responses: []*client.Response{
			// Task 1 exhausts the iteration budget.
			{ToolCalls: []client.ToolCall{{ID: "c", Name: "list_directory", Args: map[string]any{}}}},
		},
		repeat: true,
	}
	cfg := config.Default()
	cfg.Workspace.Watch = false
	cfg.Model.MaxIterations = 2

	c, err := New(cfg, fc, t.TempDir())
	require.NoError(t, err)
	defer c.Close()

	seedPlan(c, &plan.Plan{
		Name: "P", TargetDir: ".", Stack: "Go",
		Tasks: []plan.Task{
			{Agent: "coder", Label: "C1", Description: "first"},
			{Agent: "coder", Label: "C2", Description: "second"},
		},
	})

	done := doneEvent(t, collect(t, c.ExecuteBuild(context.Background(), "req")))
	require.NotNil(t, done.Report)
	require.Len(t, done.Report.Outcomes, 2, "a failed task never aborts the rest")
	assert.ErrorIs(t, done.Report.Outcomes[0].Err, ErrIterationLimit)
	assert.ErrorIs(t, done.Report.Outcomes[1].Err, ErrIterationLimit)
	// Plan-level completion stays clean; failures live in the report.
	assert.NoError(t, done.Completion.Err)
}

func TestExecuteBuildStagesDiffsWhenAutoAcceptOff(t *testing.T) {
	fc := planClient(
		&client.Response{ToolCalls: []client.ToolCall{{
			ID: "call_0", Name: "file_write",
			Args: map[string]any{"path": "main.go", "content": "package main"},
		}}},
		&client.Response{Text: "written"},
	)
	c := newTestCore(t, fc)
	seedPlan(c, &plan.Plan{
		Name: "P", TargetDir: ".", Stack: "Go",
		Tasks: []plan.Task{{Agent: "coder", Label: "C1", Description: "write main"}},
	})

	events := collect(t, c.ExecuteBuild(context.Background(), "req"))
	done := doneEvent(t, events)

	require.Len(t, done.Report.DiffSets, 1)
	require.Equal(t, 1, done.Report.DiffSets[0].Len())
	assert.Equal(t, "main.go", done.Report.DiffSets[0].Diffs[0].Path)

	_, err := os.Stat(filepath.Join(c.Root(), "main.go"))
	assert.True(t, os.IsNotExist(err), "staged plan writes stay off disk")
}

func TestExecuteBuildAutoAcceptWritesDirectly(t *testing.T) {
	fc := planClient(
		&client.Response{ToolCalls: []client.ToolCall{{
			ID: "call_0", Name: "file_write",
			Args: map[string]any{"path": "main.go", "content": "package main"},
		}}},
		&client.Response{Text: "written"},
	)
	cfg := config.Default()
	cfg.Workspace.Watch = false
	cfg.Diff.AutoAccept = true

	c, err := New(cfg, fc, t.TempDir())
	require.NoError(t, err)
	defer c.Close()

	seedPlan(c, &plan.Plan{
		Name: "P", TargetDir: ".", Stack: "Go",
		Tasks: []plan.Task{{Agent: "coder", Label: "C1", Description: "write main"}},
	})

	done := doneEvent(t, collect(t, c.ExecuteBuild(context.Background(), "req")))
	assert.Empty(t, done.Report.DiffSets)

	data, err := os.ReadFile(filepath.Join(c.Root(), "main.go"))
	require.NoError(t, err)
	assert.Equal(t, "package main", string(data))

	require.Len(t, done.Report.Outcomes, 1)
	assert.Equal(t, []string{"main.go"}, done.Report.Outcomes[0].Files)
}

func TestExecuteBuildTargetDirSwitchAndRestore(t *testing.T) {
	fc := planClient(&client.Response{Text: "ok"})
	cfg := config.Default()
	cfg.Workspace.Watch = false
	cfg.Diff.AutoAccept = true

	c, err := New(cfg, fc, t.TempDir())
	require.NoError(t, err)
	defer c.Close()
	origRoot := c.Root()

	seedPlan(c, &plan.Plan{
		Name: "Sub", TargetDir: "subproj", Stack: "Go",
		Tasks: []plan.Task{{Agent: "coder", Label: "C1", Description: "work"}},
	})

	doneEvent(t, collect(t, c.ExecuteBuild(context.Background(), "req")))

	// Target dir was created and the root came back.
	info, statErr := os.Stat(filepath.Join(origRoot, "subproj"))
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())
	assert.Equal(t, origRoot, c.Root())
}

func TestExecuteBuildFallsBackWithoutPendingPlan(t *testing.T) {
	fc := &fakeClient{responses: []*client.Response{{Text: "ok"}}, repeat: true}
	c := newTestCore(t, fc)

	done := doneEvent(t, collect(t, c.ExecuteBuild(context.Background(), "make a thing")))
	require.NotNil(t, done.Report)
	require.Len(t, done.Report.Outcomes, 3, "default plan: scaffold, implement, debug")
	assert.Equal(t, "architect", done.Report.Outcomes[0].Task.Agent)
	assert.Equal(t, "coder", done.Report.Outcomes[1].Task.Agent)
	assert.Equal(t, "debug", done.Report.Outcomes[2].Task.Agent)
}

func TestTaskPromptCarriesRollingSummary(t *testing.T) {
	fc := planClient(
		// Task 1 writes a file directly (auto-accept).
		&client.Response{ToolCalls: []client.ToolCall{{
			ID: "call_0", Name: "file_write",
			Args: map[string]any{"path": "a.go", "content": "package a"},
		}}},
		&client.Response{Text: "done one"},
		// Task 2 answers immediately.
		&client.Response{Text: "done two"},
	)
	cfg := config.Default()
	cfg.Workspace.Watch = false
	cfg.Diff.AutoAccept = true

	c, err := New(cfg, fc, t.TempDir())
	require.NoError(t, err)
	defer c.Close()

	seedPlan(c, &plan.Plan{
		Name: "P", TargetDir: ".", Stack: "Go",
		Tasks: []plan.Task{
			{Agent: "coder", Label: "C1", Description: "write a.go"},
			{Agent: "coder", Label: "C2", Description: "follow up"},
		},
	})

	doneEvent(t, collect(t, c.ExecuteBuild(context.Background(), "req")))

	// The second task's prompt mentions the first task's written file.
	last := fc.requests[len(fc.requests)-1]
	prompt := last.Messages[len(last.Messages)-1].Content
	assert.Contains(t, prompt, "C1: wrote a.go")
	assert.Contains(t, prompt, "follow up")
}
