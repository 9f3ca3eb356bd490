package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gozen/internal/diff"
	"gozen/internal/logging"
	"gozen/internal/plan"
)

// TaskOutcome records what one build task produced.
type TaskOutcome struct {
	Task plan.Task
	// Err carries the task's failure. Failures never abort later tasks.
	Err error
	// Files lists paths written or patched by successful tool calls.
	Files []string
}

// ExecutionReport aggregates a whole plan run for the caller.
type ExecutionReport struct {
	Plan     *plan.Plan
	Outcomes []TaskOutcome
	// DiffSets holds the staged changes of each task, in task order,
	// when auto-accept is off.
	DiffSets []*diff.Set
}

// Failed returns the outcomes whose task ended in an error.
func (r *ExecutionReport) Failed() []TaskOutcome {
	var failed []TaskOutcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// rollingSummaryDepth is how many completed tasks feed the next prompt.
const rollingSummaryDepth = 3

// ExecuteBuild consumes the pending plan, falling back to the default
// three-task plan when none is pending, and runs every task in order.
// Task failures are reported through the final ExecutionReport, never by
// aborting the remaining tasks. The pending plan is always cleared.
func (c *Core) ExecuteBuild(ctx context.Context, request string) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)

		p := c.takePendingPlan()
		if p == nil {
			p = plan.Fallback(request)
		}
		c.executePlan(ctx, out, p, request)
	}()
	return out
}

func (c *Core) executePlan(ctx context.Context, out chan<- Event, p *plan.Plan, request string) {
	start := time.Now()

	emit := func(ev Event) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	report := &ExecutionReport{Plan: p}
	finish := func(err error) {
		emit(Event{
			Type:   EventDone,
			Report: report,
			Completion: &Completion{
				Agent:   "executor",
				Text:    executionSummary(report),
				Elapsed: time.Since(start),
				Err:     err,
			},
		})
	}

	if p.TargetDir != "" && p.TargetDir != "." {
		restore, err := c.pushWorkspace(p.TargetDir)
		if err != nil {
			finish(err)
			return
		}
		// The original root comes back no matter how execution ends.
		defer restore()
	}

	autoAccept := c.cfg.Diff.AutoAccept
	var summaries []string

	for i, task := range p.Tasks {
		emit(Event{
			Type:   EventStatus,
			Status: fmt.Sprintf("task %d/%d [%s] %s: %s", i+1, len(p.Tasks), task.Agent, task.Label, task.Description),
		})

		prof, ok := c.agents.Get(task.Agent)
		if !ok {
			// Unknown agents fall back to the implementation profile.
			prof, _ = c.agents.Get("coder")
		}

		prompt := c.taskPrompt(p, task, request, summaries)
		inner := c.run(ctx, prof, prompt, runOptions{
			extraContext: c.workspaceContext(),
			task:         task.Label + ": " + task.Description,
			track:        !autoAccept,
		})

		outcome := TaskOutcome{Task: task}
		for ev := range inner {
			switch ev.Type {
			case EventDiffReady:
				report.DiffSets = append(report.DiffSets, ev.Diffs)
				emit(ev)
			case EventDone:
				outcome.Err = ev.Completion.Err
				outcome.Files = writtenFiles(ev.Completion.ToolCalls)
			default:
				emit(ev)
			}
		}

		report.Outcomes = append(report.Outcomes, outcome)
		summaries = appendSummary(summaries, task, outcome)
		if outcome.Err != nil {
			logging.Warn("build task failed, continuing",
				"task", task.Label, "agent", task.Agent, "error", outcome.Err)
			emit(Event{
				Type:   EventStatus,
				Status: fmt.Sprintf("task %s failed: %v (continuing)", task.Label, outcome.Err),
			})
		}

		// The scan is refreshed even after failures; partial writes count.
		c.refreshWorkspace()
	}

	finish(nil)
}

// taskPrompt builds the task-scoped prompt carrying plan metadata, the
// original request, and the rolling summary of recent work.
func (c *Core) taskPrompt(p *plan.Plan, task plan.Task, request string, summaries []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Project: %s (stack: %s)\n", p.Name, p.Stack)
	fmt.Fprintf(&sb, "Original request: %s\n", request)
	fmt.Fprintf(&sb, "Working directory: %s\n", c.Root())
	if len(summaries) > 0 {
		sb.WriteString("Recently completed:\n")
		for _, s := range summaries {
			sb.WriteString("  ")
			sb.WriteString(s)
			sb.WriteByte('\n')
		}
	}
	fmt.Fprintf(&sb, "\nYour task (%s): %s", task.Label, task.Description)
	return sb.String()
}

// writtenFiles extracts target paths from successful write and patch calls.
func writtenFiles(calls []ToolCall) []string {
	var files []string
	seen := make(map[string]bool)
	for _, call := range calls {
		if call.Name != "file_write" && call.Name != "file_patch" {
			continue
		}
		if call.Result == nil || !call.Result.Success {
			continue
		}
		path, _ := call.Args["path"].(string)
		if path != "" && !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}
	return files
}

func appendSummary(summaries []string, task plan.Task, outcome TaskOutcome) []string {
	entry := task.Label + ": "
	switch {
	case outcome.Err != nil:
		entry += "failed (" + outcome.Err.Error() + ")"
	case len(outcome.Files) > 0:
		entry += "wrote " + strings.Join(outcome.Files, ", ")
	default:
		entry += "no file changes"
	}
	summaries = append(summaries, entry)
	if len(summaries) > rollingSummaryDepth {
		summaries = summaries[len(summaries)-rollingSummaryDepth:]
	}
	return summaries
}

func executionSummary(report *ExecutionReport) string {
	failed := len(report.Failed())
	total := len(report.Outcomes)
	if failed == 0 {
		return fmt.Sprintf("Build complete: %d/%d tasks succeeded.", total, total)
	}
	return fmt.Sprintf("Build finished with failures: %d/%d tasks succeeded.", total-failed, total)
}
