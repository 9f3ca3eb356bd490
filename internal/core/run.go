package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gozen/internal/agent"
	"gozen/internal/client"
	"gozen/internal/diff"
	"gozen/internal/logging"
	"gozen/internal/memory"
	"gozen/internal/tools"
)

// runOptions configures one orchestrator run.
type runOptions struct {
	// history is the prior conversation, oldest first.
	history []memory.Message
	// extraContext is appended to the agent's system preamble.
	extraContext string
	// task is a short description tagged onto the diff set.
	task string
	// track stages file mutations instead of applying them.
	track bool
	// tracker, when set with track, is reused instead of creating one.
	tracker *diff.Tracker
}

// run drives one agent through the bounded request/tool/response loop,
// returning an ordered event stream that terminates in exactly one done
// event. The caller pulls events one at a time; every model call and tool
// dispatch blocks the loop.
func (c *Core) run(ctx context.Context, prof *agent.Profile, prompt string, opts runOptions) <-chan Event {
	events := make(chan Event)
	go func() {
		defer close(events)
		c.runLoop(ctx, events, prof, prompt, opts)
	}()
	return events
}

func (c *Core) runLoop(ctx context.Context, events chan<- Event, prof *agent.Profile, prompt string, opts runOptions) {
	start := time.Now()

	emit := func(ev Event) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	var tracker *diff.Tracker
	if opts.track {
		tracker = opts.tracker
		if tracker == nil {
			tracker = diff.NewTracker()
		}
		task := opts.task
		if task == "" {
			task = prompt
		}
		tracker.Start(prof.Name, task)
		ctx = diff.WithTracker(ctx, tracker)
	}

	system := prof.SystemPrompt
	if opts.extraContext != "" {
		system += "\n\n" + opts.extraContext
	}

	messages := make([]memory.Message, 0, len(opts.history)+1)
	messages = append(messages, opts.history...)
	messages = append(messages, memory.Message{Role: memory.RoleUser, Content: prompt})

	registry := c.toolRegistry()
	req := client.Request{
		System:      system,
		Messages:    messages,
		Tools:       registry.Declarations(prof.Tools),
		Temperature: prof.Temperature,
		MaxTokens:   prof.MaxTokens,
	}

	done := Completion{Agent: prof.Name}
	finished := false

	for iter := 0; iter < c.cfg.Model.MaxIterations; iter++ {
		resp, err := c.client.Complete(ctx, req)
		if err != nil {
			// Model communication failures end the run; there is no
			// automatic retry.
			done.Err = err
			break
		}
		done.InputTokens += resp.InputTokens
		done.OutputTokens += resp.OutputTokens

		if !resp.HasToolCalls() {
			// Final turn: re-request the same state in streaming mode so
			// the caller sees the answer arrive incrementally.
			text, err := c.streamFinal(ctx, req, emit)
			done.Text = text
			done.Err = err
			finished = true
			break
		}

		// Record the call list before executing, then feed each result
		// back in the order the model issued the calls.
		req.Messages = append(req.Messages, memory.Message{
			Role:    memory.RoleAssistant,
			Content: describeCalls(resp.ToolCalls),
		})
		for _, call := range resp.ToolCalls {
			tc := &ToolCall{ID: call.ID, Name: call.Name, Args: call.Args}
			if !emit(Event{Type: EventToolCall, Call: tc}) {
				done.Err = ctx.Err()
				finished = true
				break
			}

			callStart := time.Now()
			res := c.dispatch(ctx, prof, call)
			tc.Result = &res
			tc.Elapsed = time.Since(callStart)
			done.ToolCalls = append(done.ToolCalls, *tc)

			if !emit(Event{Type: EventToolResult, Call: tc}) {
				done.Err = ctx.Err()
				finished = true
				break
			}
			req.Messages = append(req.Messages, memory.Message{
				Role:    memory.RoleTool,
				Content: fmt.Sprintf("TOOL RESULT (%s): %s", call.Name, res.APIString(c.cfg.Tools.MaxOutputChars)),
			})
		}
		if finished {
			break
		}
	}

	if !finished && done.Err == nil {
		done.Err = ErrIterationLimit
	}

	if tracker != nil {
		set := tracker.Stop()
		if !set.Empty() {
			emit(Event{Type: EventDiffReady, Diffs: set})
		}
	}

	done.Elapsed = time.Since(start)
	if done.Err != nil {
		logging.Warn("agent run failed", "agent", prof.Name, "error", done.Err)
	} else {
		logging.Info("agent run complete",
			"agent", prof.Name,
			"tool_calls", len(done.ToolCalls),
			"elapsed", done.Elapsed.String())
	}
	emit(Event{Type: EventDone, Completion: &done})
}

// streamFinal replays the request in streaming mode, emitting a delta per
// chunk, and returns the concatenated answer.
func (c *Core) streamFinal(ctx context.Context, req client.Request, emit func(Event) bool) (string, error) {
	stream, err := c.client.Stream(ctx, req)
	if err != nil {
		return "", err
	}
	var text strings.Builder
	for chunk := range stream.Chunks {
		if chunk.Err != nil {
			return text.String(), chunk.Err
		}
		if chunk.Text == "" {
			continue
		}
		text.WriteString(chunk.Text)
		if !emit(Event{Type: EventDelta, Delta: chunk.Text}) {
			return text.String(), ctx.Err()
		}
	}
	return text.String(), nil
}

// dispatch runs one tool call, mapping profile violations and tool
// failures to failed results the model can react to.
func (c *Core) dispatch(ctx context.Context, prof *agent.Profile, call client.ToolCall) tools.Result {
	if !prof.AllowsTool(call.Name) {
		return tools.Fail("tool %s is not available to the %s agent", call.Name, prof.Name)
	}
	return c.toolRegistry().Dispatch(ctx, call.Name, call.Args)
}

func describeCalls(calls []client.ToolCall) string {
	names := make([]string, len(calls))
	for i, call := range calls {
		names[i] = call.Name
	}
	return "Calling tools: " + strings.Join(names, ", ")
}
