package core

import (
	"context"

	"gozen/internal/memory"
	"gozen/internal/plan"
)

// Chat runs one conversational turn through the chat agent. The final
// answer is committed to memory, and any build plan found in it becomes
// the pending plan, announced with a status event before completion.
func (c *Core) Chat(ctx context.Context, input string) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)

		prof, _ := c.agents.Get("chat")
		history := c.mem.Messages()
		c.mem.Add(memory.RoleUser, input)

		inner := c.run(ctx, prof, input, runOptions{
			history:      history,
			extraContext: c.workspaceContext(),
		})
		for ev := range inner {
			if ev.Type != EventDone {
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
				continue
			}

			done := ev.Completion
			if done.Err == nil && done.Text != "" {
				c.mem.Add(memory.RoleAssistant, done.Text)
				if p := plan.Parse(done.Text, c.agents); p != nil {
					c.setPendingPlan(p)
					select {
					case out <- Event{Type: EventStatus, Status: "build plan ready: " + p.Name}:
					case <-ctx.Done():
						return
					}
				}
			}
			select {
			case out <- ev:
			case <-ctx.Done():
			}
			return
		}
	}()
	return out
}

// Build asks the chat agent for a plan covering the request, then executes
// it immediately. The stream ends with the execution's done event; the
// planning turn's completion is absorbed.
func (c *Core) Build(ctx context.Context, request string) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)

		for ev := range c.Chat(ctx, "Create a BUILD PLAN for this request, then stop: "+request) {
			if ev.Type == EventDone {
				if ev.Completion.Err != nil {
					select {
					case out <- ev:
					case <-ctx.Done():
					}
					return
				}
				break
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}

		for ev := range c.ExecuteBuild(ctx, request) {
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Debug runs the autonomous debug agent against the current workspace.
// Changes are staged unless auto-accept is configured.
func (c *Core) Debug(ctx context.Context) <-chan Event {
	prof, _ := c.agents.Get("debug")
	return c.run(ctx, prof, "Run the project, diagnose every failure, and fix them until it works.", runOptions{
		extraContext: c.workspaceContext(),
		task:         "autonomous debug",
		track:        !c.cfg.Diff.AutoAccept,
	})
}
