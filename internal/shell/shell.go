package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gozen/internal/config"
	"gozen/internal/core"
	"gozen/internal/diff"
	"gozen/internal/logging"
)

const helpText = `## Commands

| Command | Effect |
|---|---|
| /build <request> | plan and execute a multi-agent build |
| /debug | investigate and fix the current failure |
| /plan | show the pending build plan |
| /run | execute the pending build plan |
| /agents | list available agents |
| /clear | forget the conversation history |
| /help | this help |
| /exit | leave |

Anything else is sent to the chat agent.
`

// Shell is the interactive read-eval loop over a Core.
type Shell struct {
	cfg      *config.Config
	core     *core.Core
	in       *bufio.Reader
	out      io.Writer
	renderer *Renderer
	reviewer diff.Reviewer
}

// New creates a shell on stdin/stdout.
func New(cfg *config.Config, c *core.Core) *Shell {
	in := bufio.NewReader(os.Stdin)
	renderer := NewRenderer(os.Stdout)
	return &Shell{
		cfg:      cfg,
		core:     c,
		in:       in,
		out:      os.Stdout,
		renderer: renderer,
		reviewer: NewConsoleReviewer(in, os.Stdout, renderer),
	}
}

// Run reads input until EOF or /exit.
func (s *Shell) Run(ctx context.Context, model string) error {
	s.renderer.Banner(model, s.core.Root())

	for {
		fmt.Fprint(s.out, promptStyle.Render("gozen> "))
		line, err := s.in.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if done, err := s.handle(ctx, line); done {
			return err
		}
	}
}

// RunOnce drives a single non-interactive flow, for example a one-shot
// build from the command line, through the same renderer and diff
// review loop the interactive shell uses.
func (s *Shell) RunOnce(ctx context.Context, start func(context.Context, *core.Core, string) <-chan core.Event, request string) error {
	s.consume(start(ctx, s.core, request))
	return nil
}

func (s *Shell) handle(ctx context.Context, line string) (bool, error) {
	cmd, rest, _ := strings.Cut(line, " ")
	switch cmd {
	case "/exit", "/quit":
		return true, nil
	case "/help":
		s.renderer.Markdown(helpText)
	case "/clear":
		s.core.Memory().Clear()
		fmt.Fprintln(s.out, "history cleared")
	case "/agents":
		s.printAgents()
	case "/plan":
		s.printPlan()
	case "/run":
		s.consume(s.core.ExecuteBuild(ctx, rest))
	case "/build":
		if strings.TrimSpace(rest) == "" {
			fmt.Fprintln(s.out, "usage: /build <request>")
			return false, nil
		}
		s.consume(s.core.Build(ctx, rest))
	case "/debug":
		s.consume(s.core.Debug(ctx))
	default:
		s.chatTurn(ctx, line)
	}
	return false, nil
}

func (s *Shell) chatTurn(ctx context.Context, input string) {
	s.consume(s.core.Chat(ctx, input))

	if p := s.core.PendingPlan(); p != nil {
		fmt.Fprint(s.out, "execute this plan now? [y/N]: ")
		answer, err := s.in.ReadString('\n')
		if err != nil {
			return
		}
		if a := strings.ToLower(strings.TrimSpace(answer)); a == "y" || a == "yes" {
			s.consume(s.core.ExecuteBuild(ctx, input))
		}
	}
}

// consume drains one event stream, reviewing staged diffs as they land.
func (s *Shell) consume(events <-chan core.Event) {
	sawDelta := false
	for ev := range events {
		switch ev.Type {
		case core.EventDelta:
			sawDelta = true
			s.renderer.Delta(ev.Delta)
		case core.EventToolCall:
			s.renderer.ToolCall(ev.Call)
		case core.EventToolResult:
			s.renderer.ToolResult(ev.Call)
		case core.EventStatus:
			s.renderer.Status(ev.Status)
		case core.EventDiffReady:
			s.reviewDiffs(ev.Diffs)
		case core.EventDone:
			if sawDelta {
				fmt.Fprintln(s.out)
			}
			s.finish(ev.Completion, ev.Report)
		}
	}
}

func (s *Shell) reviewDiffs(set *diff.Set) {
	if set == nil || set.Empty() {
		return
	}
	fmt.Fprintf(s.out, "\n%d staged change(s) from %s\n", set.Len(), set.Agent)
	outcomes, err := s.core.Applier().ReviewSet(set, s.reviewer)
	if err != nil {
		s.renderer.Error(err)
		return
	}
	applied := 0
	for _, o := range outcomes {
		if o.Err != nil {
			s.renderer.Error(fmt.Errorf("apply %s: %w", o.Diff.Path, o.Err))
			continue
		}
		if o.Decision == diff.Accept || o.Decision == diff.AcceptAll {
			applied++
		}
	}
	fmt.Fprintf(s.out, "applied %d/%d change(s)\n", applied, set.Len())
}

func (s *Shell) finish(completion *core.Completion, report *core.ExecutionReport) {
	if completion == nil {
		return
	}
	if completion.Err != nil {
		s.renderer.Error(completion.Err)
	}
	if report != nil && completion.Text != "" {
		s.renderer.Markdown(completion.Text)
	}
	logging.Debug("turn finished",
		"agent", completion.Agent,
		"tool_calls", len(completion.ToolCalls),
		"input_tokens", completion.InputTokens,
		"output_tokens", completion.OutputTokens,
		"elapsed", completion.Elapsed)
}

func (s *Shell) printAgents() {
	for _, name := range s.core.Agents().Names() {
		p, _ := s.core.Agents().Get(name)
		fmt.Fprintf(s.out, "%s  %s\n", s.renderer.AgentBadge(p), p.Role)
	}
}

func (s *Shell) printPlan() {
	p := s.core.PendingPlan()
	if p == nil {
		fmt.Fprintln(s.out, "no pending plan; describe what to build first")
		return
	}
	s.renderer.Markdown("```\n" + p.String() + "\n```")
}
