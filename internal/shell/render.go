// Package shell implements the interactive terminal frontend.
package shell

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"gozen/internal/agent"
	"gozen/internal/core"
	"gozen/internal/diff"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ff9f")).
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00f5ff")).
			Bold(true)

	toolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6b7280"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff4444"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f59e0b"))

	addStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	delStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	ctxStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
)

// Renderer formats events and markdown for the terminal.
type Renderer struct {
	out      io.Writer
	markdown *glamour.TermRenderer
}

// NewRenderer creates a renderer writing to out. Markdown rendering
// degrades to plain text when the terminal renderer cannot be built.
func NewRenderer(out io.Writer) *Renderer {
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		md = nil
	}
	return &Renderer{out: out, markdown: md}
}

// Banner prints the startup header.
func (r *Renderer) Banner(model, root string) {
	fmt.Fprintln(r.out, bannerStyle.Render("gozen"))
	fmt.Fprintf(r.out, "model: %s\nworkspace: %s\n", model, root)
	fmt.Fprintln(r.out, "type /help for commands")
	fmt.Fprintln(r.out)
}

// AgentBadge renders the agent's icon and name in its profile color.
func (r *Renderer) AgentBadge(p *agent.Profile) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color)).Bold(true)
	return style.Render(p.Icon + " " + p.Name)
}

// Delta prints a streaming text fragment.
func (r *Renderer) Delta(text string) {
	fmt.Fprint(r.out, text)
}

// ToolCall prints a tool invocation line.
func (r *Renderer) ToolCall(call *core.ToolCall) {
	fmt.Fprintln(r.out, toolStyle.Render("  → "+call.Name+formatArgs(call.Args)))
}

// ToolResult prints the outcome of a finished call.
func (r *Renderer) ToolResult(call *core.ToolCall) {
	if call.Result == nil {
		return
	}
	if call.Result.Success {
		fmt.Fprintln(r.out, toolStyle.Render(fmt.Sprintf("  ✓ %s (%s)", call.Name, call.Elapsed.Round(1e6))))
		return
	}
	fmt.Fprintln(r.out, errorStyle.Render("  ✗ "+call.Name+": "+call.Result.Error))
}

// Status prints a plan-level status line.
func (r *Renderer) Status(status string) {
	fmt.Fprintln(r.out, statusStyle.Render("• "+status))
}

// Error prints an error line.
func (r *Renderer) Error(err error) {
	fmt.Fprintln(r.out, errorStyle.Render("error: "+err.Error()))
}

// Markdown renders markdown text, falling back to the raw string.
func (r *Renderer) Markdown(text string) {
	if r.markdown != nil {
		if rendered, err := r.markdown.Render(text); err == nil {
			fmt.Fprint(r.out, rendered)
			return
		}
	}
	fmt.Fprintln(r.out, text)
}

// Diff prints a colored unified preview of one staged change.
func (r *Renderer) Diff(d diff.FileDiff, index, total int) {
	added, removed := d.Delta()
	fmt.Fprintf(r.out, "\n[%d/%d] %s (+%d/-%d lines, approximate)\n",
		index, total, d.Summary(), added, removed)

	for _, line := range strings.Split(strings.TrimSuffix(d.Unified(), "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+ "):
			fmt.Fprintln(r.out, addStyle.Render(line))
		case strings.HasPrefix(line, "- "):
			fmt.Fprintln(r.out, delStyle.Render(line))
		default:
			fmt.Fprintln(r.out, ctxStyle.Render(line))
		}
	}
}

func formatArgs(args map[string]any) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, 0, len(args))
	for k, v := range args {
		s := fmt.Sprintf("%v", v)
		if len(s) > 40 {
			s = s[:40] + "…"
		}
		parts = append(parts, k+"="+s)
	}
	return "(" + strings.Join(parts, " ") + ")"
}
