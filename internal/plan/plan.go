// Package plan parses build plans out of model output.
//
// A plan is recognized by its header line and extracted with line-based
// matching; anything that does not parse to at least one task is treated
// as ordinary prose.
package plan

import (
	"fmt"
	"regexp"
	"strings"
)

// Task is one unit of work assigned to a named agent.
type Task struct {
	Agent       string
	Label       string
	Description string
}

// Plan is an ordered list of tasks with project metadata.
type Plan struct {
	Name      string
	TargetDir string
	Stack     string
	Tasks     []Task
}

// AgentChecker reports whether an agent name is known. Satisfied by
// agent.Registry.
type AgentChecker interface {
	Has(name string) bool
}

const header = "BUILD PLAN:"

var (
	// Value matching stays on the label's own line: [ \t] instead of \s,
	// which would cross the newline and capture the following line when
	// the value is empty.
	targetRe = regexp.MustCompile(`(?im)^\s*TARGET DIR:[ \t]*(.+)$`)
	stackRe  = regexp.MustCompile(`(?im)^\s*STACK:[ \t]*(.+)$`)
	nameRe   = regexp.MustCompile(`(?im)^\s*BUILD PLAN:[ \t]*(.+)$`)
	taskRe   = regexp.MustCompile(`(?im)^\s*\[(\w+)\]\s+([A-Z]\d+):\s*(.+)$`)
)

// headerValue returns the trimmed value of the first matching labeled
// line, or "" when the line is absent or carries no value.
func headerValue(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Parse extracts a build plan from raw model text. It returns nil when the
// text carries no plan: no header, or no task line naming a known agent.
func Parse(text string, agents AgentChecker) *Plan {
	if !strings.Contains(text, header) {
		return nil
	}

	p := &Plan{
		Name:      "project",
		TargetDir: ".",
		Stack:     "unspecified",
	}
	if v := headerValue(nameRe, text); v != "" {
		p.Name = v
	}
	if v := headerValue(targetRe, text); v != "" {
		p.TargetDir = v
	}
	if v := headerValue(stackRe, text); v != "" {
		p.Stack = v
	}

	for _, m := range taskRe.FindAllStringSubmatch(text, -1) {
		name := strings.ToLower(m[1])
		if !agents.Has(name) {
			// Unknown agent names are dropped, not errors.
			continue
		}
		p.Tasks = append(p.Tasks, Task{
			Agent:       name,
			Label:       strings.ToUpper(m[2]),
			Description: strings.TrimSpace(m[3]),
		})
	}
	if len(p.Tasks) == 0 {
		return nil
	}
	return p
}

// Fallback returns the default three-task plan used when a build was
// requested but no plan could be parsed.
func Fallback(request string) *Plan {
	return &Plan{
		Name:      "project",
		TargetDir: ".",
		Stack:     "unspecified",
		Tasks: []Task{
			{Agent: "architect", Label: "A1", Description: "Scaffold the project structure for: " + request},
			{Agent: "coder", Label: "C1", Description: "Implement the request end to end: " + request},
			{Agent: "debug", Label: "D1", Description: "Run the project and fix all errors until it works"},
		},
	}
}

// String renders the plan for display.
func (p *Plan) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "BUILD PLAN: %s\nTARGET DIR: %s\nSTACK: %s\n", p.Name, p.TargetDir, p.Stack)
	for _, t := range p.Tasks {
		fmt.Fprintf(&sb, "[%s] %s: %s\n", t.Agent, t.Label, t.Description)
	}
	return sb.String()
}
