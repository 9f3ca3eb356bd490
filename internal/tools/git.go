package tools

import (
	"context"
	"strings"
	"time"

	"google.golang.org/genai"

	"gozen/internal/security"
)

// GitCommandTool runs git subcommands in the workspace.
type GitCommandTool struct {
	guard   *security.Guard
	timeout time.Duration
}

func NewGitCommandTool(guard *security.Guard, timeout time.Duration) *GitCommandTool {
	return &GitCommandTool{guard: guard, timeout: timeout}
}

func (t *GitCommandTool) Name() string { return "git_command" }

func (t *GitCommandTool) Description() string {
	return "Run a git command in the workspace, e.g. status, diff, commit"
}

func (t *GitCommandTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"args": {Type: genai.TypeString, Description: "Arguments after 'git', e.g. 'status --short'"},
			},
			Required: []string{"args"},
		},
	}
}

func (t *GitCommandTool) Validate(args map[string]any) error {
	return requireString(args, "args")
}

func (t *GitCommandTool) Execute(ctx context.Context, args map[string]any) Result {
	gitArgs, _ := GetString(args, "args")
	argv := strings.Fields(gitArgs)
	if len(argv) == 0 {
		return Fail("empty git arguments")
	}

	output, exitCode, err := runCommand(ctx, t.guard, t.timeout, "git", argv...)
	if err != nil {
		return Fail("%v\n%s", err, output)
	}
	return commandResult(output, exitCode)
}
