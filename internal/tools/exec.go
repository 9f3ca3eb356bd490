package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"google.golang.org/genai"

	"gozen/internal/logging"
	"gozen/internal/security"
)

// runCommand executes argv in the workspace root with a timeout, returning
// combined output and the exit code.
func runCommand(ctx context.Context, guard *security.Guard, timeout time.Duration, name string, argv ...string) (string, int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, argv...)
	cmd.Dir = guard.Root()

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return buf.String(), -1, fmt.Errorf("command timed out after %s", timeout)
	}
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
			err = nil
		}
	}
	return buf.String(), exitCode, err
}

func commandResult(output string, exitCode int) Result {
	if output == "" {
		output = "(no output)"
	}
	if exitCode != 0 {
		return Result{
			Error:    fmt.Sprintf("exit code %d\n%s", exitCode, output),
			Metadata: map[string]any{"exit_code": exitCode},
		}
	}
	return OkWithMeta(output, map[string]any{"exit_code": 0})
}

// RunShellTool runs an arbitrary shell command in the workspace.
type RunShellTool struct {
	guard   *security.Guard
	timeout time.Duration
}

func NewRunShellTool(guard *security.Guard, timeout time.Duration) *RunShellTool {
	return &RunShellTool{guard: guard, timeout: timeout}
}

func (t *RunShellTool) Name() string { return "run_shell" }

func (t *RunShellTool) Description() string {
	return "Run a shell command in the workspace root"
}

func (t *RunShellTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"command": {Type: genai.TypeString, Description: "Shell command line"},
			},
			Required: []string{"command"},
		},
	}
}

func (t *RunShellTool) Validate(args map[string]any) error {
	return requireString(args, "command")
}

func (t *RunShellTool) Execute(ctx context.Context, args map[string]any) Result {
	command, _ := GetString(args, "command")
	logging.Debug("running shell command", "command", command)

	output, exitCode, err := runCommand(ctx, t.guard, t.timeout, "sh", "-c", command)
	if err != nil {
		return Fail("%v\n%s", err, output)
	}
	return commandResult(output, exitCode)
}

// RunTestsTool runs the project's test suite, detecting the runner from
// manifest files when none is given.
type RunTestsTool struct {
	guard   *security.Guard
	timeout time.Duration
}

func NewRunTestsTool(guard *security.Guard, timeout time.Duration) *RunTestsTool {
	return &RunTestsTool{guard: guard, timeout: timeout}
}

func (t *RunTestsTool) Name() string { return "run_tests" }

func (t *RunTestsTool) Description() string {
	return "Run the project's test suite"
}

func (t *RunTestsTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"command": {Type: genai.TypeString, Description: "Override the detected test command"},
			},
		},
	}
}

func (t *RunTestsTool) Validate(args map[string]any) error {
	return nil
}

func (t *RunTestsTool) Execute(ctx context.Context, args map[string]any) Result {
	command := GetStringDefault(args, "command", "")
	if command == "" {
		command = t.detect()
	}
	if command == "" {
		return Fail("no test runner detected; pass an explicit command")
	}

	output, exitCode, err := runCommand(ctx, t.guard, t.timeout, "sh", "-c", command)
	if err != nil {
		return Fail("%v\n%s", err, output)
	}
	res := commandResult(output, exitCode)
	if res.Metadata == nil {
		res.Metadata = map[string]any{}
	}
	res.Metadata["command"] = command
	return res
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (t *RunTestsTool) detect() string {
	checks := []struct {
		manifest string
		command  string
	}{
		{"go.mod", "go test ./..."},
		{"package.json", "npm test"},
		{"Cargo.toml", "cargo test"},
		{"pytest.ini", "pytest"},
		{"pyproject.toml", "pytest"},
		{"requirements.txt", "pytest"},
	}
	for _, c := range checks {
		if abs, err := t.guard.Resolve(c.manifest); err == nil {
			if exists(abs) {
				return c.command
			}
		}
	}
	return ""
}

// InstallPackagesTool installs dependencies with the named package manager.
type InstallPackagesTool struct {
	guard   *security.Guard
	timeout time.Duration
}

func NewInstallPackagesTool(guard *security.Guard, timeout time.Duration) *InstallPackagesTool {
	return &InstallPackagesTool{guard: guard, timeout: timeout}
}

func (t *InstallPackagesTool) Name() string { return "install_packages" }

func (t *InstallPackagesTool) Description() string {
	return "Install packages with pip, npm, cargo, or go"
}

var installCommands = map[string][]string{
	"pip":   {"pip", "install"},
	"npm":   {"npm", "install"},
	"cargo": {"cargo", "add"},
	"go":    {"go", "get"},
}

func (t *InstallPackagesTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"packages": {
					Type:        genai.TypeArray,
					Description: "Package names to install",
					Items:       &genai.Schema{Type: genai.TypeString},
				},
				"manager": {Type: genai.TypeString, Description: "One of pip, npm, cargo, go"},
			},
			Required: []string{"packages", "manager"},
		},
	}
}

func (t *InstallPackagesTool) Validate(args map[string]any) error {
	manager, ok := GetString(args, "manager")
	if !ok {
		return ValidationError{Field: "manager", Message: "required string argument missing"}
	}
	if _, known := installCommands[manager]; !known {
		return ValidationError{Field: "manager", Message: "unknown package manager " + manager}
	}
	if len(packagesArg(args)) == 0 {
		return ValidationError{Field: "packages", Message: "at least one package required"}
	}
	return nil
}

func packagesArg(args map[string]any) []string {
	raw, ok := args["packages"].([]any)
	if !ok {
		return nil
	}
	pkgs := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			pkgs = append(pkgs, s)
		}
	}
	return pkgs
}

func (t *InstallPackagesTool) Execute(ctx context.Context, args map[string]any) Result {
	manager, _ := GetString(args, "manager")
	pkgs := packagesArg(args)

	argv := append([]string{}, installCommands[manager]...)
	argv = append(argv, pkgs...)
	logging.Info("installing packages", "manager", manager, "packages", strings.Join(pkgs, ","))

	output, exitCode, err := runCommand(ctx, t.guard, t.timeout, argv[0], argv[1:]...)
	if err != nil {
		return Fail("%v\n%s", err, output)
	}
	return commandResult(output, exitCode)
}
