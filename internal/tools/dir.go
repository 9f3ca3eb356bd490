package tools

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"google.golang.org/genai"

	"gozen/internal/security"
)

// ListDirectoryTool lists the entries of a workspace directory.
type ListDirectoryTool struct {
	guard *security.Guard
}

func NewListDirectoryTool(guard *security.Guard) *ListDirectoryTool {
	return &ListDirectoryTool{guard: guard}
}

func (t *ListDirectoryTool) Name() string { return "list_directory" }

func (t *ListDirectoryTool) Description() string {
	return "List files and directories at a workspace path"
}

func (t *ListDirectoryTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"path": {Type: genai.TypeString, Description: "Directory path, defaults to the workspace root"},
			},
		},
	}
}

func (t *ListDirectoryTool) Validate(args map[string]any) error {
	return nil
}

func (t *ListDirectoryTool) Execute(ctx context.Context, args map[string]any) Result {
	path := GetStringDefault(args, "path", ".")
	abs, err := t.guard.Resolve(path)
	if err != nil {
		return Fail("%v", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return Fail("listing %s: %v", path, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return entries[i].Name() < entries[j].Name()
	})

	var sb strings.Builder
	for _, e := range entries {
		if e.IsDir() {
			sb.WriteString(e.Name())
			sb.WriteString("/\n")
			continue
		}
		info, err := e.Info()
		if err != nil {
			fmt.Fprintf(&sb, "%s\n", e.Name())
			continue
		}
		fmt.Fprintf(&sb, "%s (%d bytes)\n", e.Name(), info.Size())
	}
	if sb.Len() == 0 {
		return Ok("(empty directory)")
	}
	return OkWithMeta(sb.String(), map[string]any{"entries": len(entries)})
}

// CreateDirectoryTool creates a directory tree.
type CreateDirectoryTool struct {
	guard *security.Guard
}

func NewCreateDirectoryTool(guard *security.Guard) *CreateDirectoryTool {
	return &CreateDirectoryTool{guard: guard}
}

func (t *CreateDirectoryTool) Name() string { return "create_directory" }

func (t *CreateDirectoryTool) Description() string {
	return "Create a directory, including missing parents"
}

func (t *CreateDirectoryTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"path": {Type: genai.TypeString, Description: "Directory path relative to the workspace root"},
			},
			Required: []string{"path"},
		},
	}
}

func (t *CreateDirectoryTool) Validate(args map[string]any) error {
	return requireString(args, "path")
}

func (t *CreateDirectoryTool) Execute(ctx context.Context, args map[string]any) Result {
	path, _ := GetString(args, "path")
	abs, err := t.guard.Resolve(path)
	if err != nil {
		return Fail("%v", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return Fail("creating %s: %v", path, err)
	}
	return Ok("Created directory " + t.guard.Rel(abs))
}
