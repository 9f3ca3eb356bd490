package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/genai"

	"gozen/internal/diff"
	"gozen/internal/fileutil"
	"gozen/internal/security"
)

// readExisting returns the file's content, or "" when it does not exist.
func readExisting(abs string) (string, bool, error) {
	data, err := os.ReadFile(abs)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// FileReadTool reads a file from the workspace.
type FileReadTool struct {
	guard *security.Guard
}

func NewFileReadTool(guard *security.Guard) *FileReadTool {
	return &FileReadTool{guard: guard}
}

func (t *FileReadTool) Name() string { return "file_read" }

func (t *FileReadTool) Description() string {
	return "Read the content of a file in the workspace"
}

func (t *FileReadTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"path": {Type: genai.TypeString, Description: "Path relative to the workspace root"},
			},
			Required: []string{"path"},
		},
	}
}

func (t *FileReadTool) Validate(args map[string]any) error {
	return requireString(args, "path")
}

func (t *FileReadTool) Execute(ctx context.Context, args map[string]any) Result {
	path, _ := GetString(args, "path")
	abs, err := t.guard.Resolve(path)
	if err != nil {
		return Fail("%v", err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return Fail("reading %s: %v", path, err)
	}
	return OkWithMeta(string(data), map[string]any{"path": path, "bytes": len(data)})
}

// FileWriteTool writes or appends a file. While a diff tracker is active
// the write is staged instead of applied.
type FileWriteTool struct {
	guard *security.Guard
}

func NewFileWriteTool(guard *security.Guard) *FileWriteTool {
	return &FileWriteTool{guard: guard}
}

func (t *FileWriteTool) Name() string { return "file_write" }

func (t *FileWriteTool) Description() string {
	return "Write complete content to a file, creating it if needed"
}

func (t *FileWriteTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"path":    {Type: genai.TypeString, Description: "Path relative to the workspace root"},
				"content": {Type: genai.TypeString, Description: "Complete file content"},
				"append":  {Type: genai.TypeBoolean, Description: "Append to the existing content instead of replacing it"},
			},
			Required: []string{"path", "content"},
		},
	}
}

func (t *FileWriteTool) Validate(args map[string]any) error {
	if err := requireString(args, "path"); err != nil {
		return err
	}
	if _, ok := GetString(args, "content"); !ok {
		return ValidationError{Field: "content", Message: "required string argument missing"}
	}
	return nil
}

func (t *FileWriteTool) Execute(ctx context.Context, args map[string]any) Result {
	path, _ := GetString(args, "path")
	content, _ := GetString(args, "content")
	appendMode := GetBoolDefault(args, "append", false)

	abs, err := t.guard.Resolve(path)
	if err != nil {
		return Fail("%v", err)
	}
	old, existed, err := readExisting(abs)
	if err != nil {
		return Fail("reading %s: %v", path, err)
	}
	if appendMode {
		content = old + content
	}

	rel := t.guard.Rel(abs)
	if tr := diff.FromContext(ctx); tr != nil {
		d := diff.NewFileDiff(rel, old, content)
		tr.Record(d)
		added, removed := d.Delta()
		return OkWithMeta(fmt.Sprintf("Staged write to %s (+%d/-%d lines, pending review)", rel, added, removed),
			map[string]any{"staged": true, "path": rel})
	}

	if err := fileutil.AtomicWrite(abs, []byte(content), 0644); err != nil {
		return Fail("writing %s: %v", path, err)
	}
	verb := "Wrote"
	if !existed {
		verb = "Created"
	}
	return OkWithMeta(fmt.Sprintf("%s %s (%d bytes)", verb, rel, len(content)),
		map[string]any{"path": rel, "bytes": len(content)})
}

// FilePatchTool replaces an exact text fragment inside a file. Staged while
// a diff tracker is active.
type FilePatchTool struct {
	guard *security.Guard
}

func NewFilePatchTool(guard *security.Guard) *FilePatchTool {
	return &FilePatchTool{guard: guard}
}

func (t *FilePatchTool) Name() string { return "file_patch" }

func (t *FilePatchTool) Description() string {
	return "Replace an exact text fragment in a file with new text"
}

func (t *FilePatchTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"path":     {Type: genai.TypeString, Description: "Path relative to the workspace root"},
				"old_text": {Type: genai.TypeString, Description: "Exact text to find, including whitespace"},
				"new_text": {Type: genai.TypeString, Description: "Replacement text"},
			},
			Required: []string{"path", "old_text", "new_text"},
		},
	}
}

func (t *FilePatchTool) Validate(args map[string]any) error {
	if err := requireString(args, "path"); err != nil {
		return err
	}
	if err := requireString(args, "old_text"); err != nil {
		return err
	}
	if _, ok := GetString(args, "new_text"); !ok {
		return ValidationError{Field: "new_text", Message: "required string argument missing"}
	}
	return nil
}

func (t *FilePatchTool) Execute(ctx context.Context, args map[string]any) Result {
	path, _ := GetString(args, "path")
	oldText, _ := GetString(args, "old_text")
	newText, _ := GetString(args, "new_text")

	abs, err := t.guard.Resolve(path)
	if err != nil {
		return Fail("%v", err)
	}
	content, existed, err := readExisting(abs)
	if err != nil {
		return Fail("reading %s: %v", path, err)
	}
	if !existed {
		return Fail("file not found: %s", path)
	}
	if !strings.Contains(content, oldText) {
		return Fail("old_text not found in %s; read the file and retry with the exact fragment", path)
	}
	patched := strings.Replace(content, oldText, newText, 1)

	rel := t.guard.Rel(abs)
	if tr := diff.FromContext(ctx); tr != nil {
		tr.Record(diff.NewFileDiff(rel, content, patched))
		return OkWithMeta("Staged patch to "+rel+" (pending review)",
			map[string]any{"staged": true, "path": rel})
	}

	if err := fileutil.AtomicWrite(abs, []byte(patched), 0644); err != nil {
		return Fail("writing %s: %v", path, err)
	}
	return OkWithMeta("Patched "+rel, map[string]any{"path": rel})
}

// FileDeleteTool removes a file. Staged while a diff tracker is active.
type FileDeleteTool struct {
	guard *security.Guard
}

func NewFileDeleteTool(guard *security.Guard) *FileDeleteTool {
	return &FileDeleteTool{guard: guard}
}

func (t *FileDeleteTool) Name() string { return "file_delete" }

func (t *FileDeleteTool) Description() string {
	return "Delete a file from the workspace"
}

func (t *FileDeleteTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"path": {Type: genai.TypeString, Description: "Path relative to the workspace root"},
			},
			Required: []string{"path"},
		},
	}
}

func (t *FileDeleteTool) Validate(args map[string]any) error {
	return requireString(args, "path")
}

func (t *FileDeleteTool) Execute(ctx context.Context, args map[string]any) Result {
	path, _ := GetString(args, "path")
	abs, err := t.guard.Resolve(path)
	if err != nil {
		return Fail("%v", err)
	}
	old, existed, err := readExisting(abs)
	if err != nil {
		return Fail("reading %s: %v", path, err)
	}

	rel := t.guard.Rel(abs)
	if tr := diff.FromContext(ctx); tr != nil {
		tr.Record(diff.NewDeleteDiff(rel, old))
		return OkWithMeta("Staged deletion of "+rel+" (pending review)",
			map[string]any{"staged": true, "path": rel})
	}

	if !existed {
		return Ok("Already absent: " + rel)
	}
	if err := os.Remove(abs); err != nil {
		return Fail("deleting %s: %v", path, err)
	}
	return Ok("Deleted " + rel)
}

// FileRenameTool moves a file within the workspace.
type FileRenameTool struct {
	guard *security.Guard
}

func NewFileRenameTool(guard *security.Guard) *FileRenameTool {
	return &FileRenameTool{guard: guard}
}

func (t *FileRenameTool) Name() string { return "file_rename" }

func (t *FileRenameTool) Description() string {
	return "Rename or move a file within the workspace"
}

func (t *FileRenameTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"source":      {Type: genai.TypeString, Description: "Existing path"},
				"destination": {Type: genai.TypeString, Description: "New path"},
			},
			Required: []string{"source", "destination"},
		},
	}
}

func (t *FileRenameTool) Validate(args map[string]any) error {
	if err := requireString(args, "source"); err != nil {
		return err
	}
	return requireString(args, "destination")
}

func (t *FileRenameTool) Execute(ctx context.Context, args map[string]any) Result {
	src, _ := GetString(args, "source")
	dst, _ := GetString(args, "destination")

	absSrc, err := t.guard.Resolve(src)
	if err != nil {
		return Fail("%v", err)
	}
	absDst, err := t.guard.Resolve(dst)
	if err != nil {
		return Fail("%v", err)
	}
	if err := os.MkdirAll(filepath.Dir(absDst), 0755); err != nil {
		return Fail("preparing %s: %v", dst, err)
	}
	if err := os.Rename(absSrc, absDst); err != nil {
		return Fail("renaming %s: %v", src, err)
	}
	return Ok(fmt.Sprintf("Renamed %s to %s", t.guard.Rel(absSrc), t.guard.Rel(absDst)))
}

// FileCopyTool copies a file within the workspace.
type FileCopyTool struct {
	guard *security.Guard
}

func NewFileCopyTool(guard *security.Guard) *FileCopyTool {
	return &FileCopyTool{guard: guard}
}

func (t *FileCopyTool) Name() string { return "file_copy" }

func (t *FileCopyTool) Description() string {
	return "Copy a file within the workspace"
}

func (t *FileCopyTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"source":      {Type: genai.TypeString, Description: "Existing path"},
				"destination": {Type: genai.TypeString, Description: "Copy target path"},
			},
			Required: []string{"source", "destination"},
		},
	}
}

func (t *FileCopyTool) Validate(args map[string]any) error {
	if err := requireString(args, "source"); err != nil {
		return err
	}
	return requireString(args, "destination")
}

func (t *FileCopyTool) Execute(ctx context.Context, args map[string]any) Result {
	src, _ := GetString(args, "source")
	dst, _ := GetString(args, "destination")

	absSrc, err := t.guard.Resolve(src)
	if err != nil {
		return Fail("%v", err)
	}
	absDst, err := t.guard.Resolve(dst)
	if err != nil {
		return Fail("%v", err)
	}

	in, err := os.Open(absSrc)
	if err != nil {
		return Fail("opening %s: %v", src, err)
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return Fail("reading %s: %v", src, err)
	}
	if err := fileutil.AtomicWrite(absDst, data, 0644); err != nil {
		return Fail("writing %s: %v", dst, err)
	}
	return Ok(fmt.Sprintf("Copied %s to %s (%d bytes)", t.guard.Rel(absSrc), t.guard.Rel(absDst), len(data)))
}
