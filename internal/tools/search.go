package tools

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"google.golang.org/genai"

	"gozen/internal/security"
)

// skipDirs are directory names never descended into during searches.
var skipDirs = map[string]bool{
	".git": true, "node_modules": true, "__pycache__": true,
	".venv": true, "venv": true, "dist": true, "build": true,
	"target": true, ".idea": true, ".vscode": true,
}

// FindFilesTool matches workspace files against a glob pattern.
type FindFilesTool struct {
	guard *security.Guard
}

func NewFindFilesTool(guard *security.Guard) *FindFilesTool {
	return &FindFilesTool{guard: guard}
}

func (t *FindFilesTool) Name() string { return "find_files" }

func (t *FindFilesTool) Description() string {
	return "Find files matching a glob pattern, e.g. **/*.go"
}

func (t *FindFilesTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"pattern": {Type: genai.TypeString, Description: "Glob pattern with ** support"},
				"limit":   {Type: genai.TypeInteger, Description: "Maximum number of results, default 200"},
			},
			Required: []string{"pattern"},
		},
	}
}

func (t *FindFilesTool) Validate(args map[string]any) error {
	pattern, ok := GetString(args, "pattern")
	if !ok || pattern == "" {
		return ValidationError{Field: "pattern", Message: "required string argument missing"}
	}
	if !doublestar.ValidatePattern(pattern) {
		return ValidationError{Field: "pattern", Message: "malformed glob pattern"}
	}
	return nil
}

func (t *FindFilesTool) Execute(ctx context.Context, args map[string]any) Result {
	pattern, _ := GetString(args, "pattern")
	limit := GetIntDefault(args, "limit", 200)

	var matches []string
	root := os.DirFS(t.guard.Root())
	err := fs.WalkDir(root, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}
		if ok, _ := doublestar.Match(pattern, path); ok {
			matches = append(matches, path)
			if len(matches) >= limit {
				return fs.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		return Fail("walking workspace: %v", err)
	}
	if len(matches) == 0 {
		return Ok("No files match " + pattern)
	}
	return OkWithMeta(strings.Join(matches, "\n"), map[string]any{"matches": len(matches)})
}

// GrepFilesTool searches file contents for a regular expression.
type GrepFilesTool struct {
	guard *security.Guard
}

func NewGrepFilesTool(guard *security.Guard) *GrepFilesTool {
	return &GrepFilesTool{guard: guard}
}

func (t *GrepFilesTool) Name() string { return "grep_files" }

func (t *GrepFilesTool) Description() string {
	return "Search file contents with a regular expression"
}

func (t *GrepFilesTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"pattern": {Type: genai.TypeString, Description: "Go regular expression"},
				"glob":    {Type: genai.TypeString, Description: "Restrict to files matching this glob"},
				"limit":   {Type: genai.TypeInteger, Description: "Maximum matching lines, default 100"},
			},
			Required: []string{"pattern"},
		},
	}
}

func (t *GrepFilesTool) Validate(args map[string]any) error {
	pattern, ok := GetString(args, "pattern")
	if !ok || pattern == "" {
		return ValidationError{Field: "pattern", Message: "required string argument missing"}
	}
	if _, err := regexp.Compile(pattern); err != nil {
		return ValidationError{Field: "pattern", Message: err.Error()}
	}
	return nil
}

func (t *GrepFilesTool) Execute(ctx context.Context, args map[string]any) Result {
	pattern, _ := GetString(args, "pattern")
	glob := GetStringDefault(args, "glob", "")
	limit := GetIntDefault(args, "limit", 100)

	re, err := regexp.Compile(pattern)
	if err != nil {
		return Fail("compiling pattern: %v", err)
	}

	var sb strings.Builder
	found := 0
	root := os.DirFS(t.guard.Root())
	walkErr := fs.WalkDir(root, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}
		if glob != "" {
			if ok, _ := doublestar.Match(glob, path); !ok {
				return nil
			}
		}
		f, err := os.Open(filepath.Join(t.guard.Root(), path))
		if err != nil {
			return nil
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := scanner.Text()
			if !re.MatchString(line) {
				continue
			}
			fmt.Fprintf(&sb, "%s:%d: %s\n", path, lineNo, line)
			found++
			if found >= limit {
				return fs.SkipAll
			}
		}
		return nil
	})
	if walkErr != nil {
		return Fail("walking workspace: %v", walkErr)
	}
	if found == 0 {
		return Ok("No matches for " + pattern)
	}
	return OkWithMeta(sb.String(), map[string]any{"matches": found})
}
