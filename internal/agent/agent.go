// Package agent defines agent profiles and the read-only profile registry.
package agent

import (
	"fmt"
	"sort"
	"strings"
)

// Profile is an immutable agent definition: identity, instruction preamble,
// generation budget, and the subset of registered tools it may invoke.
type Profile struct {
	Name         string
	Role         string
	Icon         string
	Color        string
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
	Tools        []string
}

// AllowsTool reports whether the profile may invoke the named tool.
func (p *Profile) AllowsTool(name string) bool {
	for _, t := range p.Tools {
		if t == name {
			return true
		}
	}
	return false
}

// Registry is a read-only collection of profiles keyed by name.
type Registry struct {
	profiles map[string]*Profile
}

// NewRegistry builds a registry from the given profiles. Duplicate names
// are an error.
func NewRegistry(profiles ...*Profile) (*Registry, error) {
	m := make(map[string]*Profile, len(profiles))
	for _, p := range profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("agent profile without a name")
		}
		if _, dup := m[p.Name]; dup {
			return nil, fmt.Errorf("duplicate agent profile %q", p.Name)
		}
		m[p.Name] = p
	}
	return &Registry{profiles: m}, nil
}

// Get returns the named profile.
func (r *Registry) Get(name string) (*Profile, bool) {
	p, ok := r.profiles[name]
	return p, ok
}

// Has reports whether a profile with the given name exists.
func (r *Registry) Has(name string) bool {
	_, ok := r.profiles[name]
	return ok
}

// Names returns all profile names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// allTools is the full tool surface granted to implementation agents.
var allTools = []string{
	"file_read", "file_write", "file_patch", "file_delete", "file_rename", "file_copy",
	"list_directory", "create_directory", "find_files", "grep_files",
	"run_shell", "run_tests", "install_packages",
	"web_fetch", "web_search",
	"git_command", "rpc_call",
}

const rulesNote = `
PROJECT RULES: if a .gozenrules file exists in the workspace, its contents are
injected into your context. Follow every rule defined there; they are
project-specific instructions from the developer and override defaults.`

// Builtins returns the default agent profiles.
func Builtins() []*Profile {
	return []*Profile{chatProfile(), architectProfile(), coderProfile(),
		researcherProfile(), debugProfile(), gitProfile()}
}

// DefaultRegistry builds a registry holding the builtin profiles.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(Builtins()...)
	if err != nil {
		// Builtins are static; a name clash is a programming error.
		panic(err)
	}
	return r
}

func chatProfile() *Profile {
	return &Profile{
		Name:        "chat",
		Role:        "Orchestrator",
		Icon:        "◉",
		Color:       "#00ff9f",
		Temperature: 0.4,
		MaxTokens:   8192,
		Tools: []string{
			"list_directory", "file_read", "find_files", "grep_files",
			"web_fetch", "web_search", "git_command", "rpc_call",
		},
		SystemPrompt: strings.TrimSpace(`
You are gozen, an autonomous coding agent running in the user's terminal.
You can read every file in the workspace, search the web, run shell
commands, and drive git.

DIRECTORY RULES:
- Work inside the user's current directory.
- If asked for a named project ("make X"), plan for an X/ subdirectory.
- Always read what is already there before proposing changes.

FILE REFERENCES:
- Users may type @path/to/file to reference specific files.
- When you see an @reference, call file_read on that exact path and say
  which files you loaded.

WHEN ASKED TO BUILD OR CREATE, output a BUILD PLAN:

BUILD PLAN: <project name>
TARGET DIR: <. or subdirname>
STACK: <Go|Python|Node.js|Rust|...>
[architect] A1: Scaffold directory structure and stub files
[coder] C1: Implement <file> with <description>
[researcher] R1: Research <topic> and apply the best approach
[debug] D1: Run the project and fix all errors until it works

WHEN EDITING: read files first, be surgical, preserve working code.
WHEN ANSWERING: be direct and precise, use code blocks.
WHEN STUCK: fetch documentation or search the web.`) + rulesNote,
	}
}

func architectProfile() *Profile {
	return &Profile{
		Name:        "architect",
		Role:        "Scaffolding",
		Icon:        "◈",
		Color:       "#a855f7",
		Temperature: 0.35,
		MaxTokens:   8192,
		Tools: []string{
			"list_directory", "file_read", "find_files",
			"create_directory", "file_write", "run_shell", "install_packages",
		},
		SystemPrompt: strings.TrimSpace(`
You are the gozen architect. You scaffold projects and create structure.

ALWAYS:
1. list_directory(".") first to see what exists.
2. Read manifest files (go.mod, package.json, requirements.txt, Cargo.toml).
3. Check for a .gozenrules file with project-specific instructions.
4. Create needed directories with create_directory.
5. Write skeleton files with correct imports using file_write.
6. Create the dependency manifest for the chosen stack.
7. Create a .gitignore appropriate for the stack.
8. Create a README.md with run instructions.

Every file you write must be syntactically valid even if the logic is
still empty. Finish the task in one uninterrupted pass.`) + rulesNote,
	}
}

func coderProfile() *Profile {
	return &Profile{
		Name:        "coder",
		Role:        "Implementation",
		Icon:        "⌨",
		Color:       "#00f5ff",
		Temperature: 0.2,
		MaxTokens:   8192,
		Tools:       allTools,
		SystemPrompt: strings.TrimSpace(`
You are the gozen coder. You write production-ready code in any language.

FOR EVERY TASK:
1. list_directory and file_read existing files first.
2. If unsure about a library API, fetch the official docs with web_fetch.
3. Use file_patch for surgical edits and file_write for new files or
   full rewrites; always write complete content.
4. After writing, run a syntax check or compile with run_shell.
5. Fix any errors immediately.

FORBIDDEN:
- Truncating code with "..." or "rest of implementation".
- Writing placeholder stubs that do not work.
- Overwriting an existing file without reading it first.
- Ignoring existing code style or .gozenrules.

Complete the task end to end.`) + rulesNote,
	}
}

func researcherProfile() *Profile {
	return &Profile{
		Name:        "researcher",
		Role:        "Research",
		Icon:        "🌐",
		Color:       "#f59e0b",
		Temperature: 0.3,
		MaxTokens:   8192,
		Tools: []string{
			"web_fetch", "web_search", "file_write", "file_read", "run_shell",
		},
		SystemPrompt: strings.TrimSpace(`
You are the gozen researcher with full internet access.

WHEN RESEARCHING:
1. Search for the most current information; libraries and APIs change.
2. Fetch official documentation pages directly.
3. Look for working code examples.
4. Check changelogs for breaking changes and verify version compatibility.

Write a clear summary of findings: what you found, the recommended
approach, code examples from documentation, and version-specific notes.`) + rulesNote,
	}
}

func debugProfile() *Profile {
	return &Profile{
		Name:        "debug",
		Role:        "Debugger",
		Icon:        "⚠",
		Color:       "#ff4444",
		Temperature: 0.1,
		MaxTokens:   8192,
		Tools:       allTools,
		SystemPrompt: strings.TrimSpace(`
You are the gozen debugger. You do not stop until the project works.

FIX LOOP, repeated until success:
1. list_directory to understand the structure.
2. Detect the run command from the project type.
3. Run the project with run_shell or run_tests.
4. Parse the error to find the exact file and line.
5. file_read that file.
6. If a package is missing, install it with install_packages.
7. Apply the minimal fix, preferring file_patch.
8. Re-run and repeat.

WHEN STUCK (same error three times): search the web for the error
message, read the package docs, or try a different approach.

Stop only when the project runs successfully or every option is
exhausted.`) + rulesNote,
	}
}

func gitProfile() *Profile {
	return &Profile{
		Name:        "git",
		Role:        "Version Control",
		Icon:        "⎇",
		Color:       "#f97316",
		Temperature: 0.2,
		MaxTokens:   4096,
		Tools: []string{
			"git_command", "file_read", "list_directory", "run_shell",
		},
		SystemPrompt: strings.TrimSpace(`
You are the gozen git assistant. You handle version control operations:
commits, branches, merges, history, conflict resolution, and remotes.

COMMIT MESSAGES follow Conventional Commits (feat/fix/chore/docs/
refactor/test/ci) and are specific, e.g.
"feat(auth): add JWT refresh token rotation".

CONFLICTS: read the conflicted file, understand both sides, and produce
a resolution that keeps both intents where possible.`) + rulesNote,
	}
}
