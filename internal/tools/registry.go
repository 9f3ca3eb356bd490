package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"google.golang.org/genai"

	"gozen/internal/logging"
)

// Registry manages the collection of available tools.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool to the registry.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}
	r.tools[name] = tool
	return nil
}

// MustRegister adds a tool and logs a warning on conflict.
func (r *Registry) MustRegister(tool Tool) {
	if err := r.Register(tool); err != nil {
		logging.Warn("tool registration failed", "tool", tool.Name(), "error", err)
	}
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns all registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Declarations returns function declarations for the named tools, skipping
// names that are not registered. Order follows the allowed list.
func (r *Registry) Declarations(allowed []string) []*genai.FunctionDeclaration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	decls := make([]*genai.FunctionDeclaration, 0, len(allowed))
	for _, name := range allowed {
		if t, ok := r.tools[name]; ok {
			decls = append(decls, t.Declaration())
		}
	}
	return decls
}

// Dispatch validates and executes the named tool. Unknown names and bad
// arguments come back as failed results, never as a crash.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) Result {
	tool, ok := r.Get(name)
	if !ok {
		return Fail("unknown tool: %s", name)
	}
	if err := tool.Validate(args); err != nil {
		return Fail("invalid arguments for %s: %v", name, err)
	}
	return tool.Execute(ctx, args)
}
