// Package core drives agents through the model backend: the orchestrator
// loop, chat turns, and build plan execution.
package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gozen/internal/agent"
	"gozen/internal/client"
	"gozen/internal/config"
	"gozen/internal/diff"
	"gozen/internal/memory"
	"gozen/internal/plan"
	"gozen/internal/security"
	"gozen/internal/tools"
	"gozen/internal/workspace"
)

// ErrIterationLimit is reported when a run exhausts its tool-call rounds
// without the model producing a final answer.
var ErrIterationLimit = errors.New("iteration limit reached without a final answer")

// Core owns the shared session state: backend client, agents, tools,
// memory, and the at-most-one pending build plan.
type Core struct {
	cfg    *config.Config
	client client.Client
	agents *agent.Registry
	mem    *memory.Memory

	mu          sync.Mutex
	guard       *security.Guard
	tools       *tools.Registry
	scanner     *workspace.Scanner
	applier     *diff.Applier
	pendingPlan *plan.Plan
}

// New creates a Core rooted at the given workspace directory.
func New(cfg *config.Config, c client.Client, root string) (*Core, error) {
	core := &Core{
		cfg:    cfg,
		client: c,
		agents: agent.DefaultRegistry(),
		mem:    memory.New(cfg.Memory.Limit),
	}
	if err := core.setWorkspace(root); err != nil {
		return nil, err
	}
	return core, nil
}

// setWorkspace rebuilds the root-scoped components for a new directory.
func (c *Core) setWorkspace(root string) error {
	guard, err := security.NewGuard(root)
	if err != nil {
		return fmt.Errorf("opening workspace: %w", err)
	}
	scanner, err := workspace.NewScanner(guard.Root(), c.cfg.Workspace)
	if err != nil {
		return fmt.Errorf("opening workspace: %w", err)
	}

	c.mu.Lock()
	if c.scanner != nil {
		c.scanner.Close()
	}
	c.guard = guard
	c.scanner = scanner
	c.tools = tools.NewDefaultRegistry(guard, c.cfg.Tools)
	c.applier = diff.NewApplier(guard)
	c.mu.Unlock()
	return nil
}

// pushWorkspace switches the active workspace root to dir, creating it if
// missing, and returns a restore function. Used for plan target dirs.
func (c *Core) pushWorkspace(dir string) (func(), error) {
	c.mu.Lock()
	prev := c.guard.Root()
	c.mu.Unlock()

	abs := dir
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(prev, dir)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("creating target dir: %w", err)
	}
	if err := c.setWorkspace(abs); err != nil {
		return nil, err
	}
	return func() {
		if err := c.setWorkspace(prev); err != nil {
			// The original root existed moments ago; failing to return
			// to it leaves the session unusable.
			panic(fmt.Sprintf("restoring workspace %s: %v", prev, err))
		}
	}, nil
}

// Root returns the active workspace root.
func (c *Core) Root() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.guard.Root()
}

// Applier returns the diff applier for the active workspace.
func (c *Core) Applier() *diff.Applier {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applier
}

// Agents returns the agent registry.
func (c *Core) Agents() *agent.Registry { return c.agents }

// Memory returns the conversation memory.
func (c *Core) Memory() *memory.Memory { return c.mem }

// PendingPlan returns the parsed plan awaiting execution, if any.
func (c *Core) PendingPlan() *plan.Plan {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingPlan
}

func (c *Core) setPendingPlan(p *plan.Plan) {
	c.mu.Lock()
	c.pendingPlan = p
	c.mu.Unlock()
}

// takePendingPlan removes and returns the pending plan. Plans are consumed
// exactly once.
func (c *Core) takePendingPlan() *plan.Plan {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.pendingPlan
	c.pendingPlan = nil
	return p
}

// Close releases session resources.
func (c *Core) Close() error {
	c.mu.Lock()
	scanner := c.scanner
	c.mu.Unlock()
	if scanner != nil {
		scanner.Close()
	}
	return c.client.Close()
}

func (c *Core) toolRegistry() *tools.Registry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tools
}

// workspaceContext renders the scanner snapshot and project rules for
// injection into agent prompts.
func (c *Core) workspaceContext() string {
	c.mu.Lock()
	scanner := c.scanner
	c.mu.Unlock()

	snap, err := scanner.Scan()
	if err != nil {
		return ""
	}
	out := snap.Summary()
	if snap.Rules != "" {
		out += "\nPROJECT RULES (" + workspace.RulesFile + "):\n" + snap.Rules
	}
	return out
}

// refreshWorkspace invalidates the cached scan after disk mutations.
func (c *Core) refreshWorkspace() {
	c.mu.Lock()
	scanner := c.scanner
	c.mu.Unlock()
	scanner.Invalidate()
}
