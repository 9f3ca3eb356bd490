// Package workspace scans the project tree and keeps a cached summary for
// prompt context, invalidated by filesystem events.
package workspace

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"gozen/internal/config"
	"gozen/internal/logging"
)

// RulesFile is the per-project instruction file injected into agent context.
const RulesFile = ".gozenrules"

// Snapshot is one scan of the workspace.
type Snapshot struct {
	Root  string
	Stack string
	Files []string
	Rules string
}

// Summary renders the snapshot for inclusion in a prompt.
func (s *Snapshot) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Workspace: %s\n", s.Root)
	if s.Stack != "" {
		fmt.Fprintf(&sb, "Detected stack: %s\n", s.Stack)
	}
	fmt.Fprintf(&sb, "Files (%d):\n", len(s.Files))
	for _, f := range s.Files {
		sb.WriteString("  ")
		sb.WriteString(f)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Scanner walks the workspace and caches the result until a filesystem
// change invalidates it.
type Scanner struct {
	root    string
	cfg     config.WorkspaceConfig
	watcher *fsnotify.Watcher

	mu    sync.Mutex
	cache *Snapshot
	dirty bool
}

// NewScanner creates a scanner rooted at root. When watching is enabled,
// change events mark the cache dirty so the next Scan rewalks the tree.
func NewScanner(root string, cfg config.WorkspaceConfig) (*Scanner, error) {
	s := &Scanner{root: root, cfg: cfg, dirty: true}

	if cfg.Watch {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("creating watcher: %w", err)
		}
		if err := w.Add(root); err != nil {
			w.Close()
			return nil, fmt.Errorf("watching %s: %w", root, err)
		}
		s.watcher = w
		go s.watch()
	}
	return s, nil
}

func (s *Scanner) watch() {
	for {
		select {
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			logging.Debug("workspace changed", "path", ev.Name, "op", ev.Op.String())
			s.Invalidate()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("workspace watcher error", "error", err)
		}
	}
}

// Invalidate marks the cached snapshot stale.
func (s *Scanner) Invalidate() {
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
}

// Close stops the watcher.
func (s *Scanner) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

// Scan returns the current snapshot, rewalking the tree only when the
// cache is stale.
func (s *Scanner) Scan() (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty && s.cache != nil {
		return s.cache, nil
	}

	snap, err := s.walk()
	if err != nil {
		return nil, err
	}
	s.cache = snap
	s.dirty = false
	return snap, nil
}

func (s *Scanner) walk() (*Snapshot, error) {
	ignore := make(map[string]bool, len(s.cfg.IgnoreDirs))
	for _, d := range s.cfg.IgnoreDirs {
		ignore[d] = true
	}
	limit := s.cfg.MaxScanFiles
	if limit <= 0 {
		limit = 2000
	}

	var files []string
	root := os.DirFS(s.root)
	err := fs.WalkDir(root, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if ignore[d.Name()] || (path != "." && strings.HasPrefix(d.Name(), ".")) {
				return fs.SkipDir
			}
			return nil
		}
		files = append(files, path)
		if len(files) >= limit {
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", s.root, err)
	}
	sort.Strings(files)

	snap := &Snapshot{
		Root:  s.root,
		Stack: detectStack(files),
		Files: files,
	}
	if data, err := os.ReadFile(filepath.Join(s.root, RulesFile)); err == nil {
		snap.Rules = string(data)
	}
	return snap, nil
}

// detectStack guesses the project stack from manifest files at the root.
func detectStack(files []string) string {
	has := func(name string) bool {
		for _, f := range files {
			if f == name {
				return true
			}
		}
		return false
	}
	switch {
	case has("go.mod"):
		return "Go"
	case has("Cargo.toml"):
		return "Rust"
	case has("package.json"):
		return "Node.js"
	case has("pyproject.toml") || has("requirements.txt") || has("setup.py"):
		return "Python"
	case has("Gemfile"):
		return "Ruby"
	case has("composer.json"):
		return "PHP"
	}
	return ""
}
