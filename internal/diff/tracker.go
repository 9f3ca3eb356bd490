package diff

import (
	"context"
	"sync"
)

// Tracker intercepts file mutations while active and accumulates them into
// a Set instead of letting them reach disk. One tracker serves one agent
// turn; tools find it through the request context.
type Tracker struct {
	mu     sync.Mutex
	active bool
	set    *Set
}

// NewTracker creates an inactive tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Start begins a tracked turn for the given agent and task. Any previous
// unfinished set is discarded.
func (t *Tracker) Start(agent, task string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = true
	t.set = NewSet(agent, task)
}

// Stop ends the tracked turn and returns the accumulated set, which may be
// empty. After Stop the tracker no longer intercepts writes.
func (t *Tracker) Stop() *Set {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = false
	set := t.set
	t.set = nil
	if set == nil {
		set = NewSet("", "")
	}
	return set
}

// Active reports whether the tracker is currently intercepting writes.
func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Record captures a diff if the tracker is active. It reports whether the
// diff was captured; false means the caller should apply the change itself.
func (t *Tracker) Record(d FileDiff) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active {
		return false
	}
	t.set.Add(d)
	return true
}

type trackerKeyType struct{}

var trackerKey trackerKeyType

// WithTracker attaches a tracker to the context for tools to find.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey, t)
}

// FromContext returns the active tracker attached to ctx, or nil when the
// turn is untracked.
func FromContext(ctx context.Context) *Tracker {
	t, _ := ctx.Value(trackerKey).(*Tracker)
	if t == nil || !t.Active() {
		return nil
	}
	return t
}
