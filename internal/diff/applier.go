package diff

import (
	"errors"
	"fmt"
	"os"

	"gozen/internal/fileutil"
	"gozen/internal/logging"
	"gozen/internal/security"
)

// Decision is a reviewer's verdict on a single diff.
type Decision int

const (
	// Reject discards the diff with no disk effect.
	Reject Decision = iota
	// Accept applies the diff to disk.
	Accept
	// AcceptAll applies this and every remaining diff in the set.
	AcceptAll
	// Skip leaves the diff undecided with no disk effect.
	Skip
)

// Reviewer decides the fate of each staged diff. Implemented by the shell.
// index is 1-based, suitable for display as "index/total".
type Reviewer interface {
	Review(d FileDiff, index, total int) (Decision, error)
}

// Applier writes accepted diffs to disk, confined to the workspace root.
type Applier struct {
	guard *security.Guard
}

// NewApplier creates an applier rooted at the guard's workspace.
func NewApplier(guard *security.Guard) *Applier {
	return &Applier{guard: guard}
}

// Apply writes a single diff to disk. Deleting an absent path succeeds.
func (a *Applier) Apply(d FileDiff) error {
	abs, err := a.guard.Resolve(d.Path)
	if err != nil {
		return fmt.Errorf("applying %s: %w", d.Path, err)
	}

	if d.IsDelete {
		if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("deleting %s: %w", d.Path, err)
		}
		return nil
	}

	if err := fileutil.AtomicWrite(abs, []byte(d.NewContent), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", d.Path, err)
	}
	return nil
}

// Outcome records what happened to one diff during a review pass.
type Outcome struct {
	Diff     FileDiff
	Decision Decision
	Err      error
}

// ReviewSet walks the set in order, consulting the reviewer per diff.
// AcceptAll short-circuits the remaining prompts. A failed application is
// recorded and the pass continues with the next diff.
func (a *Applier) ReviewSet(set *Set, r Reviewer) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, set.Len())
	acceptRest := false

	for i, d := range set.Diffs {
		decision := AcceptAll
		if !acceptRest {
			var err error
			decision, err = r.Review(d, i+1, set.Len())
			if err != nil {
				return outcomes, fmt.Errorf("reviewing %s: %w", d.Path, err)
			}
		}
		if decision == AcceptAll {
			acceptRest = true
			decision = Accept
		}

		out := Outcome{Diff: d, Decision: decision}
		if decision == Accept {
			if err := a.Apply(d); err != nil {
				logging.Error("diff application failed", "path", d.Path, "error", err)
				out.Err = err
			}
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

// ApplyAll applies every diff in the set without review, collecting
// per-diff failures instead of stopping at the first.
func (a *Applier) ApplyAll(set *Set) []Outcome {
	outcomes := make([]Outcome, 0, set.Len())
	for _, d := range set.Diffs {
		out := Outcome{Diff: d, Decision: Accept}
		if err := a.Apply(d); err != nil {
			logging.Error("diff application failed", "path", d.Path, "error", err)
			out.Err = err
		}
		outcomes = append(outcomes, out)
	}
	return outcomes
}
