// Package diff implements change staging: proposed file mutations are
// captured as diffs, grouped into sets, and applied to disk only after
// review.
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// FileDiff is one proposed file mutation. Immutable once created.
type FileDiff struct {
	// Path is relative to the workspace root.
	Path string `json:"path"`
	// OldContent is the file's prior content, empty for new files.
	OldContent string `json:"old_content"`
	// NewContent is the proposed content, empty for deletions.
	NewContent string `json:"new_content"`
	IsNew      bool   `json:"is_new"`
	IsDelete   bool   `json:"is_delete"`
}

// NewFileDiff captures a proposed write or creation.
func NewFileDiff(path, oldContent, newContent string) FileDiff {
	return FileDiff{
		Path:       path,
		OldContent: oldContent,
		NewContent: newContent,
		IsNew:      oldContent == "",
	}
}

// NewDeleteDiff captures a proposed deletion.
func NewDeleteDiff(path, oldContent string) FileDiff {
	return FileDiff{
		Path:       path,
		OldContent: oldContent,
		IsDelete:   true,
	}
}

// Delta reports approximate added and removed line counts as a distinct-line
// delta: the size of the set difference between old and new line sets.
// Duplicate lines are under-counted; callers wanting exact alignment should
// render a unified diff instead.
func (d FileDiff) Delta() (added, removed int) {
	oldSet := lineSet(d.OldContent)
	newSet := lineSet(d.NewContent)
	for line := range newSet {
		if _, ok := oldSet[line]; !ok {
			added++
		}
	}
	for line := range oldSet {
		if _, ok := newSet[line]; !ok {
			removed++
		}
	}
	return added, removed
}

func lineSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	if s == "" {
		return set
	}
	for _, line := range strings.Split(s, "\n") {
		set[line] = struct{}{}
	}
	return set
}

// Unified renders a line-based unified-style preview of the diff.
func (d FileDiff) Unified() string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(d.OldContent, d.NewContent)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, part := range diffs {
		prefix := "  "
		switch part.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		}
		for _, line := range strings.Split(strings.TrimSuffix(part.Text, "\n"), "\n") {
			sb.WriteString(prefix)
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Summary returns a one-line description for review prompts.
func (d FileDiff) Summary() string {
	switch {
	case d.IsDelete:
		return "delete " + d.Path
	case d.IsNew:
		return "create " + d.Path
	default:
		return "modify " + d.Path
	}
}
