package shell

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"gozen/internal/diff"
)

// ConsoleReviewer prompts the user on stdin for each staged change.
type ConsoleReviewer struct {
	in       *bufio.Reader
	out      io.Writer
	renderer *Renderer
}

// NewConsoleReviewer creates a reviewer reading decisions from in.
func NewConsoleReviewer(in *bufio.Reader, out io.Writer, renderer *Renderer) *ConsoleReviewer {
	return &ConsoleReviewer{in: in, out: out, renderer: renderer}
}

// Review shows the diff and reads one decision. index is 1-based.
func (r *ConsoleReviewer) Review(d diff.FileDiff, index, total int) (diff.Decision, error) {
	r.renderer.Diff(d, index, total)

	for {
		fmt.Fprint(r.out, "accept? [y]es / [n]o / [a]ll / [s]kip: ")
		line, err := r.in.ReadString('\n')
		if err != nil {
			return diff.Reject, fmt.Errorf("read review decision: %w", err)
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return diff.Accept, nil
		case "n", "no":
			return diff.Reject, nil
		case "a", "all":
			return diff.AcceptAll, nil
		case "s", "skip":
			return diff.Skip, nil
		default:
			fmt.Fprintln(r.out, "unrecognized answer")
		}
	}
}
