package summarizer

import (
	"context"
	"strings"
)

// NoOp is a summarizer that returns the leading portion of the article body
// unchanged. Useful in development when no completion API credential is
// available.
type NoOp struct{}

// NewNoOp creates a new NoOp summarizer.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// ModelName implements Summarizer.
func (n *NoOp) ModelName() string {
	return "noop"
}

// Summarize returns the first three non-blank lines of the content.
func (n *NoOp) Summarize(_ context.Context, _, _, content string) (*Result, error) {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == 3 {
			break
		}
	}
	return &Result{Summary: strings.Join(lines, "\n"), Attempts: 1, Model: "noop"}, nil
}
