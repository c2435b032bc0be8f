package main

import (
	"context"
	"strings"
)

// echoEvaluator is the demo host evaluator behind the standalone binary.
// A line ending with a backslash continues onto the next line; complete
// text "evaluates" to itself with continuations joined. Real embedders
// supply their own contypes.Evaluator.
type echoEvaluator struct{}

func newEchoEvaluator() *echoEvaluator {
	return &echoEvaluator{}
}

func (e *echoEvaluator) Complete(text string) bool {
	trimmed := strings.TrimRight(text, "\n")
	return !strings.HasSuffix(trimmed, "\\")
}

func (e *echoEvaluator) Evaluate(_ context.Context, text string) (string, error) {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(strings.TrimRight(l, " "), "\\")
	}
	return strings.TrimSpace(strings.Join(lines, " ")), nil
}
