// This file contains the console loop outcome types and the collaborator
// interfaces a host embeds: the evaluator, the printer, and the session
// access surface exposed to command handlers.
package contypes

import (
	"context"
)

// Stop classifies how one loop iteration asks the driver to proceed.
// It replaces non-local control transfer with an explicit value matched
// by the loop driver.
type Stop int

const (
	// NoStop indicates normal execution; the loop prompts again.
	NoStop Stop = iota
	// BreakStop asks the loop to terminate normally, optionally carrying
	// a return value for the caller of Run.
	BreakStop
	// RaiseStop asks the loop to terminate by re-raising an error to the
	// caller of Run instead of returning a value.
	RaiseStop
)

// String returns the conventional name of the stop status.
func (s Stop) String() string {
	switch s {
	case NoStop:
		return "continue"
	case BreakStop:
		return "breakout"
	case RaiseStop:
		return "raise"
	default:
		return "invalid"
	}
}

// Evaluator is the host-provided collaborator that owns the target
// language. The console never parses expression text itself; it only asks
// the evaluator whether accumulated text is complete and, if so, to
// evaluate it.
type Evaluator interface {
	// Complete reports whether text forms a syntactically complete
	// evaluable unit. Incomplete text keeps accumulating across lines.
	Complete(text string) bool

	// Evaluate evaluates a complete unit and returns its rendered result
	// or a host-level error.
	Evaluate(ctx context.Context, text string) (string, error)
}

// Printer renders evaluation results and exceptions to the session's
// output sink. Implementations must tolerate arbitrary result text.
type Printer interface {
	// PrintResult shows a successful evaluation result.
	PrintResult(text string)

	// PrintError shows an evaluation or dispatch failure.
	PrintError(err error)

	// Print shows plain text, used by commands for their own output.
	Print(text string)
}

// SessionAccess is the surface a command handler may touch. It is an
// explicitly passed value, never ambient global state.
type SessionAccess interface {
	// ID returns the session's unique identifier.
	ID() string

	// Buffer returns the pending accumulated expression text.
	Buffer() string

	// SetBuffer replaces the pending accumulated expression text.
	SetBuffer(text string)

	// LastResult returns the most recent evaluation result and whether
	// the last evaluation produced a plain value rather than an error.
	LastResult() (string, bool)

	// LastError returns the session's last exception wrapper, nil when
	// the last evaluation succeeded.
	LastError() error

	// Print writes text to the session's output sink.
	Print(text string)

	// Breakout asks the loop to terminate normally after the current
	// command, carrying value as the session's exit value.
	Breakout(value string)

	// RaiseUp asks the loop to terminate by re-raising err to the caller
	// of Run. This is the one error class the loop never swallows.
	RaiseUp(err error)

	// Commands returns the registered commands in registration order.
	Commands() []Command

	// HistoryLines returns a copy of the in-memory history sequence.
	HistoryLines() []string
}
