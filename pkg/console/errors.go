package console

import (
	"errors"
	"fmt"
)

var (
	// ErrStopped is returned when a line is handed to a session whose
	// stopped flag is already set. The call has no side effects.
	ErrStopped = errors.New("session has been stopped")

	// ErrActiveSession is returned when a loop is started while another
	// session is already inside its critical section, e.g. from within a
	// value's string conversion.
	ErrActiveSession = errors.New("already inside an active session")

	// ErrDisabled is returned by New when the console is switched off via
	// the environment.
	ErrDisabled = errors.New("console is disabled")

	// ErrNoSource is reported by a reader that has no readable source.
	ErrNoSource = errors.New("no readable input source")

	// ErrInputExhausted terminates the loop after read-error retries and
	// the default-source fallback are used up.
	ErrInputExhausted = errors.New("input sources exhausted")

	// ErrTargetUnusable is wrapped by a host evaluator whose evaluation
	// target has become unusable. Unlike ordinary evaluation failures it
	// breaks the loop instead of continuing.
	ErrTargetUnusable = errors.New("evaluation target is no longer usable")
)

// EvalError wraps a failure from the host evaluator together with the
// text that provoked it. It becomes the session's last exception.
type EvalError struct {
	// Text is the expression text that was being evaluated.
	Text string
	// Err is the host-level error.
	Err error
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluation failed: %v", e.Err)
}

// Unwrap returns the host-level error.
func (e *EvalError) Unwrap() error {
	return e.Err
}
