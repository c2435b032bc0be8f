package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"conshell/pkg/contypes"
	"conshell/pkg/inputlock"
)

// maxReadAttempts bounds retries for generic read errors. The separate
// single-fallback policy for ErrNoSource is intentionally asymmetric and
// preserved as-is.
const maxReadAttempts = 5

// Run drives the read-eval-print loop until termination and returns the
// session's exit value, or the error the session was asked to raise out
// of the loop. The session is unusable afterwards.
func (s *Session) Run(ctx context.Context) (string, error) {
	if s.stopped.Load() {
		return "", ErrStopped
	}
	if inputlock.CriticalDepth() > 0 {
		return "", ErrActiveSession
	}

	s.log.Debug("session started", "session", s.id, "source", s.reader.Source())
	defer s.stopped.Store(true)

	for {
		out := s.step(ctx)
		switch out.Stop {
		case contypes.NoStop:
			// prompt again
		case contypes.BreakStop:
			s.mu.Lock()
			s.exitValue = out.Value
			s.mu.Unlock()
			s.log.Debug("session breakout", "session", s.id, "value", out.Value)
			return out.Value, nil
		case contypes.RaiseStop:
			s.log.Debug("session raised", "session", s.id, "error", out.Err)
			return "", out.Err
		}
	}
}

// step performs one PROMPT -> READ -> handle iteration.
func (s *Session) step(ctx context.Context) Outcome {
	s.setPrompt()

	line, err := s.readLine(ctx)
	switch {
	case err == nil:
		return s.HandleLine(ctx, line)
	case errors.Is(err, io.EOF):
		// end-of-input, not an OS error: the control-D handler decides
		return s.onEOF(s)
	case errors.Is(err, inputlock.ErrInterrupted):
		if ctx != nil && ctx.Err() != nil {
			// a cancelled run context never un-cancels; only a keyboard
			// interrupt means "abort this read and prompt again"
			return Outcome{Stop: contypes.RaiseStop, Err: ctx.Err()}
		}
		// abort only the current read; any partial expression is gone
		s.resetBuffer()
		return Outcome{}
	default:
		return Outcome{Stop: contypes.RaiseStop, Err: err}
	}
}

// readLine performs the guarded blocking read, applying the loop's
// read-error policy: one fallback to the default source when the reader
// has no readable source, and at most maxReadAttempts attempts for any
// other error before declaring input exhausted.
func (s *Session) readLine(ctx context.Context) (string, error) {
	usedFallback := false
	attempts := 0

	for {
		var line string
		err := inputlock.GuardedRead(ctx, inputlock.Global, s.id, func() error {
			var rerr error
			line, rerr = s.reader.ReadLine()
			return rerr
		})

		switch {
		case err == nil:
			return line, nil
		case errors.Is(err, io.EOF), errors.Is(err, inputlock.ErrInterrupted):
			return "", err
		case errors.Is(err, ErrNoSource):
			if usedFallback {
				return "", ErrInputExhausted
			}
			usedFallback = true
			s.log.Warn("input source unreadable, falling back to default source")
			s.reader = s.fallback()
		default:
			attempts++
			s.log.Warn("read failed", "source", s.reader.Source(), "attempt", attempts, "error", err)
			if attempts >= maxReadAttempts {
				s.show(func() {
					s.printer.PrintError(fmt.Errorf("fatal: could not read input from %s: %w", s.reader.Source(), err))
				})
				return "", ErrInputExhausted
			}
		}
	}
}

// HandleLine processes one raw input line: command dispatch, expression
// accumulation, and evaluation of complete units. It is also the
// programmatic entry point for hosts feeding lines without a reader.
func (s *Session) HandleLine(ctx context.Context, raw string) Outcome {
	if s.stopped.Load() {
		return Outcome{Stop: contypes.RaiseStop, Err: ErrStopped}
	}

	line := strings.TrimRight(raw, "\r\n")
	if strings.TrimSpace(line) == "" && s.Buffer() == "" {
		return Outcome{}
	}

	s.hist.Push(line)

	// A leading blank escapes command matching: the line is expression
	// text even when its first word looks like a command.
	if !startsWithBlank(line) {
		match := s.registry.SafeDispatch(line, s)
		if p := s.takePending(); p != nil {
			return *p
		}
		if match.Matched {
			if match.Void {
				return Outcome{}
			}
			// a synthetic expression is shaped exactly like typed input,
			// trailing newline included
			s.SetBuffer(match.Output + "\n")
			return s.evaluate(ctx)
		}
	}

	s.mu.Lock()
	s.buf.WriteString(line)
	s.buf.WriteString("\n")
	text := s.buf.String()
	s.mu.Unlock()

	if !s.eval.Complete(text) {
		// multi-line continuation
		return Outcome{}
	}
	return s.evaluate(ctx)
}

// evaluate hands the accumulated buffer to the host evaluator, records
// the result or exception, and shows it. Evaluation and display run
// inside the critical section so that a nested console started from
// within them is detected and refused.
func (s *Session) evaluate(ctx context.Context) Outcome {
	s.mu.Lock()
	text := s.buf.String()
	s.buf.Reset()
	s.mu.Unlock()

	var result string
	var evalErr error
	_ = inputlock.WithCritical(func() error {
		result, evalErr = s.eval.Evaluate(ctx, text)
		return nil
	})

	if evalErr != nil {
		ee := &EvalError{Text: text, Err: evalErr}
		s.recordError(text, ee)
		if errors.Is(evalErr, ErrTargetUnusable) {
			s.show(func() { s.printer.PrintError(ee) })
			return Outcome{Stop: contypes.BreakStop}
		}
		s.show(func() { s.printer.PrintError(ee) })
		return Outcome{}
	}

	s.recordResult(text, result)
	if s.cfg.EchoResults {
		s.show(func() { s.printer.PrintResult(result) })
	}
	return Outcome{}
}

// show runs a display function defensively: formatting an unknown value
// can itself fail, and that failure must not take the loop down.
func (s *Session) show(display func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("failed to show result", "panic", r)
			fmt.Fprintln(os.Stderr, "(failed to show result)")
		}
	}()
	_ = inputlock.WithCritical(func() error {
		display()
		return nil
	})
}

func (s *Session) setPrompt() {
	if s.Buffer() == "" {
		s.reader.SetPrompt(s.cfg.Prompt)
	} else {
		s.reader.SetPrompt(s.cfg.ContinuationPrompt)
	}
}

func startsWithBlank(line string) bool {
	return len(line) > 0 && (line[0] == ' ' || line[0] == '\t')
}
