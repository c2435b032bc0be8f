package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/pflag"

	"conshell/internal/logger"
	"conshell/pkg/contypes"
)

// OptionError reports a malformed invocation: an unknown flag, a missing
// flag argument, or unparseable quoting. It is distinguishable from a
// general command-execution failure.
type OptionError struct {
	Command string
	Err     error
}

// Error implements the error interface.
func (e *OptionError) Error() string {
	return fmt.Sprintf("invalid option for %s: %v", e.Command, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *OptionError) Unwrap() error {
	return e.Err
}

// Dispatch resolves line against the registry and, on a match, parses the
// trailing options and invokes the handler with sess. A line whose leading
// token matches no registered name or alias yields Match{Matched: false}
// and a nil error: the line is expression text, not a failed command.
func (r *Registry) Dispatch(line string, sess contypes.SessionAccess) (contypes.Match, error) {
	token, rest := splitLeadingToken(line)
	if token == "" {
		return contypes.Match{}, nil
	}

	cmd, ok := r.Get(token)
	if !ok {
		return contypes.Match{}, nil
	}

	match := contypes.Match{Matched: true, Command: cmd, Void: cmd.Void()}

	words, err := shellquote.Split(rest)
	if err != nil {
		return match, &OptionError{Command: cmd.Name(), Err: err}
	}

	fs := cmd.Flags()
	if err := fs.Parse(words); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			// --help short-circuits normal execution
			sess.Print(cmd.Usage())
			match.Void = true
			return match, nil
		}
		return match, &OptionError{Command: cmd.Name(), Err: err}
	}

	logger.Debug("dispatching command", "command", cmd.Name(), "args", fs.Args())

	out, err := cmd.Execute(contypes.Invocation{
		Flags:   fs,
		Args:    fs.Args(),
		Session: sess,
	})
	if err != nil {
		return match, err
	}
	match.Output = out
	return match, nil
}

// SafeDispatch is the dispatch entry point used by the console loop. Both
// invalid options and command-execution failures are caught here and
// reported to the session's output sink rather than crashing the loop.
// When an error was handled the returned match reads as void so the loop
// takes no further action this iteration.
func (r *Registry) SafeDispatch(line string, sess contypes.SessionAccess) contypes.Match {
	match, err := r.Dispatch(line, sess)
	if err == nil {
		return match
	}

	var optErr *OptionError
	if errors.As(err, &optErr) {
		sess.Print(optErr.Error())
		sess.Print(match.Command.Usage())
	} else {
		sess.Print(fmt.Sprintf("%s: %v", match.Command.Name(), err))
	}
	match.Void = true
	match.Output = ""
	return match
}

// splitLeadingToken separates the first whitespace-delimited token of line
// from the remainder.
func splitLeadingToken(line string) (token, rest string) {
	line = strings.TrimSpace(line)
	if i := strings.IndexFunc(line, func(r rune) bool { return r == ' ' || r == '\t' }); i >= 0 {
		return line[:i], line[i+1:]
	}
	return line, ""
}
