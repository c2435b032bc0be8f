// Package contypes defines the shared types for the conshell console system.
// This file contains the command capability interface and the dispatch result
// types exchanged between the registry, the dispatcher, and the console loop.
package contypes

import (
	"github.com/spf13/pflag"
)

// Command is the capability interface every console command satisfies.
// Commands are registered into a registry by value; there is no open
// class hierarchy behind them.
type Command interface {
	// Name returns the primary match token for the command.
	Name() string

	// Aliases returns additional listing names that also match this command.
	Aliases() []string

	// Description returns a one-line human description for help output.
	Description() string

	// Group returns the listing group label (e.g. "Navigation", "Input").
	Group() string

	// Void reports whether the command's return value is discarded.
	// A non-void command's returned text is substituted into the session's
	// evaluation pipeline as the next expression to evaluate.
	Void() bool

	// Flags returns a fresh flag set declaring the command's options.
	// Each declared flag takes zero arguments (bool) or one argument.
	Flags() *pflag.FlagSet

	// Usage returns the usage text shown for --help and invalid invocations.
	Usage() string

	// Execute runs the command with parsed options and session access.
	// The returned text is meaningful only for non-void commands.
	Execute(inv Invocation) (string, error)
}

// Invocation carries the parsed options, positional arguments, and session
// access handed to a command handler.
type Invocation struct {
	// Flags is the command's flag set after parsing the trailing options.
	Flags *pflag.FlagSet

	// Args holds the positional arguments left after flag parsing.
	Args []string

	// Session grants read/write access to the owning session's state.
	Session SessionAccess
}

// Match is the result of resolving one input line against a registry.
// Either Matched is false (the line is expression text) or it carries the
// matched command together with the invocation outcome.
type Match struct {
	// Matched reports whether any registered command claimed the line.
	Matched bool

	// Command is the matched definition, nil when Matched is false.
	Command Command

	// Output is the handler's returned text. For non-void commands it
	// replaces the session's pending expression text.
	Output string

	// Void mirrors the matched command's void flag at dispatch time.
	Void bool
}
