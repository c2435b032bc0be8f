package command

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"conshell/pkg/contypes"
)

// Def is the value-based command definition registered into a registry.
// It is the single closed implementation of contypes.Command; hosts build
// commands by filling in its fields rather than by subclassing anything.
type Def struct {
	// CmdName is the primary match token.
	CmdName string

	// CmdAliases are additional listing names.
	CmdAliases []string

	// CmdDescription is the one-line help description.
	CmdDescription string

	// CmdGroup is the listing group label.
	CmdGroup string

	// IsVoid marks the command's return value as discarded.
	IsVoid bool

	// DeclareFlags declares the command's options on a fresh flag set.
	// Nil means the command takes no flags.
	DeclareFlags func(fs *pflag.FlagSet)

	// Handler is invoked with parsed options and session access.
	Handler func(inv contypes.Invocation) (string, error)
}

var _ contypes.Command = (*Def)(nil)

// Name returns the primary match token.
func (d *Def) Name() string { return d.CmdName }

// Aliases returns the listing aliases.
func (d *Def) Aliases() []string { return d.CmdAliases }

// Description returns the help description.
func (d *Def) Description() string { return d.CmdDescription }

// Group returns the listing group label.
func (d *Def) Group() string { return d.CmdGroup }

// Void reports whether the return value is discarded.
func (d *Def) Void() bool { return d.IsVoid }

// Flags returns a fresh flag set with the command's declared options.
func (d *Def) Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet(d.CmdName, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if d.DeclareFlags != nil {
		d.DeclareFlags(fs)
	}
	return fs
}

// Usage returns the usage text for --help and invalid invocations.
func (d *Def) Usage() string {
	text := fmt.Sprintf("Usage: %s [options]\n\n%s\n", d.CmdName, d.CmdDescription)
	if flags := d.Flags().FlagUsages(); flags != "" {
		text += "\nOptions:\n" + flags
	}
	return text
}

// Execute runs the handler. A nil handler is a void no-op.
func (d *Def) Execute(inv contypes.Invocation) (string, error) {
	if d.Handler == nil {
		return "", nil
	}
	return d.Handler(inv)
}
