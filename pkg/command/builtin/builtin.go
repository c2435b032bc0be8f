// Package builtin provides the stock console commands: help, listing,
// exit, deliberate raise, and history access. They are ordinary commands
// built atop the dispatch pipeline and register through RegisterAll; the
// console core does not depend on them.
package builtin

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"conshell/pkg/command"
	"conshell/pkg/contypes"
)

// RegisterAll registers every stock command into r.
func RegisterAll(r *command.Registry) error {
	for _, cmd := range All() {
		if err := r.Register(cmd); err != nil {
			return err
		}
	}
	return nil
}

// All returns the stock command definitions in listing order.
func All() []contypes.Command {
	return []contypes.Command{
		helpCommand(),
		listCommandsCommand(),
		exitCommand(),
		raiseUpCommand(),
		histCommand(),
		playCommand(),
		showInputCommand(),
	}
}

func helpCommand() contypes.Command {
	return &command.Def{
		CmdName:        "help",
		CmdDescription: "Show help for a command, or list all commands",
		CmdGroup:       "Help",
		IsVoid:         true,
		Handler: func(inv contypes.Invocation) (string, error) {
			if len(inv.Args) == 0 {
				printListing(inv.Session)
				return "", nil
			}
			name := inv.Args[0]
			for _, cmd := range inv.Session.Commands() {
				if cmd.Name() == name || containsString(cmd.Aliases(), name) {
					inv.Session.Print(cmd.Usage())
					return "", nil
				}
			}
			return "", fmt.Errorf("no command named %q", name)
		},
	}
}

func listCommandsCommand() contypes.Command {
	return &command.Def{
		CmdName:        "list-commands",
		CmdAliases:     []string{"commands"},
		CmdDescription: "List registered commands grouped by category",
		CmdGroup:       "Help",
		IsVoid:         true,
		Handler: func(inv contypes.Invocation) (string, error) {
			printListing(inv.Session)
			return "", nil
		},
	}
}

func printListing(sess contypes.SessionAccess) {
	groups := make(map[string][]contypes.Command)
	var order []string
	for _, cmd := range sess.Commands() {
		group := cmd.Group()
		if group == "" {
			group = "Commands"
		}
		if _, seen := groups[group]; !seen {
			order = append(order, group)
		}
		groups[group] = append(groups[group], cmd)
	}
	sort.Strings(order)

	var b strings.Builder
	for i, group := range order {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(group + "\n")
		for _, cmd := range groups[group] {
			name := cmd.Name()
			if aliases := cmd.Aliases(); len(aliases) > 0 {
				name += " (" + strings.Join(aliases, ", ") + ")"
			}
			b.WriteString(fmt.Sprintf("  %-24s %s\n", name, cmd.Description()))
		}
	}
	sess.Print(b.String())
}

func exitCommand() contypes.Command {
	return &command.Def{
		CmdName:        "exit",
		CmdAliases:     []string{"quit"},
		CmdDescription: "Terminate the console, optionally with a return value",
		CmdGroup:       "Navigation",
		IsVoid:         true,
		Handler: func(inv contypes.Invocation) (string, error) {
			value := ""
			if len(inv.Args) > 0 {
				value = strings.Join(inv.Args, " ")
			}
			inv.Session.Breakout(value)
			return "", nil
		},
	}
}

func raiseUpCommand() contypes.Command {
	return &command.Def{
		CmdName:        "raise-up",
		CmdDescription: "Raise an error out of the console to the embedder",
		CmdGroup:       "Navigation",
		IsVoid:         true,
		Handler: func(inv contypes.Invocation) (string, error) {
			msg := strings.Join(inv.Args, " ")
			if msg == "" {
				msg = "raised from console"
			}
			inv.Session.RaiseUp(errors.New(msg))
			return "", nil
		},
	}
}

func histCommand() contypes.Command {
	return &command.Def{
		CmdName:        "hist",
		CmdAliases:     []string{"history"},
		CmdDescription: "Show input history",
		CmdGroup:       "Input",
		IsVoid:         true,
		DeclareFlags: func(fs *pflag.FlagSet) {
			fs.IntP("tail", "t", 0, "show only the last N entries")
		},
		Handler: func(inv contypes.Invocation) (string, error) {
			lines := inv.Session.HistoryLines()
			tail, _ := inv.Flags.GetInt("tail")
			start := 0
			if tail > 0 && tail < len(lines) {
				start = len(lines) - tail
			}
			var b strings.Builder
			for i := start; i < len(lines); i++ {
				b.WriteString(fmt.Sprintf("%4d: %s\n", i+1, lines[i]))
			}
			inv.Session.Print(strings.TrimRight(b.String(), "\n"))
			return "", nil
		},
	}
}

// playCommand is value-producing: the selected history entry becomes the
// next expression the session evaluates.
func playCommand() contypes.Command {
	return &command.Def{
		CmdName:        "play",
		CmdDescription: "Replay a history entry as the next expression",
		CmdGroup:       "Input",
		IsVoid:         false,
		Handler: func(inv contypes.Invocation) (string, error) {
			if len(inv.Args) != 1 {
				return "", fmt.Errorf("play takes exactly one history entry number")
			}
			n, err := strconv.Atoi(inv.Args[0])
			if err != nil {
				return "", fmt.Errorf("not a history entry number: %q", inv.Args[0])
			}
			lines := inv.Session.HistoryLines()
			if n < 1 || n > len(lines) {
				return "", fmt.Errorf("history entry %d out of range", n)
			}
			return lines[n-1], nil
		},
	}
}

func showInputCommand() contypes.Command {
	return &command.Def{
		CmdName:        "show-input",
		CmdDescription: "Show the pending multi-line expression buffer",
		CmdGroup:       "Input",
		IsVoid:         true,
		Handler: func(inv contypes.Invocation) (string, error) {
			inv.Session.Print(inv.Session.Buffer())
			return "", nil
		},
	}
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
