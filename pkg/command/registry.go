// Package command provides command registration, resolution, and dispatch
// for the console. A registry maps names and listing aliases to command
// definitions; the dispatcher matches a typed line against the registry,
// parses its trailing options, and invokes the handler.
package command

import (
	"fmt"
	"sync"

	"conshell/pkg/contypes"
)

// Registry manages command registration and lookup. Registration order is
// preserved for listing; lookup also resolves listing aliases. Within one
// registry at most one definition matches a given input token: the first
// registered wins unless a later registration explicitly replaces it.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]contypes.Command
	aliases  map[string]string
	order    []string
}

// NewRegistry creates an empty command registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]contypes.Command),
		aliases:  make(map[string]string),
	}
}

// Register adds a command. It returns an error if the name is empty or if
// a command with the same name is already registered.
func (r *Registry) Register(cmd contypes.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cmd.Name() == "" {
		return fmt.Errorf("command name cannot be empty")
	}
	if _, exists := r.commands[cmd.Name()]; exists {
		return fmt.Errorf("command %s already registered", cmd.Name())
	}

	r.insert(cmd)
	return nil
}

// RegisterReplace adds a command, replacing any earlier registration with
// the same name. The replacement keeps the original's listing position.
func (r *Registry) RegisterReplace(cmd contypes.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cmd.Name() == "" {
		return fmt.Errorf("command name cannot be empty")
	}

	if _, exists := r.commands[cmd.Name()]; exists {
		r.dropAliases(cmd.Name())
		r.commands[cmd.Name()] = cmd
		r.claimAliases(cmd)
		return nil
	}

	r.insert(cmd)
	return nil
}

// insert records a brand-new command. Callers hold the write lock.
func (r *Registry) insert(cmd contypes.Command) {
	r.commands[cmd.Name()] = cmd
	r.order = append(r.order, cmd.Name())
	r.claimAliases(cmd)
}

// claimAliases maps the command's listing names to it. A name or alias
// already claimed by an earlier registration is left untouched, so the
// first registered command stays the match target.
func (r *Registry) claimAliases(cmd contypes.Command) {
	for _, alias := range cmd.Aliases() {
		if alias == "" {
			continue
		}
		if _, taken := r.commands[alias]; taken {
			continue
		}
		if _, taken := r.aliases[alias]; taken {
			continue
		}
		r.aliases[alias] = cmd.Name()
	}
}

func (r *Registry) dropAliases(name string) {
	for alias, target := range r.aliases {
		if target == name {
			delete(r.aliases, alias)
		}
	}
}

// Unregister removes a command and its aliases by primary name. It does
// not error when the command is absent.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.commands[name]; !exists {
		return
	}
	delete(r.commands, name)
	r.dropAliases(name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get retrieves a command by primary name or listing alias.
func (r *Registry) Get(name string) (contypes.Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cmd, ok := r.commands[name]; ok {
		return cmd, true
	}
	if primary, ok := r.aliases[name]; ok {
		return r.commands[primary], true
	}
	return nil, false
}

// GetAll returns all registered commands in registration order. The
// returned slice is a copy.
func (r *Registry) GetAll() []contypes.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]contypes.Command, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.commands[name])
	}
	return out
}

// IsValidCommand reports whether name resolves to a registered command.
func (r *Registry) IsValidCommand(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Clone returns an isolated copy of the registry sharing the command
// values but no registration state. Sessions may be given a clone so that
// per-session registration never mutates a shared registry.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := NewRegistry()
	for _, name := range r.order {
		c.insert(r.commands[name])
	}
	return c
}
