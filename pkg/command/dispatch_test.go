package command

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conshell/pkg/contypes"
)

// fakeSession is a minimal SessionAccess for dispatcher tests.
type fakeSession struct {
	buffer  string
	printed []string
	broke   bool
	breakV  string
	raised  error
}

func (f *fakeSession) ID() string                   { return "fake-session" }
func (f *fakeSession) Buffer() string               { return f.buffer }
func (f *fakeSession) SetBuffer(text string)        { f.buffer = text }
func (f *fakeSession) LastResult() (string, bool)   { return "", false }
func (f *fakeSession) LastError() error             { return nil }
func (f *fakeSession) Print(text string)            { f.printed = append(f.printed, text) }
func (f *fakeSession) Breakout(value string)        { f.broke, f.breakV = true, value }
func (f *fakeSession) RaiseUp(err error)            { f.raised = err }
func (f *fakeSession) Commands() []contypes.Command { return nil }
func (f *fakeSession) HistoryLines() []string       { return nil }

func TestDispatch_NotACommand(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(newTestDef("list-commands")))

	tests := []struct {
		name string
		line string
	}{
		{name: "unknown token", line: "puts 1 + 1"},
		{name: "prefix is not a match", line: "list-commandsX"},
		{name: "empty line", line: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, err := registry.Dispatch(tt.line, &fakeSession{})
			require.NoError(t, err)
			assert.False(t, match.Matched)
		})
	}
}

func TestDispatch_ExactNameMatch(t *testing.T) {
	registry := NewRegistry()
	invoked := false
	def := newTestDef("list-commands")
	def.Handler = func(_ contypes.Invocation) (string, error) {
		invoked = true
		return "", nil
	}
	require.NoError(t, registry.Register(def))

	match, err := registry.Dispatch("list-commands", &fakeSession{})

	require.NoError(t, err)
	assert.True(t, match.Matched)
	assert.True(t, invoked)
}

func TestDispatch_FlagsAndPositionals(t *testing.T) {
	registry := NewRegistry()
	var gotVerbose bool
	var gotName string
	var gotArgs []string
	def := &Def{
		CmdName: "greet",
		IsVoid:  true,
		DeclareFlags: func(fs *pflag.FlagSet) {
			fs.BoolP("verbose", "v", false, "verbose output")
			fs.String("name", "", "name to greet")
		},
		Handler: func(inv contypes.Invocation) (string, error) {
			gotVerbose, _ = inv.Flags.GetBool("verbose")
			gotName, _ = inv.Flags.GetString("name")
			gotArgs = inv.Args
			return "", nil
		},
	}
	require.NoError(t, registry.Register(def))

	_, err := registry.Dispatch(`greet -v --name "Ada Lovelace" rest args`, &fakeSession{})

	require.NoError(t, err)
	assert.True(t, gotVerbose)
	assert.Equal(t, "Ada Lovelace", gotName)
	assert.Equal(t, []string{"rest", "args"}, gotArgs)
}

func TestDispatch_UnknownFlagIsOptionError(t *testing.T) {
	registry := NewRegistry()
	invoked := false
	def := newTestDef("strict")
	def.Handler = func(_ contypes.Invocation) (string, error) {
		invoked = true
		return "", nil
	}
	require.NoError(t, registry.Register(def))

	match, err := registry.Dispatch("strict --bogus", &fakeSession{})

	assert.True(t, match.Matched)
	assert.False(t, invoked)
	var optErr *OptionError
	require.ErrorAs(t, err, &optErr)
	assert.Equal(t, "strict", optErr.Command)
}

func TestDispatch_ExecutionErrorIsNotOptionError(t *testing.T) {
	registry := NewRegistry()
	boom := errors.New("handler exploded")
	def := newTestDef("failing")
	def.Handler = func(_ contypes.Invocation) (string, error) {
		return "", boom
	}
	require.NoError(t, registry.Register(def))

	match, err := registry.Dispatch("failing", &fakeSession{})

	assert.True(t, match.Matched)
	assert.ErrorIs(t, err, boom)
	var optErr *OptionError
	assert.False(t, errors.As(err, &optErr))
}

func TestDispatch_HelpShortCircuits(t *testing.T) {
	registry := NewRegistry()
	invoked := false
	def := &Def{
		CmdName:        "documented",
		CmdDescription: "a documented command",
		DeclareFlags: func(fs *pflag.FlagSet) {
			fs.Bool("flag", false, "some flag")
		},
		Handler: func(_ contypes.Invocation) (string, error) {
			invoked = true
			return "value", nil
		},
	}
	require.NoError(t, registry.Register(def))

	sess := &fakeSession{}
	match, err := registry.Dispatch("documented --help", sess)

	require.NoError(t, err)
	assert.True(t, match.Matched)
	assert.True(t, match.Void)
	assert.False(t, invoked)
	require.NotEmpty(t, sess.printed)
	assert.Contains(t, sess.printed[0], "Usage: documented")
	assert.Contains(t, sess.printed[0], "a documented command")
}

func TestDispatch_ShortHelpFlag(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(newTestDef("helped")))

	sess := &fakeSession{}
	match, err := registry.Dispatch("helped -h", sess)

	require.NoError(t, err)
	assert.True(t, match.Matched)
	assert.True(t, match.Void)
	assert.NotEmpty(t, sess.printed)
}

func TestDispatch_ValueProducingOutput(t *testing.T) {
	registry := NewRegistry()
	def := &Def{
		CmdName: "produce",
		IsVoid:  false,
		Handler: func(_ contypes.Invocation) (string, error) {
			return "40 + 2", nil
		},
	}
	require.NoError(t, registry.Register(def))

	match, err := registry.Dispatch("produce", &fakeSession{})

	require.NoError(t, err)
	assert.True(t, match.Matched)
	assert.False(t, match.Void)
	assert.Equal(t, "40 + 2", match.Output)
}

func TestDispatch_AliasMatches(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(newTestDef("list-commands", "ls")))

	match, err := registry.Dispatch("ls", &fakeSession{})

	require.NoError(t, err)
	assert.True(t, match.Matched)
	assert.Equal(t, "list-commands", match.Command.Name())
}

func TestSafeDispatch_ReportsOptionError(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(newTestDef("strict")))

	sess := &fakeSession{}
	match := registry.SafeDispatch("strict --bogus", sess)

	assert.True(t, match.Matched)
	assert.True(t, match.Void)
	require.NotEmpty(t, sess.printed)
	assert.Contains(t, sess.printed[0], "invalid option")
	// usage follows the error report
	assert.True(t, strings.Contains(strings.Join(sess.printed, "\n"), "Usage: strict"))
}

func TestSafeDispatch_ReportsExecutionError(t *testing.T) {
	registry := NewRegistry()
	def := newTestDef("failing")
	def.Handler = func(_ contypes.Invocation) (string, error) {
		return "", errors.New("handler exploded")
	}
	require.NoError(t, registry.Register(def))

	sess := &fakeSession{}
	match := registry.SafeDispatch("failing", sess)

	assert.True(t, match.Matched)
	assert.True(t, match.Void)
	require.NotEmpty(t, sess.printed)
	assert.Contains(t, sess.printed[0], "handler exploded")
}

func TestSafeDispatch_BadQuotingIsOptionError(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(newTestDef("q")))

	sess := &fakeSession{}
	match := registry.SafeDispatch(`q "unterminated`, sess)

	assert.True(t, match.Matched)
	require.NotEmpty(t, sess.printed)
	assert.Contains(t, sess.printed[0], "invalid option")
}
