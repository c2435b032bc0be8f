// This file contains the console configuration structure. Every known
// option is an explicit typed field; unrecognized keys go into the Extra
// map rather than behind dynamic property lookup.
package contypes

// Config holds the per-session console options.
type Config struct {
	// Prompt is shown before each fresh input line.
	Prompt string

	// ContinuationPrompt is shown while a multi-line expression is pending.
	ContinuationPrompt string

	// RingSize bounds both the input and the output ring. Reconfiguring
	// it takes effect by constructing fresh rings.
	RingSize int

	// HistoryFile overrides the default history path resolution.
	// Empty means resolve via ~/.conshell_history then the XDG data dir.
	HistoryFile string

	// NoHistory disables history persistence entirely.
	NoHistory bool

	// Color enables ANSI styling on result and error output. It is
	// normally derived from the terminal capability environment.
	Color bool

	// EchoResults controls whether evaluation results are printed.
	EchoResults bool

	// TestMode switches id generation to a deterministic sequence.
	TestMode bool

	// Extra holds unrecognized configuration keys verbatim.
	Extra map[string]string
}

// DefaultConfig returns the stock console configuration.
func DefaultConfig() Config {
	return Config{
		Prompt:             "> ",
		ContinuationPrompt: "* ",
		RingSize:           100,
		EchoResults:        true,
		Extra:              make(map[string]string),
	}
}
