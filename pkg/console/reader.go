package console

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"

	"conshell/pkg/inputlock"
)

// EnvFailReads forces every read to fail. Test harnesses use it to drive
// the loop's read-error paths without a broken terminal.
const EnvFailReads = "CONSHELL_FAIL_READS"

// LineReader performs the blocking line read for the console loop.
// Implementations surface io.EOF when the source has no more characters,
// inputlock.ErrInterrupted when an asynchronous interrupt aborted the
// read, and ErrNoSource when there is nothing to read from.
type LineReader interface {
	// ReadLine blocks until one line is available. The returned line does
	// not include its terminator.
	ReadLine() (string, error)

	// SetPrompt switches the prompt shown before the next read.
	SetPrompt(prompt string)

	// Source names the underlying input source for diagnostics.
	Source() string
}

// TerminalReader reads from an interactive terminal via readline. The
// blocking call is a genuine terminal read that readline itself aborts on
// SIGINT, which this reader reports as inputlock.ErrInterrupted.
type TerminalReader struct {
	rl *readline.Instance
}

// NewTerminalReader opens a readline instance with the given prompt.
// Readline's own file-backed history is disabled; the console keeps its
// own history store.
func NewTerminalReader(prompt string) (*TerminalReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryLimit:    -1,
		InterruptPrompt: "^C",
	})
	if err != nil {
		return nil, err
	}
	return &TerminalReader{rl: rl}, nil
}

// ReadLine performs the blocking terminal read.
func (t *TerminalReader) ReadLine() (string, error) {
	if os.Getenv(EnvFailReads) != "" {
		return "", fmt.Errorf("read failure forced by %s", EnvFailReads)
	}
	line, err := t.rl.Readline()
	switch err {
	case nil:
		return line, nil
	case readline.ErrInterrupt:
		return "", inputlock.ErrInterrupted
	case io.EOF:
		return "", io.EOF
	default:
		return "", err
	}
}

// SetPrompt switches the terminal prompt.
func (t *TerminalReader) SetPrompt(prompt string) {
	t.rl.SetPrompt(prompt)
}

// Source names the terminal for diagnostics.
func (t *TerminalReader) Source() string {
	return "terminal"
}

// Close releases the terminal.
func (t *TerminalReader) Close() error {
	return t.rl.Close()
}

// BufferReader reads lines from any io.Reader. It writes the prompt to an
// optional output writer, which keeps batch transcripts readable.
type BufferReader struct {
	scanner *bufio.Scanner
	out     io.Writer
	prompt  string
	name    string
}

// NewBufferReader wraps r as a line source. A nil r yields ErrNoSource on
// every read. out may be nil to suppress prompt echo.
func NewBufferReader(r io.Reader, out io.Writer, name string) *BufferReader {
	b := &BufferReader{out: out, name: name}
	if r != nil {
		b.scanner = bufio.NewScanner(r)
	}
	return b
}

// ReadLine returns the next line from the wrapped reader.
func (b *BufferReader) ReadLine() (string, error) {
	if os.Getenv(EnvFailReads) != "" {
		return "", fmt.Errorf("read failure forced by %s", EnvFailReads)
	}
	if b.scanner == nil {
		return "", ErrNoSource
	}
	if b.out != nil && b.prompt != "" {
		fmt.Fprint(b.out, b.prompt)
	}
	if b.scanner.Scan() {
		return b.scanner.Text(), nil
	}
	if err := b.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// SetPrompt switches the echoed prompt.
func (b *BufferReader) SetPrompt(prompt string) {
	b.prompt = prompt
}

// Source names the wrapped reader for diagnostics.
func (b *BufferReader) Source() string {
	if b.name != "" {
		return b.name
	}
	return "buffer"
}

// defaultSource is the fallback used after a reader reports ErrNoSource
// for the first time.
func defaultSource() LineReader {
	return NewBufferReader(os.Stdin, os.Stdout, "stdin")
}
