// Package console implements the read-eval-print loop and its session
// state: the accumulated expression buffer, last result and exception
// bookkeeping, exit semantics, and the loop's liveness under read errors
// and interrupts. Expression evaluation itself is delegated to a
// host-provided evaluator; the console only decides when a line is
// complete, whether it is a command, and how the loop stays alive.
package console

import (
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"conshell/internal/logger"
	"conshell/internal/testutils"
	"conshell/pkg/command"
	"conshell/pkg/contypes"
	"conshell/pkg/history"
	"conshell/pkg/ring"
)

// EnvDisable switches the console off entirely; New refuses to construct
// a session while it is set.
const EnvDisable = "CONSHELL_DISABLE"

// Outcome is how one loop iteration tells the driver to proceed. It is
// returned up the call stack and matched explicitly; the loop never uses
// panics for control transfer.
type Outcome struct {
	Stop  contypes.Stop
	Value string
	Err   error
}

// EOFHandler decides what happens when the input source signals
// end-of-input (control-D). The default handler terminates the loop with
// a breakout carrying no value.
type EOFHandler func(sess contypes.SessionAccess) Outcome

// Session is one REPL conversation. It becomes unusable the instant its
// stopped flag is set: all further line handling reports ErrStopped
// without side effects.
type Session struct {
	id  string
	cfg contypes.Config
	log *log.Logger

	eval     contypes.Evaluator
	printer  contypes.Printer
	registry *command.Registry
	hist     *history.Store
	reader   LineReader
	fallback func() LineReader
	onEOF    EOFHandler

	mu        sync.Mutex
	buf       strings.Builder
	lastRes   string
	hasRes    bool
	lastErr   *EvalError
	exitValue string
	pending   *Outcome
	inRing    *ring.Ring[string]
	outRing   *ring.Ring[string]
	backtrace []byte

	stopped atomic.Bool
}

var _ contypes.SessionAccess = (*Session)(nil)

// Option configures a Session under construction.
type Option func(*Session)

// WithConfig replaces the default configuration.
func WithConfig(cfg contypes.Config) Option {
	return func(s *Session) { s.cfg = cfg }
}

// WithRegistry gives the session its command registry. Sessions sharing a
// registry must not register commands mid-execution; use Registry.Clone
// for an isolated copy.
func WithRegistry(r *command.Registry) Option {
	return func(s *Session) { s.registry = r }
}

// WithPrinter replaces the default result printer.
func WithPrinter(p contypes.Printer) Option {
	return func(s *Session) { s.printer = p }
}

// WithReader gives the session its input source.
func WithReader(r LineReader) Option {
	return func(s *Session) { s.reader = r }
}

// WithHistory gives the session its history store.
func WithHistory(h *history.Store) Option {
	return func(s *Session) { s.hist = h }
}

// WithEOFHandler replaces the default control-D behavior.
func WithEOFHandler(h EOFHandler) Option {
	return func(s *Session) { s.onEOF = h }
}

// New creates a session around the host-provided evaluator. It fails with
// ErrDisabled when the disable switch is set in the environment.
func New(eval contypes.Evaluator, opts ...Option) (*Session, error) {
	if os.Getenv(EnvDisable) != "" {
		return nil, ErrDisabled
	}

	s := &Session{
		cfg:       contypes.DefaultConfig(),
		eval:      eval,
		backtrace: debug.Stack(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.id = testutils.GenerateUUID(s.cfg.TestMode)
	s.log = logger.NewStyledLogger("Console")
	s.inRing = ring.New[string](s.cfg.RingSize)
	s.outRing = ring.New[string](s.cfg.RingSize)

	if s.registry == nil {
		s.registry = command.NewRegistry()
	}
	if s.printer == nil {
		s.printer = NewPrinter(os.Stdout, s.cfg.Color)
	}
	if s.hist == nil {
		if s.cfg.NoHistory {
			s.hist = history.NewStore("", history.WithoutPersistence())
		} else {
			s.hist = history.NewStore(s.cfg.HistoryFile)
		}
	}
	if s.reader == nil {
		s.reader = defaultSource()
	}
	if s.fallback == nil {
		s.fallback = defaultSource
	}
	if s.onEOF == nil {
		s.onEOF = func(contypes.SessionAccess) Outcome {
			return Outcome{Stop: contypes.BreakStop}
		}
	}

	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Buffer returns the pending accumulated expression text.
func (s *Session) Buffer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// SetBuffer replaces the pending accumulated expression text.
func (s *Session) SetBuffer(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Reset()
	s.buf.WriteString(text)
}

// LastResult returns the most recent evaluation result and whether the
// last evaluation produced a plain value rather than an exception.
func (s *Session) LastResult() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRes, s.hasRes
}

// LastError returns the session's last exception wrapper, nil after a
// successful evaluation.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastErr == nil {
		return nil
	}
	return s.lastErr
}

// ExitValue returns the value the loop returned with, set once at
// breakout.
func (s *Session) ExitValue() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitValue
}

// Stopped reports whether the session has terminated. The flag is
// one-way: it never reverts to false.
func (s *Session) Stopped() bool {
	return s.stopped.Load()
}

// Backtrace returns the stack captured when the session was created.
func (s *Session) Backtrace() []byte {
	return s.backtrace
}

// InputRing returns the ring of evaluated expression texts.
func (s *Session) InputRing() *ring.Ring[string] {
	return s.inRing
}

// OutputRing returns the ring of evaluation results.
func (s *Session) OutputRing() *ring.Ring[string] {
	return s.outRing
}

// Print writes text to the session's output sink.
func (s *Session) Print(text string) {
	s.printer.Print(text)
}

// Breakout asks the loop to terminate normally after the current command,
// carrying value as the session's exit value.
func (s *Session) Breakout(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &Outcome{Stop: contypes.BreakStop, Value: value}
}

// RaiseUp asks the loop to re-raise err to the caller of Run. This is the
// one error class the loop never swallows.
func (s *Session) RaiseUp(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &Outcome{Stop: contypes.RaiseStop, Err: err}
}

// Commands returns the registered commands in registration order.
func (s *Session) Commands() []contypes.Command {
	return s.registry.GetAll()
}

// HistoryLines returns a copy of the in-memory history sequence.
func (s *Session) HistoryLines() []string {
	return s.hist.Lines()
}

// History returns the session's history store.
func (s *Session) History() *history.Store {
	return s.hist
}

// takePending consumes an outcome queued by Breakout or RaiseUp.
func (s *Session) takePending() *Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.pending
	s.pending = nil
	return p
}

func (s *Session) resetBuffer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Reset()
}

func (s *Session) recordResult(text string, result string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRes = result
	s.hasRes = true
	s.lastErr = nil
	s.inRing.Push(text)
	s.outRing.Push(result)
}

func (s *Session) recordError(text string, ee *EvalError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasRes = false
	s.lastErr = ee
	s.inRing.Push(text)
	s.outRing.Push(ee.Error())
}
