// Package history provides the console's persisted input history: an
// in-memory line sequence backed by an append-only file. Persistence
// failures degrade to in-memory-only operation and are reported as
// warnings, never as fatal errors.
package history

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"conshell/internal/logger"
)

// filePerm is the permission set for the history file; fileDirPerm covers
// parent directories created on first write.
const (
	filePerm    = 0o600
	fileDirPerm = 0o700
)

// Store holds the ordered sequence of raw input lines for one process,
// together with the count of lines that were present before the store was
// populated from persistent storage.
type Store struct {
	mu       sync.Mutex
	lines    []string
	original int
	path     string
	ignore   []*regexp.Regexp
	persist  bool
	log      *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithIgnorePatterns exempts lines matching any of the given patterns from
// persistence. Matching lines still enter the in-memory sequence.
func WithIgnorePatterns(patterns ...*regexp.Regexp) Option {
	return func(s *Store) {
		s.ignore = append(s.ignore, patterns...)
	}
}

// WithoutPersistence disables the file backing entirely.
func WithoutPersistence() Option {
	return func(s *Store) {
		s.persist = false
	}
}

// NewStore creates a history store backed by the file at path. An empty
// path resolves via DefaultPath; if resolution fails the store runs
// in-memory only.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		persist: true,
		log:     logger.Logger,
	}
	if path == "" {
		resolved, err := DefaultPath()
		if err != nil {
			s.log.Warn("history path resolution failed, running in-memory only", "error", err)
			s.persist = false
		}
		path = resolved
	}
	s.path = path
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads persisted entries into the in-memory sequence. Each accepted
// entry counts as an "original" line. Lines containing a NUL byte are
// rejected during load. A missing file is not an error.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.persist {
		return nil
	}

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		s.log.Warn("could not read history file", "path", s.path, "error", err)
		s.persist = false
		return nil
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.ContainsRune(line, 0) {
			continue
		}
		s.lines = append(s.lines, line)
		s.original++
	}
	if err := scanner.Err(); err != nil {
		s.log.Warn("error while reading history file", "path", s.path, "error", err)
		s.persist = false
	}
	return nil
}

// Push appends line to the sequence unless it is empty, contains a NUL
// byte, or equals the immediately preceding entry. Accepted lines are also
// appended to persistent storage unless matched by the ignore-list.
func (s *Store) Push(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if line == "" || strings.ContainsRune(line, 0) {
		return
	}
	if n := len(s.lines); n > 0 && s.lines[n-1] == line {
		return
	}
	s.lines = append(s.lines, line)

	if !s.persist || s.ignored(line) {
		return
	}
	if err := s.appendToFile(line); err != nil {
		s.log.Warn("could not write to history file, history persistence disabled", "path", s.path, "error", err)
		s.persist = false
	}
}

// Clear resets the in-memory sequence and both counters to zero.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.original = 0
}

// Lines returns a copy of the in-memory sequence.
func (s *Store) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// Len returns the total number of lines, loaded plus pushed.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// OriginalLines returns the count of lines present before the store was
// populated from persistent storage.
func (s *Store) OriginalLines() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.original
}

// SessionLineCount returns the number of lines pushed during this session,
// i.e. total minus original.
func (s *Store) SessionLineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines) - s.original
}

// Path returns the backing file path, empty when persistence is disabled.
func (s *Store) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.persist {
		return ""
	}
	return s.path
}

func (s *Store) ignored(line string) bool {
	for _, re := range s.ignore {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func (s *Store) appendToFile(line string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), fileDirPerm); err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = f.WriteString(line + "\n")
	return err
}
