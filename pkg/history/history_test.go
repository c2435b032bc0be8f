package history

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history")
	return NewStore(path), path
}

func readFileLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return splitLines(string(data))
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func TestStore_Push(t *testing.T) {
	s, path := newTestStore(t)

	s.Push("a")
	s.Push("b")

	assert.Equal(t, []string{"a", "b"}, s.Lines())
	assert.Equal(t, 2, s.SessionLineCount())
	assert.Equal(t, []string{"a", "b"}, readFileLines(t, path))
}

func TestStore_Push_CoalescesConsecutiveDuplicates(t *testing.T) {
	s, _ := newTestStore(t)

	s.Push("a")
	s.Push("a")
	s.Push("b")

	assert.Equal(t, []string{"a", "b"}, s.Lines())
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 2, s.SessionLineCount())
}

func TestStore_Push_NonConsecutiveDuplicatesKept(t *testing.T) {
	s, _ := newTestStore(t)

	s.Push("a")
	s.Push("b")
	s.Push("a")

	assert.Equal(t, []string{"a", "b", "a"}, s.Lines())
}

func TestStore_Push_RejectsInvalidLines(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "empty line", line: ""},
		{name: "line with NUL byte", line: "abc\x00def"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore(t)
			s.Push(tt.line)
			assert.Equal(t, 0, s.Len())
			assert.Equal(t, 0, s.SessionLineCount())
		})
	}
}

func TestStore_IgnorePatterns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	s := NewStore(path, WithIgnorePatterns(regexp.MustCompile(`^secret`)))

	s.Push("secret token=abc")
	s.Push("visible")

	// in-memory sequence keeps both
	assert.Equal(t, []string{"secret token=abc", "visible"}, s.Lines())
	// persisted file only keeps the non-ignored line
	assert.Equal(t, []string{"visible"}, readFileLines(t, path))
}

func TestStore_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\n"), 0o600))

	s := NewStore(path)
	require.NoError(t, s.Load())

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 2, s.OriginalLines())
	assert.Equal(t, 0, s.SessionLineCount())

	s.Push("three")
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 2, s.OriginalLines())
	assert.Equal(t, 1, s.SessionLineCount())
}

func TestStore_Load_RejectsNULLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	require.NoError(t, os.WriteFile(path, []byte("good\nbad\x00line\nalso good\n"), 0o600))

	s := NewStore(path)
	require.NoError(t, s.Load())

	assert.Equal(t, []string{"good", "also good"}, s.Lines())
	assert.Equal(t, 2, s.OriginalLines())
}

func TestStore_Load_MissingFile(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope", "history"))
	require.NoError(t, s.Load())
	assert.Equal(t, 0, s.Len())
}

func TestStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	require.NoError(t, os.WriteFile(path, []byte("one\n"), 0o600))

	s := NewStore(path)
	require.NoError(t, s.Load())
	s.Push("two")

	s.Clear()

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.OriginalLines())
	assert.Equal(t, 0, s.SessionLineCount())
}

func TestStore_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "history")
	s := NewStore(path)

	s.Push("line")

	assert.Equal(t, []string{"line"}, readFileLines(t, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStore_PersistenceFailureDegradesToMemory(t *testing.T) {
	dir := t.TempDir()
	// a directory at the history path makes every append fail
	path := filepath.Join(dir, "history")
	require.NoError(t, os.Mkdir(path, 0o700))

	s := NewStore(path)
	s.Push("still recorded")
	s.Push("and this")

	assert.Equal(t, []string{"still recorded", "and this"}, s.Lines())
	assert.Equal(t, "", s.Path())
}

func TestStore_WithoutPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	s := NewStore(path, WithoutPersistence())

	s.Push("memory only")

	assert.Equal(t, []string{"memory only"}, s.Lines())
	assert.Nil(t, readFileLines(t, path))
}

func TestDefaultPath_Override(t *testing.T) {
	t.Setenv(EnvHistoryFile, "/tmp/custom_history")

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom_history", path)
}

func TestDefaultPath_XDGFallback(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvHistoryFile, "")
	t.Setenv("HOME", home)
	t.Setenv(EnvXDGDataHome, filepath.Join(home, "xdg-data"))

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "xdg-data", "conshell", "history"), path)
}

func TestDefaultPath_LegacyFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvHistoryFile, "")
	t.Setenv("HOME", home)
	legacy := filepath.Join(home, legacyBasename)
	require.NoError(t, os.WriteFile(legacy, nil, 0o600))

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, legacy, path)
}
