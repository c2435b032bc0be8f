// Package inputlock serializes the console's blocking line reads across
// goroutines and makes them interruptible. A lock here is an ownership
// record, not plain mutual exclusion: the same owner may re-acquire its
// lock, and release is guaranteed on every exit path.
package inputlock

import (
	"context"
	"errors"
	"sync"
)

// ErrInterrupted is returned when a guarded read is aborted by
// cancellation rather than by the body completing.
var ErrInterrupted = errors.New("input read interrupted")

// Scope identifies one lock: either all sessions sharing an input source,
// or a single session.
type Scope string

// Global is the scope shared by every session reading the same source.
const Global Scope = "all"

// ForSession returns a scope private to the session with the given id.
func ForSession(id string) Scope {
	return Scope("session:" + id)
}

// lock tracks which logical owner currently holds the right to perform a
// blocking read on one scope.
type lock struct {
	mu    sync.Mutex
	cond  *sync.Cond
	owner string
	depth int
}

var (
	locksMu sync.Mutex
	locks   = make(map[Scope]*lock)
)

func lockFor(scope Scope) *lock {
	locksMu.Lock()
	defer locksMu.Unlock()
	l, ok := locks[scope]
	if !ok {
		l = &lock{}
		l.cond = sync.NewCond(&l.mu)
		locks[scope] = l
	}
	return l
}

// WithOwnership grants owner the right to perform the upcoming blocking
// read on scope, runs body, and releases ownership on every exit path.
// Re-entrant acquisition by the same owner is permitted; nested
// acquisitions collapse into one.
func WithOwnership(scope Scope, owner string, body func() error) error {
	l := lockFor(scope)
	l.acquire(owner)
	defer l.release()
	return body()
}

func (l *lock) acquire(owner string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for l.depth > 0 && l.owner != owner {
		l.cond.Wait()
	}
	l.owner = owner
	l.depth++
}

func (l *lock) release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.depth--
	if l.depth == 0 {
		l.owner = ""
		l.cond.Signal()
	}
}

// Owner reports the current owner of scope, empty when the lock is free.
func Owner(scope Scope) string {
	l := lockFor(scope)
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.owner
}

// GuardedRead acquires ownership of scope for owner, runs body, and makes
// the wait interruptible: cancellation of ctx surfaces as ErrInterrupted.
// Ownership is released only when body actually returns, never when the
// caller abandons the wait, so an in-flight blocking read keeps excluding
// other owners from the shared source until it finishes.
func GuardedRead(ctx context.Context, scope Scope, owner string, body func() error) error {
	l := lockFor(scope)
	l.acquire(owner)
	done := make(chan error, 1)
	go func() {
		err := body()
		l.release()
		done <- err
	}()
	if ctx == nil {
		return <-done
	}
	select {
	case err := <-done:
		if errors.Is(err, context.Canceled) {
			return ErrInterrupted
		}
		return err
	case <-ctx.Done():
		return ErrInterrupted
	}
}
