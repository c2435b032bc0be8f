package inputlock

import (
	"sync/atomic"
)

// criticalDepth is the process-wide re-entrancy guard counter. It is a
// depth count, not a mutual-exclusion lock: the console increments it
// around evaluation and result display, and refuses to start a nested
// session while it is nonzero.
var criticalDepth atomic.Int64

// WithCritical runs body inside the critical section. The depth counter
// is decremented even when body fails.
func WithCritical(body func() error) error {
	criticalDepth.Add(1)
	defer criticalDepth.Add(-1)
	return body()
}

// CriticalDepth returns the current critical section depth.
func CriticalDepth() int64 {
	return criticalDepth.Load()
}
