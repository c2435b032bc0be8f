// Package testutils provides deterministic generators for conshell
// testing. These keep test output stable while matching production
// identifier formats.
package testutils

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var (
	idCounter uint64
	idMutex   sync.Mutex
)

// GenerateUUID returns a deterministic UUID in test mode and a random one
// otherwise. Deterministic ids keep the v4 shape:
// 00000001-0000-4000-8000-000000000001, 00000002-..., etc.
func GenerateUUID(testMode bool) string {
	if testMode {
		idMutex.Lock()
		defer idMutex.Unlock()
		idCounter++
		return fmt.Sprintf("%08x-0000-4000-8000-%012x", idCounter, idCounter)
	}
	return uuid.New().String()
}

// ResetCounters rewinds the deterministic id sequence. Tests that assert
// on concrete ids call this first.
func ResetCounters() {
	idMutex.Lock()
	defer idMutex.Unlock()
	idCounter = 0
}
