package inputlock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithOwnership_GrantsAndReleases(t *testing.T) {
	scope := ForSession("grant-test")

	err := WithOwnership(scope, "owner-a", func() error {
		assert.Equal(t, "owner-a", Owner(scope))
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "", Owner(scope))
}

func TestWithOwnership_ReleasesOnFailure(t *testing.T) {
	scope := ForSession("failure-test")
	boom := errors.New("boom")

	err := WithOwnership(scope, "owner-a", func() error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "", Owner(scope))
}

func TestWithOwnership_ReentrantSameOwner(t *testing.T) {
	scope := ForSession("reentrant-test")

	err := WithOwnership(scope, "owner-a", func() error {
		return WithOwnership(scope, "owner-a", func() error {
			assert.Equal(t, "owner-a", Owner(scope))
			return nil
		})
	})

	require.NoError(t, err)
	assert.Equal(t, "", Owner(scope))
}

func TestWithOwnership_SerializesDistinctOwners(t *testing.T) {
	scope := ForSession("serialize-test")

	var mu sync.Mutex
	var active, maxActive int

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		owner := string(rune('a' + i))
		go func() {
			defer wg.Done()
			_ = WithOwnership(scope, owner, func() error {
				mu.Lock()
				active++
				if active > maxActive {
					maxActive = active
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive)
	assert.Equal(t, "", Owner(scope))
}

func TestGuardedRead_NormalCompletion(t *testing.T) {
	scope := ForSession("guarded-normal-test")

	err := GuardedRead(context.Background(), scope, "owner-a", func() error {
		assert.Equal(t, "owner-a", Owner(scope))
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "", Owner(scope))
}

func TestGuardedRead_BodyError(t *testing.T) {
	boom := errors.New("boom")

	err := GuardedRead(context.Background(), ForSession("guarded-error-test"), "owner-a", func() error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
}

func TestGuardedRead_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	blocked := make(chan struct{})
	defer close(blocked)

	go func() {
		<-blocked
		cancel()
	}()

	err := GuardedRead(ctx, ForSession("guarded-cancel-test"), "owner-a", func() error {
		blocked <- struct{}{}
		<-blocked
		return nil
	})

	assert.ErrorIs(t, err, ErrInterrupted)
}

func TestGuardedRead_HoldsOwnershipUntilBodyReturns(t *testing.T) {
	scope := ForSession("abandoned-read-test")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	blocked := make(chan struct{})

	err := GuardedRead(ctx, scope, "owner-a", func() error {
		<-blocked
		return nil
	})

	assert.ErrorIs(t, err, ErrInterrupted)
	// the abandoned in-flight read still excludes other owners
	assert.Equal(t, "owner-a", Owner(scope))

	close(blocked)
	assert.Eventually(t, func() bool { return Owner(scope) == "" },
		time.Second, time.Millisecond)
}

func TestWithCritical_SymmetricDepth(t *testing.T) {
	base := CriticalDepth()

	err := WithCritical(func() error {
		assert.Equal(t, base+1, CriticalDepth())
		return WithCritical(func() error {
			assert.Equal(t, base+2, CriticalDepth())
			return nil
		})
	})

	require.NoError(t, err)
	assert.Equal(t, base, CriticalDepth())
}

func TestWithCritical_DecrementsOnFailure(t *testing.T) {
	base := CriticalDepth()
	boom := errors.New("boom")

	err := WithCritical(func() error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, base, CriticalDepth())
}
