package utils

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlightGuard_Basics(t *testing.T) {
	g := NewFlightGuard()

	require.True(t, g.TryAcquire("n1"))
	assert.True(t, g.Held("n1"))

	// second acquire for the same key is suppressed, not queued
	assert.False(t, g.TryAcquire("n1"))

	// other keys proceed independently
	assert.True(t, g.TryAcquire("n2"))

	g.Release("n1")
	assert.False(t, g.Held("n1"))
	assert.True(t, g.TryAcquire("n1"))

	// releasing an unheld key is harmless
	g.Release("never-acquired")
}

func TestFlightGuard_ExactlyOneWinnerPerKey(t *testing.T) {
	g := NewFlightGuard()

	const attempts = 64
	var committed int64
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if !g.TryAcquire("notif-42") {
				return
			}
			// holder commits exactly once; deliberately no Release so every
			// concurrent attempt races against a still-held key
			atomic.AddInt64(&committed, 1)
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int64(1), committed, "exactly one accept may commit while the key is held")
}

func TestFlightGuard_ReleaseAllowsRetry(t *testing.T) {
	g := NewFlightGuard()

	// operation fails; the guard must still release so the user can re-tap
	require.True(t, g.TryAcquire("n9"))
	func() {
		defer g.Release("n9")
		// simulated failure path
	}()
	assert.True(t, g.TryAcquire("n9"))
}
