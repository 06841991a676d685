package lottery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickWinners(t *testing.T) {
	pool := []uint64{1, 2, 3, 4, 5, 6, 7, 8}

	picked := PickWinners(pool, 3)
	require.Len(t, picked, 3)

	// every winner comes from the pool and appears at most once
	seen := make(map[uint64]bool)
	member := make(map[uint64]bool)
	for _, id := range pool {
		member[id] = true
	}
	for _, id := range picked {
		assert.True(t, member[id], "winner %d not in pool", id)
		assert.False(t, seen[id], "winner %d drawn twice", id)
		seen[id] = true
	}

	// the input pool is left untouched
	assert.Equal(t, []uint64{1, 2, 3, 4, 5, 6, 7, 8}, pool)
}

func TestPickWinners_Bounds(t *testing.T) {
	pool := []uint64{10, 20}

	assert.Empty(t, PickWinners(pool, 0))
	assert.Empty(t, PickWinners(pool, -1))
	assert.Empty(t, PickWinners(nil, 3))

	// asking for more than the pool returns the whole pool
	all := PickWinners(pool, 5)
	assert.ElementsMatch(t, pool, all)
}

func TestPickWinners_EventuallyCoversPool(t *testing.T) {
	// with enough draws every member of the pool should be selected at
	// least once; a deterministic prefix pick would fail this quickly
	pool := []uint64{1, 2, 3, 4}
	hit := make(map[uint64]int)
	for i := 0; i < 200; i++ {
		for _, id := range PickWinners(pool, 2) {
			hit[id]++
		}
	}
	for _, id := range pool {
		assert.Greater(t, hit[id], 0, "id %d never drawn in 200 rounds", id)
	}
}
