package lottery

import "math/rand"

// PickWinners selects n entry IDs uniformly at random from pool without
// replacement.  The input slice is not modified.  When n exceeds the pool
// size the whole pool is returned (shuffled); a non-positive n yields an
// empty selection.  Callers are expected to have already validated n via
// ValidateDrawSize, so the clamping here is a safety net, not an API.
func PickWinners(pool []uint64, n int) []uint64 {
	if n <= 0 || len(pool) == 0 {
		return []uint64{}
	}
	shuffled := make([]uint64, len(pool))
	copy(shuffled, pool)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
