package lottery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDrawEligibility(t *testing.T) {
	cases := []struct {
		name       string
		waiting    int
		capacity   int
		enrolled   int
		wantSpots  int
		wantMax    int
		wantCanRun bool
		wantReason string
	}{
		{"room and queue", 5, 10, 7, 3, 3, true, ""},
		{"queue shorter than spots", 2, 10, 3, 7, 2, true, ""},
		{"nobody waiting", 0, 10, 0, 10, 0, false, "no one is waiting"},
		{"event full", 5, 10, 10, 0, 0, false, "event is full"},
		{"full beats empty queue", 0, 10, 10, 0, 0, false, "event is full"},
		{"zero capacity", 3, 0, 0, 0, 0, false, "event is full"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := ComputeDrawEligibility(tc.waiting, tc.capacity, tc.enrolled)
			assert.Equal(t, tc.wantSpots, e.AvailableSpots)
			assert.Equal(t, tc.wantMax, e.MaxDrawSize)
			assert.Equal(t, tc.wantCanRun, e.CanRun)
			assert.Equal(t, tc.wantReason, e.Reason)
		})
	}
}

func TestComputeDrawEligibility_SpotsNeverNegative(t *testing.T) {
	// enrolled above capacity should never surface a negative spot count.
	e := ComputeDrawEligibility(4, 10, 12)
	assert.Equal(t, 0, e.AvailableSpots)
	assert.Equal(t, 0, e.MaxDrawSize)
	assert.False(t, e.CanRun)

	for enrolled := 0; enrolled <= 10; enrolled++ {
		e := ComputeDrawEligibility(3, 10, enrolled)
		assert.Equal(t, 10-enrolled, e.AvailableSpots, "enrolled=%d", enrolled)
		assert.GreaterOrEqual(t, e.AvailableSpots, 0)
	}
}

func TestValidateDrawSize(t *testing.T) {
	e := ComputeDrawEligibility(5, 10, 7) // maxDrawSize = 3
	require.True(t, e.CanRun)
	require.Equal(t, 3, e.MaxDrawSize)

	assert.NoError(t, ValidateDrawSize(1, e))
	// boundary: requested == max must be accepted, not rejected
	assert.NoError(t, ValidateDrawSize(3, e))

	assert.Error(t, ValidateDrawSize(0, e))
	assert.Error(t, ValidateDrawSize(-1, e))
	err := ValidateDrawSize(4, e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between 1 and 3")
}

func TestValidateDrawSize_Blocked(t *testing.T) {
	full := ComputeDrawEligibility(5, 10, 10)
	assert.ErrorIs(t, ValidateDrawSize(1, full), ErrEventFull)

	empty := ComputeDrawEligibility(0, 10, 0)
	assert.ErrorIs(t, ValidateDrawSize(1, empty), ErrNothingWaiting)
}

func TestCurrentWave(t *testing.T) {
	assert.Equal(t, 1, CurrentWave(0, 5))
	assert.Equal(t, 1, CurrentWave(4, 5))
	assert.Equal(t, 2, CurrentWave(5, 5))
	assert.Equal(t, 3, CurrentWave(12, 5))
	// degenerate sampling count still yields a monotonic wave number
	assert.Equal(t, 4, CurrentWave(3, 0))
}
