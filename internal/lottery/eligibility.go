package lottery

import (
	"errors"
	"fmt"
)

// Draw-blocking reasons.  The two failure modes call for different operator
// remediations ("free up or add capacity" vs "get more people on the list"),
// so they are distinct sentinels rather than one generic error.
var (
	ErrEventFull      = errors.New("event is full")
	ErrNothingWaiting = errors.New("no one is waiting")
)

// DrawEligibility summarizes whether an organizer can run a draw right now
// and how large it may be.  MaxDrawSize is the bound shown to the organizer
// as "Max: N"; client-side and server-side validation both use it.
type DrawEligibility struct {
	AvailableSpots int    `json:"available_spots"`
	MaxDrawSize    int    `json:"max_draw_size"`
	CanRun         bool   `json:"can_run"`
	Reason         string `json:"reason,omitempty"`
}

// ComputeDrawEligibility derives the draw bounds from the current counts.
//
//	availableSpots = max(0, capacity - enrolled)
//	maxDrawSize    = min(availableSpots, waitingCount)
//	canRun         = waitingCount > 0 && availableSpots > 0
//
// When the draw cannot run, Reason carries the human-readable explanation,
// distinguishing a full event from an empty queue.
func ComputeDrawEligibility(waitingCount, capacity, enrolled int) DrawEligibility {
	spots := capacity - enrolled
	if spots < 0 {
		spots = 0
	}
	e := DrawEligibility{AvailableSpots: spots}
	e.MaxDrawSize = spots
	if waitingCount < e.MaxDrawSize {
		e.MaxDrawSize = waitingCount
	}
	switch {
	case spots == 0:
		e.Reason = ErrEventFull.Error()
	case waitingCount == 0:
		e.Reason = ErrNothingWaiting.Error()
	default:
		e.CanRun = true
	}
	return e
}

// ValidateDrawSize checks a requested draw size against the computed bounds.
// The size must be a positive integer no greater than MaxDrawSize; the upper
// boundary itself is accepted.  Violations are local validation errors and
// must be rejected before any state transition is attempted.
func ValidateDrawSize(requested int, e DrawEligibility) error {
	if !e.CanRun {
		if e.AvailableSpots == 0 {
			return ErrEventFull
		}
		return ErrNothingWaiting
	}
	if requested < 1 || requested > e.MaxDrawSize {
		return fmt.Errorf("draw size must be between 1 and %d", e.MaxDrawSize)
	}
	return nil
}

// CurrentWave numbers the draw about to run.  Waves are derived, not stored:
// with samplingCount entrants per wave, having already chosen chosenCount
// entrants puts the next draw in wave floor(chosenCount/samplingCount)+1.
// A non-positive samplingCount degenerates to counting every draw as its own
// wave offset from the chosen total.
func CurrentWave(chosenCount, samplingCount int) int {
	if samplingCount <= 0 {
		return chosenCount + 1
	}
	return chosenCount/samplingCount + 1
}
