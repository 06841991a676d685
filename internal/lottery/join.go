package lottery

import (
	"errors"
	"time"
)

// Join-gating errors.  These are precondition failures surfaced with a
// directive message; none of them should ever reach the waitlist store.
var (
	ErrRegistrationClosed = errors.New("registration is not open")
	ErrEventStarted       = errors.New("event has already started")
	ErrWaitlistFull       = errors.New("waiting list is full")
	ErrLocationRequired   = errors.New("a location fix is required to join this event")
)

// JoinGate carries everything needed to decide whether a join is permitted
// at a point in time.  Counts reflect the event's live state; the window
// fields come from the event definition.
type JoinGate struct {
	RegistrationStart   time.Time
	RegistrationEnd     time.Time
	EventStart          time.Time
	WaitingCount        int
	WaitlistCapacity    int
	RequiresGeolocation bool
}

// Check validates a join attempt at time now with an optional location fix.
// The rules mirror the enablement logic of the entrant-facing UI and are
// re-run at commit time, since the event may have filled or closed between
// render and tap:
//
//   - registration must be open (start <= now < end),
//   - the event must not have started,
//   - the waiting queue must have room,
//   - when the event requires geolocation, both coordinates are mandatory;
//     a missing fix blocks the join entirely rather than degrading silently.
func (g JoinGate) Check(now time.Time, lat, lon *float64) error {
	if now.Before(g.RegistrationStart) || !now.Before(g.RegistrationEnd) {
		return ErrRegistrationClosed
	}
	if !now.Before(g.EventStart) {
		return ErrEventStarted
	}
	if g.WaitlistCapacity > 0 && g.WaitingCount >= g.WaitlistCapacity {
		return ErrWaitlistFull
	}
	if g.RequiresGeolocation && (lat == nil || lon == nil) {
		return ErrLocationRequired
	}
	return nil
}
