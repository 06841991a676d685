// Package lottery implements the waitlist lifecycle for capacity-limited
// events.  An entrant joins an event's waiting queue, an organizer runs a
// random draw that moves a bounded number of waiting entrants into a
// pending (selected) state, and each selected entrant then accepts or
// declines their spot.  Everything in this package is pure computation;
// persistence and transport live in the repository and handler layers.
package lottery

import "errors"

// Status is the lifecycle state of a waitlist entry.  The set is allowed to
// grow over time, so consumers must treat unknown values defensively (see
// BadgeFor) rather than assuming exhaustiveness.
type Status string

const (
	StatusWaiting   Status = "WAITING"   // in the queue, not yet drawn
	StatusInvited   Status = "INVITED"   // drawn, decision pending (legacy alias of SELECTED)
	StatusSelected  Status = "SELECTED"  // drawn, decision pending
	StatusAccepted  Status = "ACCEPTED"  // entrant confirmed the spot, consumes capacity
	StatusDeclined  Status = "DECLINED"  // entrant turned the spot down (terminal)
	StatusCancelled Status = "CANCELLED" // entrant withdrew voluntarily (terminal)
)

// KnownStatuses lists every status this package understands, in lifecycle
// order.  Tests assert that the badge table covers exactly this set.
var KnownStatuses = []Status{
	StatusWaiting,
	StatusInvited,
	StatusSelected,
	StatusAccepted,
	StatusDeclined,
	StatusCancelled,
}

// Transition errors.  Handlers translate these into 409 responses so a stale
// client (rendered before the state changed underneath it) gets a clear
// signal instead of a silent no-op.
var (
	// ErrNotPending is returned when accept or decline is attempted while
	// the entry is not in a drawn, decision-pending state.
	ErrNotPending = errors.New("no pending invitation for this entry")
	// ErrNotLeavable is returned when leave is attempted from a terminal state.
	ErrNotLeavable = errors.New("entry already left the waitlist")
	// ErrNotAccepted is returned when an organizer removal targets an entry
	// that is not currently ACCEPTED.
	ErrNotAccepted = errors.New("entry is not accepted")
)

// Known reports whether s is one of the statuses this package understands.
func Known(s Status) bool {
	for _, k := range KnownStatuses {
		if s == k {
			return true
		}
	}
	return false
}

// Pending reports whether the entrant has been drawn and owes a decision.
// INVITED and SELECTED behave identically everywhere; both are kept because
// stored data may carry either spelling.
func Pending(s Status) bool {
	return s == StatusInvited || s == StatusSelected
}

// Terminal reports whether the entry has permanently left the lifecycle.
// Terminal entries are excluded from "my events" style aggregations.
func Terminal(s Status) bool {
	return s == StatusDeclined || s == StatusCancelled
}

// Active is the complement of Terminal over the known set.  Unknown statuses
// are treated as active so new states added later are not silently hidden.
func Active(s Status) bool {
	return !Terminal(s)
}

// Accept validates the entrant-accepts transition and returns the new status.
// Only a pending entry may be accepted; anything else is stale.
func Accept(s Status) (Status, error) {
	if !Pending(s) {
		return s, ErrNotPending
	}
	return StatusAccepted, nil
}

// Decline validates the entrant-declines transition and returns the new status.
func Decline(s Status) (Status, error) {
	if !Pending(s) {
		return s, ErrNotPending
	}
	return StatusDeclined, nil
}

// Leave validates voluntary withdrawal.  It is permitted from WAITING,
// INVITED, SELECTED and ACCEPTED.  The second return value reports whether
// the withdrawal frees a capacity slot (true only when leaving ACCEPTED).
func Leave(s Status) (Status, bool, error) {
	switch s {
	case StatusWaiting, StatusInvited, StatusSelected:
		return StatusCancelled, false, nil
	case StatusAccepted:
		return StatusCancelled, true, nil
	default:
		return s, false, ErrNotLeavable
	}
}

// CanRemove validates the organizer-initiated removal of an accepted entrant.
// Removal frees a capacity slot but never auto-triggers a backfill draw; the
// organizer runs another draw explicitly to fill the gap.
func CanRemove(s Status) error {
	if s != StatusAccepted {
		return ErrNotAccepted
	}
	return nil
}
