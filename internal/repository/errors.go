// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios. For example,
// ErrForbidden indicates that the current user is not authorized to perform
// an operation on a resource owned by someone else, while ErrStaleState
// signals that the row changed between render and commit and the caller
// should re-read before retrying.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an HTTP
// 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrStaleState is returned by compare-and-set status updates when the row
// is no longer in the expected state. The caller saw an outdated snapshot;
// handlers translate this into an HTTP 409 response.
var ErrStaleState = errors.New("state changed since last read")

// ErrEventNotFound indicates that an event was not located in the DB.
var ErrEventNotFound = errors.New("event not found")

// ErrEntryNotFound indicates that a waitlist entry was not located in the DB.
var ErrEntryNotFound = errors.New("waitlist entry not found")

// ErrNotificationNotFound indicates that a notification was not located in
// the DB or belongs to another user.
var ErrNotificationNotFound = errors.New("notification not found")

// ErrAlreadyOnWaitlist is returned when a user who already has a live entry
// for an event attempts to join it again.
var ErrAlreadyOnWaitlist = errors.New("already on the waitlist")

// ErrCapacityExceeded is returned by guarded enrolled-count updates when the
// adjustment would push enrolled outside [0, capacity]. For an accept this
// is the "too late" signal: the event filled while the entrant was deciding.
var ErrCapacityExceeded = errors.New("event capacity exceeded")
