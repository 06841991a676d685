package model

import "time"

// Notification kinds.  Each kind corresponds to one lifecycle transition the
// entrant should hear about.  The set mirrors the transitions themselves:
// selection, non-selection after a wave, generic waitlist updates, decision
// deadlines, a freed spot being re-drawn, and the too-late terminal notice.
const (
	NotificationSelected    = "SELECTED"
	NotificationNotSelected = "NOT_SELECTED"
	NotificationWaitlist    = "WAITLIST"
	NotificationDeadline    = "DEADLINE"
	NotificationReplacement = "REPLACEMENT"
	NotificationTooLate     = "TOO_LATE"
)

// Notification read states.
const (
	NotificationUnread = "UNREAD"
	NotificationRead   = "READ"
)

// Notification is a user-facing record of a lifecycle transition.  The
// action buttons a client may render for it are not stored; they are derived
// from the entrant's live waitlist status (lottery.ActionsFor) so the card
// can never offer a stale accept/decline.
type Notification struct {
	ID        string    // notifications.id (uuid)
	UserID    uint64    // notifications.user_id
	EventID   uint64    // notifications.event_id
	EntryID   uint64    // notifications.entry_id
	Kind      string    // notifications.kind
	Title     string    // notifications.title
	Body      string    // notifications.body
	Status    string    // notifications.status (UNREAD/READ)
	CreatedAt time.Time // notifications.created_at
}
