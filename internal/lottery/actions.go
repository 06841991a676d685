package lottery

// NotificationActions is the call-to-action set a notification card may show.
// The visible set must always match the entrant's live status for the
// referenced event: accept/decline only while a decision is pending, event
// details regardless of status.  Processing reflects an in-flight accept or
// decline for the notification and disables both decision buttons.
type NotificationActions struct {
	ShowEventDetails bool `json:"show_event_details"`
	ShowAccept       bool `json:"show_accept"`
	ShowDecline      bool `json:"show_decline"`
	Processing       bool `json:"processing"`
}

// ActionsFor derives the permitted action set from the entrant's current
// waitlist status and whether an operation for this notification is already
// in flight.
func ActionsFor(s Status, processing bool) NotificationActions {
	decidable := Pending(s) && !processing
	return NotificationActions{
		ShowEventDetails: true,
		ShowAccept:       decidable,
		ShowDecline:      decidable,
		Processing:       processing,
	}
}
