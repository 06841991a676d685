package lottery

// Badge is the display tuple clients render for a waitlist status: a short
// label, a color token and an icon name.  Colors and icons are symbolic and
// resolved by the client theme.
type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// badges is the exhaustive mapping over KnownStatuses.  A status missing from
// this table falls back to unknownBadge; it must never panic, because the
// status set is allowed to grow ahead of deployed clients.
var badges = map[Status]Badge{
	StatusWaiting:   {Label: "Waiting", Color: "neutral", Icon: "hourglass"},
	StatusInvited:   {Label: "Invited", Color: "info", Icon: "mail"},
	StatusSelected:  {Label: "Selected", Color: "info", Icon: "star"},
	StatusAccepted:  {Label: "Accepted", Color: "success", Icon: "check"},
	StatusDeclined:  {Label: "Declined", Color: "danger", Icon: "close"},
	StatusCancelled: {Label: "Cancelled", Color: "muted", Icon: "minus"},
}

var unknownBadge = Badge{Label: "Unknown", Color: "muted", Icon: "help"}

// BadgeFor returns the display badge for a status.  Unknown statuses map to
// an explicit "Unknown" badge rather than an error.
func BadgeFor(s Status) Badge {
	if b, ok := badges[s]; ok {
		return b
	}
	return unknownBadge
}
