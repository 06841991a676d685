package model

import (
	"time"

	"github.com/iliyamo/event-lottery/internal/lottery"
)

// WaitlistEntry records one entrant's relationship to one event's waitlist.
// It is created when the entrant joins (status WAITING, position = current
// queue length + 1), mutated by draws and by entrant decisions, and becomes
// invisible to "my events" aggregations once it reaches a terminal status.
//
// Latitude/Longitude are captured exactly once at join time, and only when
// the event requires geolocation.  They are never updated afterwards.
type WaitlistEntry struct {
	ID        uint64         // waitlist_entries.id
	EventID   uint64         // waitlist_entries.event_id
	UserID    uint64         // waitlist_entries.user_id
	UserName  string         // waitlist_entries.user_name (denormalized display name)
	Position  int            // waitlist_entries.position, 1-based rank in the queue
	Status    lottery.Status // waitlist_entries.status
	Latitude  *float64       // waitlist_entries.latitude (nullable)
	Longitude *float64       // waitlist_entries.longitude (nullable)
	JoinedAt  time.Time      // waitlist_entries.joined_at
	UpdatedAt time.Time      // waitlist_entries.updated_at
}
