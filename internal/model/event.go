package model

import "time"

// Event is the lottery container: a capacity-limited happening whose spots
// are handed out by random draws over a waiting list rather than first come
// first served.
//
// Fields:
//  ID                  – primary key identifier.
//  OrganizerID         – user who created and runs the event.
//  Title, Description  – display information.
//  Capacity            – maximum number of enrolled (accepted) entrants.
//  Enrolled            – current accepted count; 0 <= Enrolled <= Capacity
//                        always holds, and a draw must never select more
//                        entrants than Capacity - Enrolled allows.
//  WaitlistCapacity    – maximum size of the waiting queue (0 = unbounded),
//                        distinct from Capacity.
//  SamplingCount       – default number of entrants drawn per wave.
//  RequiresGeolocation – fixed at creation; when true a join without a
//                        location fix is rejected outright.
//  JoinCode            – opaque code embedded in the event's QR poster;
//                        scanning it joins by code.
//  RegistrationStartsAt / RegistrationEndsAt – window during which joining
//                        the waitlist is permitted.
//  StartsAt            – when the event itself begins; joining is blocked
//                        from this point regardless of the window.
//  Status              – OPEN, CLOSED or CANCELLED.
type Event struct {
	ID                   uint64    // events.id
	OrganizerID          uint64    // events.organizer_id
	Title                string    // events.title
	Description          string    // events.description
	Capacity             int       // events.capacity
	Enrolled             int       // events.enrolled
	WaitlistCapacity     int       // events.waitlist_capacity
	SamplingCount        int       // events.sampling_count
	RequiresGeolocation  bool      // events.requires_geolocation
	JoinCode             string    // events.join_code
	RegistrationStartsAt time.Time // events.registration_starts_at
	RegistrationEndsAt   time.Time // events.registration_ends_at
	StartsAt             time.Time // events.starts_at
	Status               string    // events.status
	CreatedAt            time.Time // events.created_at
	UpdatedAt            time.Time // events.updated_at
}
