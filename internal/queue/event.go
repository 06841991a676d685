// Package queue defines message payloads exchanged over the message broker.
package queue

import "time"

// EntrantSelectedEvent is published once per winner when a draw commits.
// It carries enough information for downstream consumers to write the
// entrant's notification and an audit line without querying the primary
// database.
type EntrantSelectedEvent struct {
	EventID    uint64    `json:"event_id"`
	EventTitle string    `json:"event_title"`
	EntryID    uint64    `json:"entry_id"`
	UserID     uint64    `json:"user_id"`
	UserName   string    `json:"user_name"`
	Wave       int       `json:"wave"`
	DrawSize   int       `json:"draw_size"`
	SelectedAt time.Time `json:"selected_at"`
}

// EntrantRemovedEvent is published when an organizer removes an accepted
// entrant, freeing a capacity slot. Consumers notify the remaining waiting
// entrants that a replacement draw may follow.
type EntrantRemovedEvent struct {
	EventID    uint64    `json:"event_id"`
	EventTitle string    `json:"event_title"`
	EntryID    uint64    `json:"entry_id"`
	UserID     uint64    `json:"user_id"`
	UserName   string    `json:"user_name"`
	RemovedAt  time.Time `json:"removed_at"`
}
