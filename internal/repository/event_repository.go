// Package repository contains data access logic for the event-lottery domain.
// This file defines persistence for events. All timestamp columns are stored
// as DATETIME in UTC; the MySQL driver is opened with parseTime=true so rows
// scan directly into time.Time.
package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/event-lottery/internal/model"
)

// EventRepo manages persistence for events.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo with the given DB handle.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying sql.DB. It allows callers to begin transactions
// spanning multiple repositories (joins, draws and decisions all touch both
// events and waitlist_entries).
func (r *EventRepo) DB() *sql.DB { return r.db }

const eventColumns = `id, organizer_id, title, description, capacity, enrolled,
	waitlist_capacity, sampling_count, requires_geolocation, join_code,
	registration_starts_at, registration_ends_at, starts_at, status,
	created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }, ev *model.Event) error {
	return row.Scan(
		&ev.ID, &ev.OrganizerID, &ev.Title, &ev.Description, &ev.Capacity,
		&ev.Enrolled, &ev.WaitlistCapacity, &ev.SamplingCount,
		&ev.RequiresGeolocation, &ev.JoinCode,
		&ev.RegistrationStartsAt, &ev.RegistrationEndsAt, &ev.StartsAt,
		&ev.Status, &ev.CreatedAt, &ev.UpdatedAt,
	)
}

// Create inserts a new event and populates the generated ID and DB-default
// fields (enrolled, status, timestamps) on the given struct.
func (r *EventRepo) Create(ctx context.Context, ev *model.Event) error {
	const q = `INSERT INTO events (organizer_id, title, description, capacity,
		waitlist_capacity, sampling_count, requires_geolocation, join_code,
		registration_starts_at, registration_ends_at, starts_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		ev.OrganizerID, ev.Title, ev.Description, ev.Capacity,
		ev.WaitlistCapacity, ev.SamplingCount, ev.RequiresGeolocation,
		ev.JoinCode, ev.RegistrationStartsAt, ev.RegistrationEndsAt, ev.StartsAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ev.ID = uint64(id)
	const sel = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	return scanEvent(r.db.QueryRowContext(ctx, sel, ev.ID), ev)
}

// GetByID returns a single event or ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	var ev model.Event
	if err := scanEvent(r.db.QueryRowContext(ctx, q, id), &ev); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &ev, nil
}

// GetByIDTx is GetByID inside a caller-owned transaction with a row lock.
// Draw and decision flows lock the event row first so concurrent commits
// serialize on it and the enrolled/capacity invariant cannot be torn.
func (r *EventRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = ? FOR UPDATE`
	var ev model.Event
	if err := scanEvent(tx.QueryRowContext(ctx, q, id), &ev); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &ev, nil
}

// GetByJoinCode resolves an event from the opaque code embedded in its QR
// poster. Codes are normalized to lower case before lookup.
func (r *EventRepo) GetByJoinCode(ctx context.Context, code string) (*model.Event, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	const q = `SELECT ` + eventColumns + ` FROM events WHERE join_code = ? LIMIT 1`
	var ev model.Event
	if err := scanEvent(r.db.QueryRowContext(ctx, q, code), &ev); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &ev, nil
}

// ListOpen returns all OPEN events ordered by start time ascending. Used by
// the public browse API; responses are sanitized in the handler.
func (r *EventRepo) ListOpen(ctx context.Context) ([]model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE status = 'OPEN' ORDER BY starts_at ASC`
	return r.list(ctx, q)
}

// ListByOrganizer returns every event owned by the given organizer, newest
// first.
func (r *EventRepo) ListByOrganizer(ctx context.Context, organizerID uint64) ([]model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE organizer_id = ? ORDER BY created_at DESC`
	return r.list(ctx, q, organizerID)
}

// ListAll returns every event regardless of status. Admin moderation only.
func (r *EventRepo) ListAll(ctx context.Context) ([]model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events ORDER BY created_at DESC`
	return r.list(ctx, q)
}

func (r *EventRepo) list(ctx context.Context, q string, args ...any) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Event, 0)
	for rows.Next() {
		var ev model.Event
		if err := scanEvent(rows, &ev); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update modifies the mutable fields of an event owned by organizerID.
// Capacity, the registration window and the sampling count may change;
// requires_geolocation is fixed at creation and deliberately absent here.
// Returns ErrEventNotFound when the event does not exist and ErrForbidden
// when it belongs to someone else.
func (r *EventRepo) Update(ctx context.Context, organizerID uint64, ev *model.Event) error {
	var actual uint64
	err := r.db.QueryRowContext(ctx, `SELECT organizer_id FROM events WHERE id = ?`, ev.ID).Scan(&actual)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrEventNotFound
		}
		return err
	}
	if actual != organizerID {
		return ErrForbidden
	}
	const q = `UPDATE events SET title = ?, description = ?, capacity = ?,
		waitlist_capacity = ?, sampling_count = ?,
		registration_starts_at = ?, registration_ends_at = ?, starts_at = ?, status = ?
		WHERE id = ?`
	_, err = r.db.ExecContext(ctx, q,
		ev.Title, ev.Description, ev.Capacity, ev.WaitlistCapacity,
		ev.SamplingCount, ev.RegistrationStartsAt, ev.RegistrationEndsAt,
		ev.StartsAt, ev.Status, ev.ID)
	return err
}

// Delete removes an event. Organizers may delete their own events;
// admins pass admin=true to bypass the ownership check. Waitlist entries
// and notifications cascade at the schema level.
func (r *EventRepo) Delete(ctx context.Context, eventID, callerID uint64, admin bool) error {
	if !admin {
		var actual uint64
		err := r.db.QueryRowContext(ctx, `SELECT organizer_id FROM events WHERE id = ?`, eventID).Scan(&actual)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrEventNotFound
			}
			return err
		}
		if actual != callerID {
			return ErrForbidden
		}
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, eventID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// AdjustEnrolledTx changes the enrolled count by delta inside the caller's
// transaction, guarded so enrolled never leaves [0, capacity]. A zero
// RowsAffected means the guard rejected the change: for +1 that is the
// "too late, event filled up" case and ErrCapacityExceeded is returned.
func (r *EventRepo) AdjustEnrolledTx(ctx context.Context, tx *sql.Tx, eventID uint64, delta int) error {
	const q = `UPDATE events SET enrolled = enrolled + ?
		WHERE id = ? AND enrolled + ? BETWEEN 0 AND capacity`
	res, err := tx.ExecContext(ctx, q, delta, eventID, delta)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCapacityExceeded
	}
	return nil
}
