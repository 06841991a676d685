package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/event-lottery/internal/lottery"
	"github.com/iliyamo/event-lottery/internal/model"
)

// WaitlistRepo provides persistence for waitlist entries. Every mutation
// that participates in the draw/decision lifecycle runs inside a caller
// supplied transaction together with an event-row lock (EventRepo.GetByIDTx),
// so the join/draw/accept flows re-validate state at commit time instead of
// trusting what was rendered.
type WaitlistRepo struct {
	db *sql.DB
}

// NewWaitlistRepo constructs a WaitlistRepo bound to the given database.
func NewWaitlistRepo(db *sql.DB) *WaitlistRepo { return &WaitlistRepo{db: db} }

const entryColumns = `id, event_id, user_id, user_name, position, status,
	latitude, longitude, joined_at, updated_at`

func scanEntry(row interface{ Scan(...any) error }, e *model.WaitlistEntry) error {
	var lat, lon sql.NullFloat64
	var status string
	if err := row.Scan(&e.ID, &e.EventID, &e.UserID, &e.UserName, &e.Position,
		&status, &lat, &lon, &e.JoinedAt, &e.UpdatedAt); err != nil {
		return err
	}
	e.Status = lottery.Status(status)
	if lat.Valid {
		v := lat.Float64
		e.Latitude = &v
	}
	if lon.Valid {
		v := lon.Float64
		e.Longitude = &v
	}
	return nil
}

// CountWaitingTx returns the number of WAITING entries for an event inside
// the caller's transaction. Used both by the join gate (queue length vs
// waitlist capacity) and by draw eligibility.
func (r *WaitlistRepo) CountWaitingTx(ctx context.Context, tx *sql.Tx, eventID uint64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM waitlist_entries WHERE event_id = ? AND status = 'WAITING'`,
		eventID).Scan(&n)
	return n, err
}

// CountChosenTx returns how many entries have ever been drawn for an event
// (SELECTED, INVITED or ACCEPTED). The wave number is derived from it.
func (r *WaitlistRepo) CountChosenTx(ctx context.Context, tx *sql.Tx, eventID uint64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM waitlist_entries
		 WHERE event_id = ? AND status IN ('SELECTED','INVITED','ACCEPTED')`,
		eventID).Scan(&n)
	return n, err
}

// CountByStatus returns a per-status breakdown for an event. The organizer
// entrants screen shows these alongside the eligibility block.
func (r *WaitlistRepo) CountByStatus(ctx context.Context, eventID uint64) (map[lottery.Status]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM waitlist_entries WHERE event_id = ? GROUP BY status`,
		eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[lottery.Status]int)
	for rows.Next() {
		var s string
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		counts[lottery.Status(s)] = n
	}
	return counts, rows.Err()
}

// JoinTx inserts a new WAITING entry inside the caller's transaction. The
// position is assigned as the current waiting-queue length + 1. A user with
// a live (non-terminal) entry for the event cannot join again; terminal
// entries do not block a re-join. The generated ID, position and timestamps
// are populated on the given entry.
func (r *WaitlistRepo) JoinTx(ctx context.Context, tx *sql.Tx, e *model.WaitlistEntry) error {
	var existing uint64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM waitlist_entries
		 WHERE event_id = ? AND user_id = ? AND status NOT IN ('DECLINED','CANCELLED')
		 LIMIT 1 FOR UPDATE`,
		e.EventID, e.UserID).Scan(&existing)
	if err == nil {
		return ErrAlreadyOnWaitlist
	}
	if err != sql.ErrNoRows {
		return err
	}

	waiting, err := r.CountWaitingTx(ctx, tx, e.EventID)
	if err != nil {
		return err
	}
	e.Position = waiting + 1
	e.Status = lottery.StatusWaiting

	res, err := tx.ExecContext(ctx,
		`INSERT INTO waitlist_entries (event_id, user_id, user_name, position, status, latitude, longitude)
		 VALUES (?, ?, ?, ?, 'WAITING', ?, ?)`,
		e.EventID, e.UserID, e.UserName, e.Position, e.Latitude, e.Longitude)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	const sel = `SELECT ` + entryColumns + ` FROM waitlist_entries WHERE id = ?`
	return scanEntry(tx.QueryRowContext(ctx, sel, e.ID), e)
}

// GetByID returns a single entry or ErrEntryNotFound.
func (r *WaitlistRepo) GetByID(ctx context.Context, id uint64) (*model.WaitlistEntry, error) {
	const q = `SELECT ` + entryColumns + ` FROM waitlist_entries WHERE id = ?`
	var e model.WaitlistEntry
	if err := scanEntry(r.db.QueryRowContext(ctx, q, id), &e); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &e, nil
}

// GetByIDTx is GetByID with a row lock inside the caller's transaction.
func (r *WaitlistRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.WaitlistEntry, error) {
	const q = `SELECT ` + entryColumns + ` FROM waitlist_entries WHERE id = ? FOR UPDATE`
	var e model.WaitlistEntry
	if err := scanEntry(tx.QueryRowContext(ctx, q, id), &e); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &e, nil
}

// GetLiveByEventAndUser returns the user's non-terminal entry for an event,
// or ErrEntryNotFound when none exists.
func (r *WaitlistRepo) GetLiveByEventAndUser(ctx context.Context, eventID, userID uint64) (*model.WaitlistEntry, error) {
	const q = `SELECT ` + entryColumns + ` FROM waitlist_entries
		WHERE event_id = ? AND user_id = ? AND status NOT IN ('DECLINED','CANCELLED')
		LIMIT 1`
	var e model.WaitlistEntry
	if err := scanEntry(r.db.QueryRowContext(ctx, q, eventID, userID), &e); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &e, nil
}

// ListByEvent returns the entries for an event ordered by queue position.
// An empty status filters nothing; otherwise only entries in that status
// are returned.
func (r *WaitlistRepo) ListByEvent(ctx context.Context, eventID uint64, status lottery.Status) ([]model.WaitlistEntry, error) {
	q := `SELECT ` + entryColumns + ` FROM waitlist_entries WHERE event_id = ?`
	args := []any{eventID}
	if status != "" {
		q += ` AND status = ?`
		args = append(args, string(status))
	}
	q += ` ORDER BY position ASC, id ASC`
	return r.list(ctx, q, args...)
}

// ListChosen returns the SELECTED/INVITED/ACCEPTED entries for an event in
// queue order. Feeds the CSV export of chosen entrants.
func (r *WaitlistRepo) ListChosen(ctx context.Context, eventID uint64) ([]model.WaitlistEntry, error) {
	const q = `SELECT ` + entryColumns + ` FROM waitlist_entries
		WHERE event_id = ? AND status IN ('SELECTED','INVITED','ACCEPTED')
		ORDER BY position ASC, id ASC`
	return r.list(ctx, q, eventID)
}

// ListActiveByUser returns the user's non-terminal entries across all
// events, newest join first. CANCELLED and DECLINED entries are excluded so
// "my events" views never resurrect them.
func (r *WaitlistRepo) ListActiveByUser(ctx context.Context, userID uint64) ([]model.WaitlistEntry, error) {
	const q = `SELECT ` + entryColumns + ` FROM waitlist_entries
		WHERE user_id = ? AND status NOT IN ('DECLINED','CANCELLED')
		ORDER BY joined_at DESC`
	return r.list(ctx, q, userID)
}

// ListPendingDecisionsBefore returns entries that have sat in a pending
// decision state (SELECTED or INVITED) since before the cutoff. Feeds the
// decision deadline reminder sweep.
func (r *WaitlistRepo) ListPendingDecisionsBefore(ctx context.Context, cutoff time.Time) ([]model.WaitlistEntry, error) {
	const q = `SELECT ` + entryColumns + ` FROM waitlist_entries
		WHERE status IN ('SELECTED','INVITED') AND updated_at <= ?
		ORDER BY updated_at ASC`
	return r.list(ctx, q, cutoff)
}

func (r *WaitlistRepo) list(ctx context.Context, q string, args ...any) ([]model.WaitlistEntry, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.WaitlistEntry, 0)
	for rows.Next() {
		var e model.WaitlistEntry
		if err := scanEntry(rows, &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListWaitingIDsTx returns the IDs of all WAITING entries for an event,
// locked for the duration of the transaction so a concurrent draw or leave
// cannot mutate the pool mid-selection.
func (r *WaitlistRepo) ListWaitingIDsTx(ctx context.Context, tx *sql.Tx, eventID uint64) ([]uint64, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM waitlist_entries WHERE event_id = ? AND status = 'WAITING' FOR UPDATE`,
		eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkSelectedTx transitions the given WAITING entries to SELECTED inside
// the caller's transaction. The WHERE clause re-checks the WAITING status so
// an entry that left between listing and update is skipped rather than
// clobbered; the number of rows actually transitioned is returned.
func (r *WaitlistRepo) MarkSelectedTx(ctx context.Context, tx *sql.Tx, ids []uint64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q := `UPDATE waitlist_entries SET status = 'SELECTED' WHERE status = 'WAITING' AND id IN (`
	args := make([]any, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			q += ","
		}
		q += "?"
		args = append(args, id)
	}
	q += ")"
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// UpdateStatusTx performs a compare-and-set status transition inside the
// caller's transaction. When the row is no longer in the expected state the
// update matches nothing and ErrStaleState is returned, which is how stale
// accepts/declines are rejected at commit time.
func (r *WaitlistRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to lottery.Status) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE waitlist_entries SET status = ? WHERE id = ? AND status = ?`,
		string(to), id, string(from))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStaleState
	}
	return nil
}

// RequeueTx moves an entry back to WAITING at the tail of the queue. This is
// the "too late" path: the entrant tried to accept after the event filled,
// so they keep their place in future draws instead of losing it.
func (r *WaitlistRepo) RequeueTx(ctx context.Context, tx *sql.Tx, id, eventID uint64) error {
	waiting, err := r.CountWaitingTx(ctx, tx, eventID)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE waitlist_entries SET status = 'WAITING', position = ? WHERE id = ?`,
		waiting+1, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// DeleteTx removes an entry row entirely. Organizer removal of an accepted
// entrant deletes the record (distinct from the entrant's own leave, which
// keeps a CANCELLED row behind).
func (r *WaitlistRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM waitlist_entries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEntryNotFound
	}
	return nil
}
