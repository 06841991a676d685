package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/event-lottery/internal/model"
)

// NotificationRepo persists user-facing notifications. Rows are written by
// the broker consumer (for draw results) and by the decision handlers (for
// too-late notices); they are only ever read back by their owner.
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo constructs a NotificationRepo bound to the given database.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// Create inserts a notification. When the ID is empty a fresh UUID is
// assigned and populated on the struct.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Status == "" {
		n.Status = model.NotificationUnread
	}
	const q = `INSERT INTO notifications (id, user_id, event_id, entry_id, kind, title, body, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		n.ID, n.UserID, n.EventID, n.EntryID, n.Kind, n.Title, n.Body, n.Status)
	return err
}

// ExistsForEntry reports whether a notification of the given kind has
// already been written for a waitlist entry. Keeps reminder sweeps
// idempotent across runs.
func (r *NotificationRepo) ExistsForEntry(ctx context.Context, entryID uint64, kind string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM notifications WHERE entry_id = ? AND kind = ? LIMIT 1`,
		entryID, kind).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByUser returns the user's notifications, newest first.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Notification, error) {
	const q = `SELECT id, user_id, event_id, entry_id, kind, title, body, status, created_at
		FROM notifications WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.EventID, &n.EntryID,
			&n.Kind, &n.Title, &n.Body, &n.Status, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetForUser returns a notification only if it belongs to the given user,
// otherwise ErrNotificationNotFound. Ownership is enforced in the query so
// a guessed UUID leaks nothing.
func (r *NotificationRepo) GetForUser(ctx context.Context, id string, userID uint64) (*model.Notification, error) {
	const q = `SELECT id, user_id, event_id, entry_id, kind, title, body, status, created_at
		FROM notifications WHERE id = ? AND user_id = ? LIMIT 1`
	var n model.Notification
	err := r.db.QueryRowContext(ctx, q, id, userID).Scan(&n.ID, &n.UserID,
		&n.EventID, &n.EntryID, &n.Kind, &n.Title, &n.Body, &n.Status, &n.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}

// MarkRead flips a notification to READ for its owner. Marking an already
// read notification is a no-op, not an error.
func (r *NotificationRepo) MarkRead(ctx context.Context, id string, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET status = 'READ' WHERE id = ? AND user_id = ?`,
		id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// distinguish "not yours/missing" from "already read"
		if _, err := r.GetForUser(ctx, id, userID); err != nil {
			return err
		}
	}
	return nil
}
