package handler

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-lottery/internal/lottery"
	"github.com/iliyamo/event-lottery/internal/model"
	"github.com/iliyamo/event-lottery/internal/repository"
	"github.com/iliyamo/event-lottery/internal/utils"
)

// NotificationHandler serves the entrant's notification feed and the
// accept/decline decisions taken from notification cards.  Decisions are
// single-flighted per notification ID through a FlightGuard: while one
// accept or decline for a notification is in flight, a duplicate tap gets
// an immediate 409 and the feed reports the card as processing.
type NotificationHandler struct {
	Notifications *repository.NotificationRepo
	WaitlistRepo  *repository.WaitlistRepo
	EventRepo     *repository.EventRepo
	Flights       *utils.FlightGuard
}

// NewNotificationHandler constructs a NotificationHandler.  All
// dependencies must be non-nil.
func NewNotificationHandler(n *repository.NotificationRepo, w *repository.WaitlistRepo, e *repository.EventRepo, f *utils.FlightGuard) *NotificationHandler {
	if n == nil || w == nil || e == nil || f == nil {
		panic("nil dependency passed to NewNotificationHandler")
	}
	return &NotificationHandler{Notifications: n, WaitlistRepo: w, EventRepo: e, Flights: f}
}

// flightKey namespaces notification IDs inside the shared guard.
func flightKey(notificationID string) string { return "notif:" + notificationID }

// notificationView is a notification card as rendered to its owner.  The
// action set is derived from the entry's live status at read time, never
// stored, so a card can never offer a stale accept/decline.
type notificationView struct {
	ID        string                      `json:"id"`
	EventID   uint64                      `json:"event_id"`
	EntryID   uint64                      `json:"entry_id"`
	Kind      string                      `json:"kind"`
	Title     string                      `json:"title"`
	Body      string                      `json:"body"`
	Status    string                      `json:"status"`
	CreatedAt time.Time                   `json:"created_at"`
	Actions   lottery.NotificationActions `json:"actions"`
}

// List handles GET /v1/me/notifications.  Each card carries its derived
// action set: accept/decline are shown only while the referenced entry is
// still pending a decision and no decision for this card is in flight.
func (h *NotificationHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	ns, err := h.Notifications.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]notificationView, 0, len(ns))
	for i := range ns {
		n := &ns[i]
		// Entry status drives the action set. A missing or unreadable
		// entry yields the safe default: event details only.
		var status lottery.Status
		if n.EntryID != 0 {
			if e, err := h.WaitlistRepo.GetByID(ctx, n.EntryID); err == nil {
				status = e.Status
			}
		}
		out = append(out, notificationView{
			ID:        n.ID,
			EventID:   n.EventID,
			EntryID:   n.EntryID,
			Kind:      n.Kind,
			Title:     n.Title,
			Body:      n.Body,
			Status:    n.Status,
			CreatedAt: n.CreatedAt,
			Actions:   lottery.ActionsFor(status, h.Flights.Held(flightKey(n.ID))),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": out})
}

// MarkRead handles POST /v1/me/notifications/:id/read.  Marking an already
// read notification again is a no-op success.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification id"})
	}
	if err := h.Notifications.MarkRead(c.Request().Context(), id, userID); err != nil {
		if err == repository.ErrNotificationNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "notification not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Accept handles POST /v1/me/notifications/:id/accept.  Accepting consumes
// one enrolled slot under the event row lock.  If the event filled while
// the invitation sat unanswered, the accept is "too late": the entry is
// requeued at the tail of the waiting list and the entrant is told so.
func (h *NotificationHandler) Accept(c echo.Context) error {
	return h.decide(c, true)
}

// Decline handles POST /v1/me/notifications/:id/decline.  Declining is
// terminal and never touches the enrolled counter.
func (h *NotificationHandler) Decline(c echo.Context) error {
	return h.decide(c, false)
}

func (h *NotificationHandler) decide(c echo.Context, accept bool) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification id"})
	}
	// Exactly one decision per notification may be in flight at a time.
	if !h.Flights.TryAcquire(flightKey(id)) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "decision already in progress"})
	}
	defer h.Flights.Release(flightKey(id))

	ctx := c.Request().Context()
	n, err := h.Notifications.GetForUser(ctx, id, userID)
	if err != nil {
		if err == repository.ErrNotificationNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "notification not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if n.EntryID == 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "no pending invitation for this entry"})
	}

	tx, err := h.EventRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Event row lock serializes decisions against draws and removals.
	if _, err := h.EventRepo.GetByIDTx(ctx, tx, n.EventID); err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	entry, err := h.WaitlistRepo.GetByIDTx(ctx, tx, n.EntryID)
	if err != nil {
		if err == repository.ErrEntryNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "waitlist entry not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if entry.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	var next lottery.Status
	if accept {
		next, err = lottery.Accept(entry.Status)
	} else {
		next, err = lottery.Decline(entry.Status)
	}
	if err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}

	if accept {
		// The guarded increment fails when the event filled while the
		// invitation sat unanswered. Requeue at the tail instead.
		if err := h.EventRepo.AdjustEnrolledTx(ctx, tx, n.EventID, 1); err != nil {
			if err == repository.ErrCapacityExceeded {
				return h.tooLate(c, tx, n, entry)
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to claim slot"})
		}
	}
	if err := h.WaitlistRepo.UpdateStatusTx(ctx, tx, entry.ID, entry.Status, next); err != nil {
		if err == repository.ErrStaleState {
			return c.JSON(http.StatusConflict, echo.Map{"error": "entry changed, retry"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update entry"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	_ = h.Notifications.MarkRead(ctx, n.ID, userID)
	entry.Status = next
	return c.JSON(http.StatusOK, echo.Map{"entry": viewEntry(entry)})
}

// tooLate finishes an accept that lost the race for the last slot: the
// entry goes back to WAITING at the tail of the queue, the change is
// committed, and a TOO_LATE notification is written so the entrant learns
// what happened.  The caller's deferred rollback stays armed until the
// commit here succeeds.
func (h *NotificationHandler) tooLate(c echo.Context, tx *sql.Tx, n *model.Notification, entry *model.WaitlistEntry) error {
	ctx := c.Request().Context()
	if err := h.WaitlistRepo.RequeueTx(ctx, tx, entry.ID, n.EventID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to requeue entry"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	tooLate := &model.Notification{
		UserID:  n.UserID,
		EventID: n.EventID,
		EntryID: entry.ID,
		Kind:    model.NotificationTooLate,
		Title:   "Too late",
		Body:    "The event filled before you accepted. You are back on the waiting list.",
	}
	if err := h.Notifications.Create(ctx, tooLate); err != nil {
		log.Printf("notification: too-late record for entry %d failed: %v", entry.ID, err)
	}
	_ = h.Notifications.MarkRead(ctx, n.ID, n.UserID)
	return c.JSON(http.StatusConflict, echo.Map{
		"error":    "too late, the event is already full",
		"requeued": true,
	})
}
