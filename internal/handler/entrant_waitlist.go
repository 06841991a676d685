package handler

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-lottery/internal/lottery"
	"github.com/iliyamo/event-lottery/internal/model"
	"github.com/iliyamo/event-lottery/internal/repository"
)

// EntrantHandler groups repositories required for waitlist membership
// operations performed by entrants: joining, leaving and listing their own
// entries.  All methods assume that JWT authentication and role validation
// has already been performed by middleware.  Joins and leaves run inside a
// transaction holding the event row lock so the queue position and the
// enrolled counter stay consistent under concurrent taps.
type EntrantHandler struct {
	EventRepo     *repository.EventRepo        // event definitions and the enrolled counter
	WaitlistRepo  *repository.WaitlistRepo     // waitlist entries
	UserRepo      *repository.UserRepo         // display names denormalized onto entries
	Notifications *repository.NotificationRepo // join confirmations
}

// NewEntrantHandler constructs an EntrantHandler with the provided
// repositories.  All dependencies must be non-nil.
func NewEntrantHandler(events *repository.EventRepo, waitlists *repository.WaitlistRepo, users *repository.UserRepo, notifications *repository.NotificationRepo) *EntrantHandler {
	if events == nil || waitlists == nil || users == nil || notifications == nil {
		panic("nil repository passed to NewEntrantHandler")
	}
	return &EntrantHandler{EventRepo: events, WaitlistRepo: waitlists, UserRepo: users, Notifications: notifications}
}

// waitlistJoinedNotification builds the confirmation card for a fresh join:
// the entrant is in the queue at the given position.
func waitlistJoinedNotification(entry *model.WaitlistEntry, eventTitle string) model.Notification {
	return model.Notification{
		UserID:  entry.UserID,
		EventID: entry.EventID,
		EntryID: entry.ID,
		Kind:    model.NotificationWaitlist,
		Title:   "You're on the waiting list",
		Body: fmt.Sprintf("You joined the waiting list for \"%s\" at position %d. Winners are drawn by lottery.",
			eventTitle, entry.Position),
	}
}

// joinReq carries the optional location fix captured by the client at join
// time.  Both coordinates must be present when the event requires
// geolocation; a partial fix counts as no fix.
type joinReq struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// entryView is the waitlist entry as returned to its owner, including the
// display badge derived from the status.
type entryView struct {
	ID       uint64        `json:"id"`
	EventID  uint64        `json:"event_id"`
	Position int           `json:"position"`
	Status   string        `json:"status"`
	Badge    lottery.Badge `json:"badge"`
	JoinedAt time.Time     `json:"joined_at"`
}

func viewEntry(e *model.WaitlistEntry) entryView {
	return entryView{
		ID:       e.ID,
		EventID:  e.EventID,
		Position: e.Position,
		Status:   string(e.Status),
		Badge:    lottery.BadgeFor(e.Status),
		JoinedAt: e.JoinedAt,
	}
}

// Join handles POST /v1/events/:id/join.  The join gate (registration
// window, event start, waitlist capacity, geolocation requirement) is
// evaluated inside the transaction against the locked event row, because
// the event may have filled or closed between render and tap.
func (h *EntrantHandler) Join(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	return h.join(c, userID, eventID)
}

// JoinByCode handles POST /v1/events/code/:code/join.  It resolves the QR
// join code to an event and then follows the same path as Join.
func (h *EntrantHandler) JoinByCode(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid join code"})
	}
	ev, err := h.EventRepo.GetByJoinCode(c.Request().Context(), code)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return h.join(c, userID, ev.ID)
}

func (h *EntrantHandler) join(c echo.Context, userID, eventID uint64) error {
	var req joinReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	// A half-supplied fix is treated as no fix at all.
	if (req.Latitude == nil) != (req.Longitude == nil) {
		req.Latitude, req.Longitude = nil, nil
	}

	ctx := c.Request().Context()
	u, err := h.UserRepo.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
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

	ev, err := h.EventRepo.GetByIDTx(ctx, tx, eventID)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if ev.Status != "OPEN" {
		return c.JSON(http.StatusConflict, echo.Map{"error": "event is not open"})
	}

	waiting, err := h.WaitlistRepo.CountWaitingTx(ctx, tx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	gate := lottery.JoinGate{
		RegistrationStart:   ev.RegistrationStartsAt,
		RegistrationEnd:     ev.RegistrationEndsAt,
		EventStart:          ev.StartsAt,
		WaitingCount:        waiting,
		WaitlistCapacity:    ev.WaitlistCapacity,
		RequiresGeolocation: ev.RequiresGeolocation,
	}
	if err := gate.Check(time.Now().UTC(), req.Latitude, req.Longitude); err != nil {
		if err == lottery.ErrLocationRequired {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}

	entry := &model.WaitlistEntry{
		EventID:  eventID,
		UserID:   userID,
		UserName: u.DisplayName,
	}
	if ev.RequiresGeolocation {
		entry.Latitude = req.Latitude
		entry.Longitude = req.Longitude
	}
	if err := h.WaitlistRepo.JoinTx(ctx, tx, entry); err != nil {
		if err == repository.ErrAlreadyOnWaitlist {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already on the waiting list"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to join waitlist"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	// Confirmation card is best effort; the join itself already stands.
	n := waitlistJoinedNotification(entry, ev.Title)
	if err := h.Notifications.Create(ctx, &n); err != nil {
		log.Printf("join: confirmation notification for user %d failed: %v", userID, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"entry": viewEntry(entry)})
}

// Leave handles POST /v1/events/:id/leave.  Leaving always lands on
// CANCELLED regardless of the entry's current non-terminal status; leaving
// from ACCEPTED additionally frees the enrolled slot.  A freed slot is not
// auto-backfilled, the organizer runs another draw when they choose.
func (h *EntrantHandler) Leave(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx := c.Request().Context()

	live, err := h.WaitlistRepo.GetLiveByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if err == repository.ErrEntryNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not on the waiting list"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
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

	// Lock the event row first so leave serializes with draws and accepts.
	if _, err := h.EventRepo.GetByIDTx(ctx, tx, eventID); err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	entry, err := h.WaitlistRepo.GetByIDTx(ctx, tx, live.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	next, freesSlot, err := lottery.Leave(entry.Status)
	if err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	if err := h.WaitlistRepo.UpdateStatusTx(ctx, tx, entry.ID, entry.Status, next); err != nil {
		if err == repository.ErrStaleState {
			return c.JSON(http.StatusConflict, echo.Map{"error": "entry changed, retry"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update entry"})
	}
	if freesSlot {
		if err := h.EventRepo.AdjustEnrolledTx(ctx, tx, eventID, -1); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to release slot"})
		}
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.NoContent(http.StatusNoContent)
}

// MyWaitlist handles GET /v1/me/waitlist.  It returns the caller's
// non-terminal entries with their badges and a slim event summary per
// entry.  Terminal entries (DECLINED, CANCELLED) are excluded, matching
// the "my events" view on the client.
func (h *EntrantHandler) MyWaitlist(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	entries, err := h.WaitlistRepo.ListActiveByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	type item struct {
		entryView
		Event *PublicEvent `json:"event,omitempty"`
	}
	out := make([]item, 0, len(entries))
	for i := range entries {
		it := item{entryView: viewEntry(&entries[i])}
		if ev, err := h.EventRepo.GetByID(ctx, entries[i].EventID); err == nil {
			pe := publicEvent(ev)
			it.Event = &pe
		}
		out = append(out, it)
	}
	return c.JSON(http.StatusOK, echo.Map{"entries": out})
}
