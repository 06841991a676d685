package handler

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-lottery/internal/lottery"
	"github.com/iliyamo/event-lottery/internal/model"
	"github.com/iliyamo/event-lottery/internal/queue"
	"github.com/iliyamo/event-lottery/internal/repository"
	queue_publisher "github.com/iliyamo/event-lottery/internal/service"
)

// OrganizerDrawHandler runs lottery draws and reports draw eligibility.
// A draw is a single transaction under the event row lock: eligibility is
// recomputed from locked state, winners are picked at random from the
// waiting pool and flipped to SELECTED in one statement.  Selection
// messages go to the queue only after the commit, so the consumer never
// notifies for a draw that rolled back.
type OrganizerDrawHandler struct {
	EventRepo     *repository.EventRepo
	WaitlistRepo  *repository.WaitlistRepo
	Notifications *repository.NotificationRepo
}

// NewOrganizerDrawHandler constructs an OrganizerDrawHandler.
func NewOrganizerDrawHandler(events *repository.EventRepo, waitlists *repository.WaitlistRepo, notifications *repository.NotificationRepo) *OrganizerDrawHandler {
	if events == nil || waitlists == nil || notifications == nil {
		panic("nil repository passed to NewOrganizerDrawHandler")
	}
	return &OrganizerDrawHandler{EventRepo: events, WaitlistRepo: waitlists, Notifications: notifications}
}

// notSelectedNotifications builds one notification per entry left waiting
// after a wave: the draw ran, they were not picked, they remain in the
// queue for the next wave.
func notSelectedNotifications(eventID uint64, eventTitle string, wave int, waiting []model.WaitlistEntry) []model.Notification {
	out := make([]model.Notification, 0, len(waiting))
	for i := range waiting {
		out = append(out, model.Notification{
			UserID:  waiting[i].UserID,
			EventID: eventID,
			EntryID: waiting[i].ID,
			Kind:    model.NotificationNotSelected,
			Title:   "Not selected this time",
			Body: fmt.Sprintf("You were not selected in wave %d for \"%s\". You are still on the waiting list.",
				wave, eventTitle),
		})
	}
	return out
}

// drawReq optionally overrides the draw size.  Zero means "use the event's
// sampling count, clamped to what is actually drawable".
type drawReq struct {
	DrawSize int `json:"draw_size"`
}

// ListEntrants handles GET /v1/organizer/events/:id/entrants.  It returns
// the full entrant roster (optionally filtered by ?status=) together with
// the current draw eligibility so the dashboard can enable or disable the
// draw button with a reason.
func (h *OrganizerDrawHandler) ListEntrants(c echo.Context) error {
	organizerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx := c.Request().Context()
	ev, err := h.EventRepo.GetByID(ctx, eventID)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if ev.OrganizerID != organizerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your event"})
	}

	var filter lottery.Status
	if s := c.QueryParam("status"); s != "" {
		filter = lottery.Status(s)
		if !lottery.Known(filter) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status filter"})
		}
	}
	entries, err := h.WaitlistRepo.ListByEvent(ctx, eventID, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	counts, err := h.WaitlistRepo.CountByStatus(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	type rosterEntry struct {
		entryView
		UserID   uint64 `json:"user_id"`
		UserName string `json:"user_name"`
	}
	out := make([]rosterEntry, 0, len(entries))
	for i := range entries {
		out = append(out, rosterEntry{
			entryView: viewEntry(&entries[i]),
			UserID:    entries[i].UserID,
			UserName:  entries[i].UserName,
		})
	}
	elig := lottery.ComputeDrawEligibility(counts[lottery.StatusWaiting], ev.Capacity, ev.Enrolled)
	return c.JSON(http.StatusOK, echo.Map{
		"entrants":    out,
		"eligibility": elig,
	})
}

// Draw handles POST /v1/organizer/events/:id/draw.
func (h *OrganizerDrawHandler) Draw(c echo.Context) error {
	organizerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req drawReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
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
	if ev.OrganizerID != organizerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your event"})
	}

	waiting, err := h.WaitlistRepo.CountWaitingTx(ctx, tx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	elig := lottery.ComputeDrawEligibility(waiting, ev.Capacity, ev.Enrolled)

	size := req.DrawSize
	if size == 0 {
		size = ev.SamplingCount
		if size > elig.MaxDrawSize {
			size = elig.MaxDrawSize
		}
	}
	if err := lottery.ValidateDrawSize(size, elig); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error(), "eligibility": elig})
	}

	chosenBefore, err := h.WaitlistRepo.CountChosenTx(ctx, tx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	wave := lottery.CurrentWave(chosenBefore, ev.SamplingCount)

	pool, err := h.WaitlistRepo.ListWaitingIDsTx(ctx, tx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	winnerIDs := lottery.PickWinners(pool, size)

	winners := make([]*model.WaitlistEntry, 0, len(winnerIDs))
	for _, id := range winnerIDs {
		e, err := h.WaitlistRepo.GetByIDTx(ctx, tx, id)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		winners = append(winners, e)
	}
	marked, err := h.WaitlistRepo.MarkSelectedTx(ctx, tx, winnerIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to mark winners"})
	}
	if marked != len(winnerIDs) {
		// Someone left the pool mid-draw despite the lock; treat as a
		// retryable conflict rather than selecting a short wave silently.
		return c.JSON(http.StatusConflict, echo.Map{"error": "waiting pool changed, retry the draw"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	// Fan out selection messages after commit. Publishing is best effort;
	// the draw already stands and a broker outage must not undo it.
	now := time.Now().UTC()
	for _, w := range winners {
		msg := queue.EntrantSelectedEvent{
			EventID:    eventID,
			EventTitle: ev.Title,
			EntryID:    w.ID,
			UserID:     w.UserID,
			UserName:   w.UserName,
			Wave:       wave,
			DrawSize:   size,
			SelectedAt: now,
		}
		pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := queue_publisher.PublishEntrantSelected(pubCtx, msg); err != nil {
			log.Printf("draw: publish selected for entry %d failed: %v", w.ID, err)
		}
		cancel()
	}

	// Everyone the wave passed over stays WAITING and hears so. Best
	// effort like the queue fan-out: the committed draw stands regardless.
	if waiting, err := h.WaitlistRepo.ListByEvent(ctx, eventID, lottery.StatusWaiting); err != nil {
		log.Printf("draw: list remaining waiting for event %d failed: %v", eventID, err)
	} else {
		for _, n := range notSelectedNotifications(eventID, ev.Title, wave, waiting) {
			n := n
			if err := h.Notifications.Create(ctx, &n); err != nil {
				log.Printf("draw: not-selected notification for user %d failed: %v", n.UserID, err)
			}
		}
	}

	selected := make([]entryView, 0, len(winners))
	for _, w := range winners {
		w.Status = lottery.StatusSelected
		selected = append(selected, viewEntry(w))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"wave":      wave,
		"draw_size": size,
		"selected":  selected,
	})
}
