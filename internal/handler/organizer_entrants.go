package handler

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-lottery/internal/lottery"
	"github.com/iliyamo/event-lottery/internal/queue"
	"github.com/iliyamo/event-lottery/internal/repository"
	queue_publisher "github.com/iliyamo/event-lottery/internal/service"
)

// OrganizerEntrantHandler covers organizer actions against individual
// entrants: removing an accepted entrant and exporting the chosen list.
type OrganizerEntrantHandler struct {
	EventRepo    *repository.EventRepo
	WaitlistRepo *repository.WaitlistRepo
}

// NewOrganizerEntrantHandler constructs an OrganizerEntrantHandler.
func NewOrganizerEntrantHandler(events *repository.EventRepo, waitlists *repository.WaitlistRepo) *OrganizerEntrantHandler {
	if events == nil || waitlists == nil {
		panic("nil repository passed to NewOrganizerEntrantHandler")
	}
	return &OrganizerEntrantHandler{EventRepo: events, WaitlistRepo: waitlists}
}

// RemoveAccepted handles DELETE /v1/organizer/events/:id/entrants/:entry_id.
// Only ACCEPTED entrants can be removed this way; removal deletes the
// entry, frees the enrolled slot and notifies the entrant through the
// queue.  The freed slot is not auto-backfilled, the organizer runs
// another draw when they choose.
func (h *OrganizerEntrantHandler) RemoveAccepted(c echo.Context) error {
	organizerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	entryID, err := pathID(c, "entry_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid entry id"})
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
	entry, err := h.WaitlistRepo.GetByIDTx(ctx, tx, entryID)
	if err != nil {
		if err == repository.ErrEntryNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "entry not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if entry.EventID != eventID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "entry not found"})
	}
	if err := lottery.CanRemove(entry.Status); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	if err := h.WaitlistRepo.DeleteTx(ctx, tx, entryID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to remove entry"})
	}
	if err := h.EventRepo.AdjustEnrolledTx(ctx, tx, eventID, -1); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to release slot"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	msg := queue.EntrantRemovedEvent{
		EventID:    eventID,
		EventTitle: ev.Title,
		EntryID:    entry.ID,
		UserID:     entry.UserID,
		UserName:   entry.UserName,
		RemovedAt:  time.Now().UTC(),
	}
	if err := queue_publisher.PublishEntrantRemoved(pubCtx, msg); err != nil {
		log.Printf("remove: publish removed for entry %d failed: %v", entry.ID, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ExportChosenCSV handles GET /v1/organizer/events/:id/entrants.csv.  The
// export covers everyone a draw has touched and is still in play: SELECTED,
// INVITED and ACCEPTED entrants, with their queue position and join time.
func (h *OrganizerEntrantHandler) ExportChosenCSV(c echo.Context) error {
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
	entries, err := h.WaitlistRepo.ListChosen(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="event-%d-chosen.csv"`, eventID))
	res.WriteHeader(http.StatusOK)

	w := csv.NewWriter(res)
	if err := w.Write([]string{"entry_id", "user_id", "user_name", "status", "position", "joined_at"}); err != nil {
		return err
	}
	for i := range entries {
		e := &entries[i]
		rec := []string{
			strconv.FormatUint(e.ID, 10),
			strconv.FormatUint(e.UserID, 10),
			e.UserName,
			string(e.Status),
			strconv.Itoa(e.Position),
			e.JoinedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
