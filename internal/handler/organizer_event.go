package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-lottery/internal/model"
	"github.com/iliyamo/event-lottery/internal/repository"
)

// OrganizerEventHandler covers event CRUD for organizers.  Ownership is
// enforced by the repository: update and delete fail with ErrForbidden
// when the caller does not own the event.
type OrganizerEventHandler struct {
	EventRepo    *repository.EventRepo
	WaitlistRepo *repository.WaitlistRepo
}

// NewOrganizerEventHandler constructs an OrganizerEventHandler.
func NewOrganizerEventHandler(events *repository.EventRepo, waitlists *repository.WaitlistRepo) *OrganizerEventHandler {
	if events == nil || waitlists == nil {
		panic("nil repository passed to NewOrganizerEventHandler")
	}
	return &OrganizerEventHandler{EventRepo: events, WaitlistRepo: waitlists}
}

// eventReq is the create/update payload.  Times are RFC3339 strings.
// RequiresGeolocation is honored only on create; the flag is fixed for the
// lifetime of the event because entrants joined under one policy must not
// be retroactively subjected to another.
type eventReq struct {
	Title                string `json:"title"`
	Description          string `json:"description"`
	Capacity             int    `json:"capacity"`
	WaitlistCapacity     int    `json:"waitlist_capacity"`
	SamplingCount        int    `json:"sampling_count"`
	RequiresGeolocation  bool   `json:"requires_geolocation"`
	RegistrationStartsAt string `json:"registration_starts_at"`
	RegistrationEndsAt   string `json:"registration_ends_at"`
	StartsAt             string `json:"starts_at"`
	Status               string `json:"status"` // update only: OPEN | CLOSED | CANCELLED
}

// organizerEvent is the owner's view of an event, including the join code
// and the enrolled counter the public view omits.
type organizerEvent struct {
	PublicEvent
	Enrolled         int    `json:"enrolled"`
	WaitlistCapacity int    `json:"waitlist_capacity"`
	SamplingCount    int    `json:"sampling_count"`
	JoinCode         string `json:"join_code"`
}

func ownerEvent(ev *model.Event) organizerEvent {
	return organizerEvent{
		PublicEvent:      publicEvent(ev),
		Enrolled:         ev.Enrolled,
		WaitlistCapacity: ev.WaitlistCapacity,
		SamplingCount:    ev.SamplingCount,
		JoinCode:         ev.JoinCode,
	}
}

// parseEventTimes validates and parses the three timestamps of a request.
func parseEventTimes(req *eventReq) (regStart, regEnd, start time.Time, err error) {
	if regStart, err = time.Parse(time.RFC3339, req.RegistrationStartsAt); err != nil {
		return
	}
	if regEnd, err = time.Parse(time.RFC3339, req.RegistrationEndsAt); err != nil {
		return
	}
	start, err = time.Parse(time.RFC3339, req.StartsAt)
	return
}

func validateEventReq(req *eventReq, regStart, regEnd, start time.Time) string {
	switch {
	case strings.TrimSpace(req.Title) == "":
		return "title is required"
	case req.Capacity <= 0:
		return "capacity must be positive"
	case req.WaitlistCapacity < 0:
		return "waitlist_capacity must not be negative"
	case req.SamplingCount <= 0:
		return "sampling_count must be positive"
	case !regStart.Before(regEnd):
		return "registration window is empty"
	case start.Before(regStart):
		return "event starts before registration opens"
	}
	return ""
}

// Create handles POST /v1/organizer/events.  The join code embedded in the
// event's QR poster is generated server-side and never client-supplied.
func (h *OrganizerEventHandler) Create(c echo.Context) error {
	organizerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	regStart, regEnd, start, err := parseEventTimes(&req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "timestamps must be RFC3339"})
	}
	if msg := validateEventReq(&req, regStart, regEnd, start); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev := &model.Event{
		OrganizerID:          organizerID,
		Title:                strings.TrimSpace(req.Title),
		Description:          req.Description,
		Capacity:             req.Capacity,
		WaitlistCapacity:     req.WaitlistCapacity,
		SamplingCount:        req.SamplingCount,
		RequiresGeolocation:  req.RequiresGeolocation,
		JoinCode:             uuid.NewString(),
		RegistrationStartsAt: regStart.UTC(),
		RegistrationEndsAt:   regEnd.UTC(),
		StartsAt:             start.UTC(),
	}
	if err := h.EventRepo.Create(ctx, ev); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"event": ownerEvent(ev)})
}

// Update handles PUT /v1/organizer/events/:id.
func (h *OrganizerEventHandler) Update(c echo.Context) error {
	organizerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	regStart, regEnd, start, err := parseEventTimes(&req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "timestamps must be RFC3339"})
	}
	if msg := validateEventReq(&req, regStart, regEnd, start); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	switch status {
	case "", "OPEN":
		status = "OPEN"
	case "CLOSED", "CANCELLED":
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev := &model.Event{
		ID:                   eventID,
		Title:                strings.TrimSpace(req.Title),
		Description:          req.Description,
		Capacity:             req.Capacity,
		WaitlistCapacity:     req.WaitlistCapacity,
		SamplingCount:        req.SamplingCount,
		RegistrationStartsAt: regStart.UTC(),
		RegistrationEndsAt:   regEnd.UTC(),
		StartsAt:             start.UTC(),
		Status:               status,
	}
	if err := h.EventRepo.Update(ctx, organizerID, ev); err != nil {
		switch err {
		case repository.ErrEventNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your event"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update event failed"})
	}
	fresh, err := h.EventRepo.GetByID(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"event": ownerEvent(fresh)})
}

// Delete handles DELETE /v1/organizer/events/:id.
func (h *OrganizerEventHandler) Delete(c echo.Context) error {
	organizerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.EventRepo.Delete(ctx, eventID, organizerID, false); err != nil {
		switch err {
		case repository.ErrEventNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your event"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete event failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListMyEvents handles GET /v1/organizer/events.
func (h *OrganizerEventHandler) ListMyEvents(c echo.Context) error {
	organizerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	events, err := h.EventRepo.ListByOrganizer(c.Request().Context(), organizerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]organizerEvent, 0, len(events))
	for i := range events {
		out = append(out, ownerEvent(&events[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"events": out})
}
