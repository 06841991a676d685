// Package handler exposes HTTP handlers for both authenticated and public endpoints.
// This file defines handlers for the public browsing API. These routes allow
// unauthenticated users to discover events without requiring authentication.
// Sensitive fields (organizer IDs, join codes of other events, entrant
// coordinates) are filtered from responses.

package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-lottery/internal/lottery"
	"github.com/iliyamo/event-lottery/internal/model"
	"github.com/iliyamo/event-lottery/internal/repository"
)

// PublicHandler aggregates repositories needed for unauthenticated browsing.
// It produces sanitized responses suitable for public consumption.
type PublicHandler struct {
	EventRepo    *repository.EventRepo    // provides access to event data
	WaitlistRepo *repository.WaitlistRepo // provides live queue counts
}

// NewPublicHandler constructs a PublicHandler.
func NewPublicHandler(events *repository.EventRepo, waitlists *repository.WaitlistRepo) *PublicHandler {
	return &PublicHandler{EventRepo: events, WaitlistRepo: waitlists}
}

// PublicEvent represents an event in list responses. It contains only safe
// fields; the join code is deliberately absent because it is distributed via
// the event's QR poster, not the browse API.
type PublicEvent struct {
	ID                   uint64    `json:"id"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	Capacity             int       `json:"capacity"`
	SpotsLeft            int       `json:"spots_left"`
	RequiresGeolocation  bool      `json:"requires_geolocation"`
	RegistrationStartsAt time.Time `json:"registration_starts_at"`
	RegistrationEndsAt   time.Time `json:"registration_ends_at"`
	StartsAt             time.Time `json:"starts_at"`
	Status               string    `json:"status"`
}

// PublicEventDetail is the single-event response: the summary plus live
// waitlist counts so a client can render "N waiting" before joining.
type PublicEventDetail struct {
	PublicEvent
	WaitlistCapacity int            `json:"waitlist_capacity"`
	Counts           map[string]int `json:"counts"`
	JoinOpen         bool           `json:"join_open"`
}

func publicEvent(ev *model.Event) PublicEvent {
	spots := ev.Capacity - ev.Enrolled
	if spots < 0 {
		spots = 0
	}
	return PublicEvent{
		ID:                   ev.ID,
		Title:                ev.Title,
		Description:          ev.Description,
		Capacity:             ev.Capacity,
		SpotsLeft:            spots,
		RequiresGeolocation:  ev.RequiresGeolocation,
		RegistrationStartsAt: ev.RegistrationStartsAt,
		RegistrationEndsAt:   ev.RegistrationEndsAt,
		StartsAt:             ev.StartsAt,
		Status:               ev.Status,
	}
}

// ListOpenEvents handles GET /v1/events. Only events with status OPEN are
// returned.
func (h *PublicHandler) ListOpenEvents(c echo.Context) error {
	events, err := h.EventRepo.ListOpen(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicEvent, 0, len(events))
	for i := range events {
		out = append(out, publicEvent(&events[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"events": out})
}

// GetEvent handles GET /v1/events/:id. It returns the event with live
// per-status queue counts and whether joining is currently possible.
func (h *PublicHandler) GetEvent(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx := c.Request().Context()
	ev, err := h.EventRepo.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, h.detail(c, ev))
}

// GetEventByCode handles GET /v1/events/code/:code. This is the landing
// route for QR poster scans; the scan debounce middleware sits in front of
// it so a double scan of the same poster resolves only once.
func (h *PublicHandler) GetEventByCode(c echo.Context) error {
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
	return c.JSON(http.StatusOK, h.detail(c, ev))
}

// detail builds the detailed response for a single event. Count failures are
// tolerated: the event itself is still returned, just without counts.
func (h *PublicHandler) detail(c echo.Context, ev *model.Event) PublicEventDetail {
	d := PublicEventDetail{
		PublicEvent:      publicEvent(ev),
		WaitlistCapacity: ev.WaitlistCapacity,
		Counts:           map[string]int{},
	}
	counts, err := h.WaitlistRepo.CountByStatus(c.Request().Context(), ev.ID)
	if err == nil {
		for s, n := range counts {
			d.Counts[string(s)] = n
		}
	}
	gate := lottery.JoinGate{
		RegistrationStart:   ev.RegistrationStartsAt,
		RegistrationEnd:     ev.RegistrationEndsAt,
		EventStart:          ev.StartsAt,
		WaitingCount:        d.Counts[string(lottery.StatusWaiting)],
		WaitlistCapacity:    ev.WaitlistCapacity,
		RequiresGeolocation: false, // openness check only; the fix is supplied at join time
	}
	d.JoinOpen = ev.Status == "OPEN" && gate.Check(time.Now().UTC(), nil, nil) == nil
	return d
}
