package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-lottery/internal/repository"
)

// AdminHandler covers moderation endpoints: listing and deleting any event
// and deactivating user accounts.  Routes are guarded by the ADMIN role at
// the router level.
type AdminHandler struct {
	EventRepo *repository.EventRepo
	UserRepo  *repository.UserRepo
	TokenRepo *repository.TokenRepo
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(events *repository.EventRepo, users *repository.UserRepo, tokens *repository.TokenRepo) *AdminHandler {
	if events == nil || users == nil || tokens == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{EventRepo: events, UserRepo: users, TokenRepo: tokens}
}

// ListEvents handles GET /v1/admin/events: every event regardless of
// status or organizer.
func (h *AdminHandler) ListEvents(c echo.Context) error {
	events, err := h.EventRepo.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]organizerEvent, 0, len(events))
	for i := range events {
		out = append(out, ownerEvent(&events[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"events": out})
}

// DeleteEvent handles DELETE /v1/admin/events/:id, bypassing the ownership
// check.  Waitlist entries and notifications cascade at the schema level.
func (h *AdminHandler) DeleteEvent(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.EventRepo.Delete(ctx, eventID, adminID, true); err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete event failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListUsers handles GET /v1/admin/users.  Password hashes are never
// serialized.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.UserRepo.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	type userView struct {
		ID          uint64    `json:"id"`
		Email       string    `json:"email"`
		Role        string    `json:"role"`
		DisplayName string    `json:"display_name"`
		IsActive    bool      `json:"is_active"`
		CreatedAt   time.Time `json:"created_at"`
	}
	out := make([]userView, 0, len(users))
	for _, u := range users {
		out = append(out, userView{
			ID:          u.ID,
			Email:       u.Email,
			Role:        u.Role,
			DisplayName: u.DisplayName,
			IsActive:    u.IsActive,
			CreatedAt:   u.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// DeactivateUser handles POST /v1/admin/users/:id/deactivate.  All of the
// user's refresh tokens are revoked in the same request so existing
// sessions die with the account.
func (h *AdminHandler) DeactivateUser(c echo.Context) error {
	userID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.UserRepo.SetActive(ctx, userID, false); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deactivate failed"})
	}
	if err := h.TokenRepo.RevokeAllForUser(ctx, userID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke sessions failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
