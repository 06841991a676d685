package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-lottery/internal/handler"
	"github.com/iliyamo/event-lottery/internal/middleware"
)

// RegisterEntrant registers entrant-scoped endpoints under /v1.  All routes
// require a valid JWT and the ENTRANT role.  Entrants can join and leave
// waitlists, inspect their own entries and act on their notifications.
func RegisterEntrant(e *echo.Echo, h *handler.EntrantHandler, n *handler.NotificationHandler, rdb *redis.Client, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ENTRANT"),
	)

	// ---- Waitlist membership ----
	g.POST("/events/:id/join", h.Join)
	g.POST("/events/:id/leave", h.Leave)
	// Joining by scanned QR code shares the debounce window with the public
	// landing route: a double scan produces one join attempt.
	g.POST("/events/code/:code/join", h.JoinByCode, middleware.ScanDebounce(rdb))
	g.GET("/me/waitlist", h.MyWaitlist)

	// ---- Notifications ----
	g.GET("/me/notifications", n.List)
	g.POST("/me/notifications/:id/read", n.MarkRead)
	g.POST("/me/notifications/:id/accept", n.Accept)
	g.POST("/me/notifications/:id/decline", n.Decline)
}
