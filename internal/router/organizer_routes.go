package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-lottery/internal/handler"    // organizer handlers
	"github.com/iliyamo/event-lottery/internal/middleware" // JWT + role middlewares
)

// RegisterOrganizer registers ORGANIZER-scoped endpoints under /v1.
// All routes require a valid JWT and ORGANIZER role.
func RegisterOrganizer(e *echo.Echo, ev *handler.OrganizerEventHandler, d *handler.OrganizerDrawHandler, en *handler.OrganizerEntrantHandler, jwtSecret string) {
	// Attach middlewares at group construction time for clarity.
	g := e.Group(
		"/v1/organizer",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ORGANIZER"),
	)

	// ---- Events ----
	g.POST("/events", ev.Create)
	g.GET("/events", ev.ListMyEvents)
	g.PUT("/events/:id", ev.Update)
	g.PATCH("/events/:id", ev.Update) // allow partial/semantic updates via PATCH as well
	g.DELETE("/events/:id", ev.Delete)

	// ---- Draws ----
	g.GET("/events/:id/entrants", d.ListEntrants)
	g.POST("/events/:id/draw", d.Draw)

	// ---- Entrant management ----
	g.DELETE("/events/:id/entrants/:entry_id", en.RemoveAccepted)
	g.GET("/events/:id/entrants.csv", en.ExportChosenCSV)
}
