package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-lottery/internal/handler"
	"github.com/iliyamo/event-lottery/internal/middleware"
)

// RegisterAdmin registers ADMIN-scoped moderation endpoints under /v1/admin.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	g.GET("/events", a.ListEvents)
	g.DELETE("/events/:id", a.DeleteEvent)
	g.GET("/users", a.ListUsers)
	g.POST("/users/:id/deactivate", a.DeactivateUser)
}
