package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-lottery/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/event-lottery/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Operations that do not require an existing session: register, login
	// and the two refresh flavors.  Each handler is responsible for
	// generating or exchanging tokens.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotating refresh: exchanges the refresh token for a new pair.
	g.POST("/refresh", a.Refresh)
	// Non-rotating refresh: issues a fresh access token only.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts either a bearer token (revoke all sessions) or a
	// refresh_token body (revoke one session), so it lives outside the JWT
	// middleware.
	g.POST("/logout", a.Logout)

	// Routes that require a valid access token.  Any authenticated role may
	// call /v1/me.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("ENTRANT", "ORGANIZER", "ADMIN"))
	auth.GET("/me", a.Me)

	// Alias kept at the top level so clients can log out with only a
	// refresh token in the body.
	e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers unauthenticated browse endpoints on the provided
// Echo instance.  The PublicHandler returns sanitized event data suitable
// for guests.  The join-code route sits behind the scan debounce middleware
// so a double QR scan from the same device resolves only once per window.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, rdb *redis.Client) {
	// Browse all open events.
	e.GET("/v1/events", p.ListOpenEvents)
	// Event details with live queue counts.
	e.GET("/v1/events/:id", p.GetEvent)
	// QR poster landing route, debounced per device+code.
	e.GET("/v1/events/code/:code", p.GetEventByCode, middleware.ScanDebounce(rdb))
}
