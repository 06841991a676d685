package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// ScanDebounceTTL is the minimum spacing between two join-by-code attempts
// from the same device for the same code. QR scanners fire the same frame
// repeatedly; this is a rate limit against duplicate scan events, not a
// correctness lock (the join itself is validated transactionally).
const ScanDebounceTTL = 2 * time.Second

// ScanDebounce returns middleware for the join-by-code route. It claims a
// short-lived Redis key per (device, code) pair with SET NX; while the key
// lives, repeat submissions get 429 without touching the database. A nil
// client or a Redis error disables the debounce rather than blocking joins.
func ScanDebounce(rdb *redis.Client) echo.MiddlewareFunc {
	if rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			code := strings.ToLower(strings.TrimSpace(c.Param("code")))
			if code == "" {
				return next(c)
			}
			key := "scan:" + deviceID(c) + ":" + code

			ok, err := rdb.SetNX(c.Request().Context(), key, 1, ScanDebounceTTL).Result()
			if err != nil {
				// degrade to no debounce; the join flow stays available
				return next(c)
			}
			if !ok {
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error": "scan already being processed, try again shortly",
				})
			}
			return next(c)
		}
	}
}
