package middleware

// identity.go defines helper functions shared across middleware files. It
// provides a userID extraction function that pulls the subject (sub) or
// user_id claim from the JWT stored in the Echo context. When no token is
// present or no relevant claim exists, "guest" is returned.

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// userID extracts a user identifier from context. It prefers the value
// JWTAuth stored under "user_id" and falls back to parsing raw JWT claims
// for routes wrapped by other token middleware. Returns "guest" when no
// user is authenticated.
func userID(c echo.Context) string {
	if v := c.Get("user_id"); v != nil {
		switch t := v.(type) {
		case string:
			if t != "" {
				return t
			}
		case float64:
			return fmt.Sprintf("%.0f", t)
		case uint64:
			return fmt.Sprintf("%d", t)
		}
	}
	if u := c.Get("user"); u != nil {
		if tok, ok := u.(*jwt.Token); ok {
			if cl, ok := tok.Claims.(jwt.MapClaims); ok {
				if v, ok := cl["sub"].(string); ok && v != "" {
					return v
				}
				if v, ok := cl["user_id"].(string); ok && v != "" {
					return v
				}
			}
		}
	}
	return "guest"
}
