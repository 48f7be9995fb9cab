package middleware // reusable HTTP middleware for the seating service

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by SessionAuth and read by handlers.
const (
	CtxSessionID   = "session_id"
	CtxSessionName = "session_name"
)

// SessionAuth returns an Echo middleware that validates a Bearer token
// issued by the platform's identity service and injects the
// collaborator session identity into the request context.  The `sub`
// claim is the session id; the optional `name` claim is the display
// name other collaborators see on lock contention.  Token issuance is
// out of scope for this service; we only verify.
func SessionAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Parse with HS256 and our shared secret; any other signing
			// method is rejected outright.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}
			sub, _ := claims["sub"].(string)
			if sub == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing subject"})
			}
			name, _ := claims["name"].(string)
			if name == "" {
				name = sub
			}
			c.Set(CtxSessionID, sub)
			c.Set(CtxSessionName, name)
			return next(c)
		}
	}
}

// SessionID extracts the collaborator session id from the context,
// returning "guest" when the request carried no verified identity.
func SessionID(c echo.Context) string {
	if v, ok := c.Get(CtxSessionID).(string); ok && v != "" {
		return v
	}
	return "guest"
}

// SessionName extracts the collaborator display name.
func SessionName(c echo.Context) string {
	if v, ok := c.Get(CtxSessionName).(string); ok && v != "" {
		return v
	}
	return "guest"
}
