package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-booking/internal/service"
)

// Context keys set by JWTAuth.
const (
	ctxUserID    = "user_id"
	ctxRole      = "role"
	ctxPrincipal = "principal"
)

// TokenVerifier decodes a raw bearer token into the calling principal.
// A token that is not acceptable yields service.ErrUnauthorized.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (service.Principal, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the caller into the request context. Handlers read it back
// with CurrentPrincipal, or c.Get("user_id") and c.Get("role").
func JWTAuth(v TokenVerifier) echo.MiddlewareFunc {
	if v == nil {
		panic("nil verifier passed to JWTAuth")
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			scheme, raw, ok := strings.Cut(auth, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(raw) == "" {
				c.Response().Header().Set("WWW-Authenticate", "Bearer")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			p, err := v.Verify(c.Request().Context(), strings.TrimSpace(raw))
			if errors.Is(err, service.ErrUnauthorized) {
				c.Response().Header().Set("WWW-Authenticate", "Bearer")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			if err != nil {
				return err
			}
			c.Set(ctxUserID, p.UserID)
			c.Set(ctxRole, p.Role.String())
			c.Set(ctxPrincipal, p)
			return next(c)
		}
	}
}

// CurrentPrincipal returns the caller stored by JWTAuth.
func CurrentPrincipal(c echo.Context) (service.Principal, bool) {
	p, ok := c.Get(ctxPrincipal).(service.Principal)
	return p, ok
}
