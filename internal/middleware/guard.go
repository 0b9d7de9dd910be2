package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/revature/expense-manager/internal/model"
)

// CookieName is the HTTP-only cookie that carries the identity token.
const CookieName = "jwt"

const managerKey = "manager"

// IdentityVerifier resolves a raw token to a live user.  VerifyManager only
// succeeds for users that currently hold the manager role.
type IdentityVerifier interface {
	Verify(ctx context.Context, raw string) (model.User, bool)
	VerifyManager(ctx context.Context, raw string) (model.User, bool)
}

// ManagerOnly admits requests whose jwt cookie belongs to a manager.  A
// valid token of a non-manager gets 403; a missing or invalid token gets
// 401.  The admitted manager is stored in the context for handlers
// (see AuthenticatedManager).
func ManagerOnly(v IdentityVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := TokenFromCookie(c)
			ctx := c.Request().Context()
			if u, ok := v.VerifyManager(ctx, raw); ok {
				c.Set(managerKey, u)
				return next(c)
			}
			if _, ok := v.Verify(ctx, raw); ok {
				return c.JSON(http.StatusForbidden, echo.Map{"success": false, "error": "Access denied - managers only"})
			}
			return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "Authentication required"})
		}
	}
}

// TokenFromCookie returns the jwt cookie value or "" when it is absent.
func TokenFromCookie(c echo.Context) string {
	ck, err := c.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return ck.Value
}

// AuthenticatedManager returns the manager admitted by ManagerOnly.
func AuthenticatedManager(c echo.Context) (model.User, bool) {
	u, ok := c.Get(managerKey).(model.User)
	return u, ok
}
