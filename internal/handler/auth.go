package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/revature/expense-manager/internal/logger"
	"github.com/revature/expense-manager/internal/middleware"
	"github.com/revature/expense-manager/internal/model"
	"github.com/revature/expense-manager/internal/service"
)

// AuthHandler serves manager login, logout and session status.
type AuthHandler struct {
	Auth         *service.AuthService
	Tokens       *service.TokenService
	CookieSecure bool
}

func NewAuthHandler(a *service.AuthService, t *service.TokenService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Auth: a, Tokens: t, CookieSecure: cookieSecure}
}

// ----- DTOs -----

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userPart struct {
	ID       int64      `json:"id"`
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
}

func toUserPart(u model.User) userPart {
	return userPart{ID: u.ID, Username: u.Username, Role: u.Role}
}

// Login authenticates a manager and sets the jwt cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request format")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, tok, err := h.Auth.LoginManager(ctx, req.Username, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidCredentials):
		return fail(c, http.StatusUnauthorized, err.Error())
	default:
		if m, ok := inputMessage(err); ok {
			return fail(c, http.StatusBadRequest, m)
		}
		l := logger.FromContext(ctx)
		l.Error().Err(err).Msg("login failed")
		return fail(c, http.StatusInternalServerError, "Login failed")
	}

	c.SetCookie(h.cookie(tok.Token, int(h.Tokens.TTL()/time.Second), tok.Exp))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Login successful",
		"user":    toUserPart(u),
	})
}

// Logout clears the jwt cookie.  It never fails.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.cookie("", -1, time.Unix(0, 0)))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Logged out successfully"})
}

// Status reports whether the caller's cookie identifies a manager.
func (h *AuthHandler) Status(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	u, ok := h.Tokens.VerifyManager(ctx, middleware.TokenFromCookie(c))
	if !ok {
		return c.JSON(http.StatusOK, echo.Map{"authenticated": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"authenticated": true, "user": toUserPart(u)})
}

func (h *AuthHandler) cookie(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
