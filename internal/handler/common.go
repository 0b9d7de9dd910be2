package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/revature/expense-manager/internal/logger"
	"github.com/revature/expense-manager/internal/service"
)

// requestTimeout bounds every data-store round trip made by a handler.
const requestTimeout = 5 * time.Second

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// fail writes the error envelope shared by every JSON endpoint.
func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg})
}

// parseID parses a positive decimal path parameter.
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// inputMessage returns the client-facing text of a validation error.
func inputMessage(err error) (string, bool) {
	var ie *service.InputError
	if errors.As(err, &ie) {
		return ie.Message, true
	}
	return "", false
}

// listResponse is the envelope of the JSON listing endpoints.
func listResponse(data any, count int) echo.Map {
	return echo.Map{"success": true, "data": data, "count": count}
}

// queryFailed reports a listing failure without leaking store details.
func queryFailed(c echo.Context, err error, msg string) error {
	if m, ok := inputMessage(err); ok {
		return fail(c, http.StatusBadRequest, m)
	}
	l := logger.FromContext(c.Request().Context())
	l.Error().Err(err).Msg(msg)
	return fail(c, http.StatusInternalServerError, msg)
}
