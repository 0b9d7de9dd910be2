package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/revature/expense-manager/internal/logger"
)

// RequestLogger logs one line per request and puts a request-scoped logger
// carrying the request id into the request context.  It expects echo's
// RequestID middleware to run first.
func RequestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid := c.Response().Header().Get(echo.HeaderXRequestID)

			reqLog := logger.WithFields(log, map[string]interface{}{"request_id": rid})
			c.SetRequest(req.WithContext(logger.WithContext(req.Context(), reqLog)))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			ev := reqLog.Info()
			if c.Response().Status >= 500 {
				ev = reqLog.Error().Err(err)
			}
			ev.Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Dur("duration", time.Since(start)).
				Str("remote_addr", c.RealIP()).
				Msg("HTTP request")
			return nil
		}
	}
}
