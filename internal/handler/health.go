package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Version is reported by the health check.
const Version = "1.0.0"

// Health is used by load balancers and monitoring to verify that the
// service is running.  It does not touch the database.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "healthy",
		"service": "expense-manager-api",
		"version": Version,
	})
}
