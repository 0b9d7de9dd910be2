package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/revature/expense-manager/internal/handler"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only the health check, at both /health and
// /api/health.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.Health)
	e.GET("/api/health", handler.Health)
}

// RegisterAuth registers the session endpoints.  limit guards login against
// password guessing; logout and status are open to everyone.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	g.POST("/login", a.Login, limit)
	g.POST("/logout", a.Logout)
	g.GET("/status", a.Status)
}

// RegisterExpenses registers the manager-only JSON endpoints.  guard must
// run before cache so cached listings are never served to other callers.
func RegisterExpenses(e *echo.Echo, h *handler.ExpenseHandler, guard, cache echo.MiddlewareFunc) {
	g := e.Group("/api/expenses", guard)
	g.GET("", h.All, cache)
	g.GET("/pending", h.Pending, cache)
	g.GET("/employee/:id", h.ByEmployee, cache)
	g.POST("/:id/approve", h.Approve)
	g.POST("/:id/deny", h.Deny)
}

// RegisterReports registers the CSV downloads.  Filtered reports are served
// both as /api/reports/expenses/<filter>/csv and as
// /api/reports/expenses/csv/<filter>.
func RegisterReports(e *echo.Echo, h *handler.ReportHandler, guard, cache echo.MiddlewareFunc) {
	g := e.Group("/api/reports/expenses", guard, cache)
	g.GET("/csv", h.All)

	g.GET("/pending/csv", h.Pending)
	g.GET("/employee/:id/csv", h.ByEmployee)
	g.GET("/category/:category/csv", h.ByCategory)
	g.GET("/daterange/csv", h.ByDateRange)

	g.GET("/csv/pending", h.Pending)
	g.GET("/csv/employee/:id", h.ByEmployee)
	g.GET("/csv/category/:category", h.ByCategory)
	g.GET("/csv/daterange", h.ByDateRange)
}
