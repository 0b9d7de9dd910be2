package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/revature/expense-manager/internal/model"
	"github.com/revature/expense-manager/internal/report"
	"github.com/revature/expense-manager/internal/service"
)

// ReportHandler serves CSV downloads of the expense listings.
type ReportHandler struct {
	Projector *service.QueryProjector
}

func NewReportHandler(p *service.QueryProjector) *ReportHandler {
	return &ReportHandler{Projector: p}
}

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func sendCSV(c echo.Context, filename string, views []model.ExpenseView) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/csv", []byte(report.Format(views)))
}

func (h *ReportHandler) All(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	views, err := h.Projector.AllExpenses(ctx)
	if err != nil {
		return queryFailed(c, err, "Failed to generate expenses report")
	}
	return sendCSV(c, "all_expenses_report.csv", views)
}

func (h *ReportHandler) Pending(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	views, err := h.Projector.PendingExpenses(ctx)
	if err != nil {
		return queryFailed(c, err, "Failed to generate pending expenses report")
	}
	return sendCSV(c, "pending_expenses_report.csv", views)
}

func (h *ReportHandler) ByEmployee(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return fail(c, http.StatusBadRequest, "Invalid employee ID format")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	views, err := h.Projector.ExpensesByEmployee(ctx, id)
	if err != nil {
		return queryFailed(c, err, "Failed to generate employee expenses report")
	}
	return sendCSV(c, fmt.Sprintf("employee_%d_expenses_report.csv", id), views)
}

// ByCategory matches the path segment against descriptions.  echo hands
// over a decoded segment unless the request carried a RawPath (for example
// an encoded slash), in which case the segment is still escaped.
func (h *ReportHandler) ByCategory(c echo.Context) error {
	category := c.Param("category")
	if c.Request().URL.RawPath != "" {
		dec, err := url.PathUnescape(category)
		if err != nil {
			return fail(c, http.StatusBadRequest, "Invalid category parameter")
		}
		category = dec
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	views, err := h.Projector.ExpensesByCategory(ctx, category)
	if err != nil {
		return queryFailed(c, err, "Failed to generate category expenses report")
	}
	safe := unsafeFilename.ReplaceAllString(category, "_")
	return sendCSV(c, "category_"+safe+"_expenses_report.csv", views)
}

// ByDateRange reads startDate and endDate (YYYY-MM-DD, inclusive) from the
// query string.
func (h *ReportHandler) ByDateRange(c echo.Context) error {
	start := strings.TrimSpace(c.QueryParam("startDate"))
	end := strings.TrimSpace(c.QueryParam("endDate"))
	ctx, cancel := requestContext(c)
	defer cancel()
	views, err := h.Projector.ExpensesByDateRange(ctx, start, end)
	if err != nil {
		return queryFailed(c, err, "Failed to generate date range expenses report")
	}
	return sendCSV(c, "expenses_"+start+"_to_"+end+"_report.csv", views)
}
