package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/revature/expense-manager/internal/middleware"
	"github.com/revature/expense-manager/internal/model"
	"github.com/revature/expense-manager/internal/service"
)

// ReviewNotifier is told about every recorded decision.
type ReviewNotifier interface {
	PublishReviewed(ctx context.Context, d service.Decision) error
}

// CacheInvalidator drops cached listings after the data changed.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// ExpenseHandler serves the manager's JSON listings and review actions.
// Notifier and Cache are optional.
type ExpenseHandler struct {
	Projector *service.QueryProjector
	Engine    *service.ApprovalEngine
	Notifier  ReviewNotifier
	Cache     CacheInvalidator
	Log       zerolog.Logger
}

func NewExpenseHandler(p *service.QueryProjector, e *service.ApprovalEngine, n ReviewNotifier, cache CacheInvalidator, log zerolog.Logger) *ExpenseHandler {
	return &ExpenseHandler{Projector: p, Engine: e, Notifier: n, Cache: cache, Log: log}
}

type reviewReq struct {
	Comment *string `json:"comment"`
}

// Pending lists expenses awaiting review.
func (h *ExpenseHandler) Pending(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	views, err := h.Projector.PendingExpenses(ctx)
	if err != nil {
		return queryFailed(c, err, "Failed to retrieve pending expenses")
	}
	return c.JSON(http.StatusOK, listResponse(views, len(views)))
}

// All lists every expense regardless of status.
func (h *ExpenseHandler) All(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	views, err := h.Projector.AllExpenses(ctx)
	if err != nil {
		return queryFailed(c, err, "Failed to retrieve expenses")
	}
	return c.JSON(http.StatusOK, listResponse(views, len(views)))
}

// ByEmployee lists the expenses of one employee.
func (h *ExpenseHandler) ByEmployee(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return fail(c, http.StatusBadRequest, "Invalid employee ID format")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	views, err := h.Projector.ExpensesByEmployee(ctx, id)
	if err != nil {
		return queryFailed(c, err, "Failed to retrieve expenses for employee")
	}
	resp := listResponse(views, len(views))
	resp["employeeId"] = id
	return c.JSON(http.StatusOK, resp)
}

func (h *ExpenseHandler) Approve(c echo.Context) error {
	return h.review(c, model.StatusApproved)
}

func (h *ExpenseHandler) Deny(c echo.Context) error {
	return h.review(c, model.StatusDenied)
}

// review records a decision for the expense in the path.  The comment body
// is optional; an unreadable body means no comment.
func (h *ExpenseHandler) review(c echo.Context, status model.Status) error {
	verb, past := "approve", "approved"
	if status == model.StatusDenied {
		verb, past = "deny", "denied"
	}

	id, ok := parseID(c.Param("id"))
	if !ok {
		return fail(c, http.StatusBadRequest, "Invalid expense ID format")
	}
	mgr, ok := middleware.AuthenticatedManager(c)
	if !ok {
		return fail(c, http.StatusInternalServerError, "Failed to "+verb+" expense")
	}
	var req reviewReq
	_ = c.Bind(&req)

	ctx, cancel := requestContext(c)
	defer cancel()

	var (
		d   service.Decision
		out service.Outcome
		err error
	)
	if status == model.StatusApproved {
		d, out, err = h.Engine.Approve(ctx, id, mgr.ID, req.Comment)
	} else {
		d, out, err = h.Engine.Deny(ctx, id, mgr.ID, req.Comment)
	}
	if err != nil {
		if m, ok := inputMessage(err); ok {
			return fail(c, http.StatusBadRequest, m)
		}
		h.Log.Error().Err(err).Int64("expense_id", id).Msg("review failed")
		return fail(c, http.StatusInternalServerError, "Failed to "+verb+" expense")
	}
	if out == service.OutcomeNotFound {
		return fail(c, http.StatusNotFound, "Expense not found or could not be "+past)
	}

	h.afterReview(ctx, d)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Expense " + past + " successfully"})
}

// afterReview drops cached listings and publishes the review event.  Both
// are best effort: the decision is already stored.
func (h *ExpenseHandler) afterReview(ctx context.Context, d service.Decision) {
	if h.Cache != nil {
		if err := h.Cache.Invalidate(ctx); err != nil {
			h.Log.Warn().Err(err).Msg("cache invalidation failed")
		}
	}
	if h.Notifier == nil {
		return
	}
	go func() {
		pctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.Notifier.PublishReviewed(pctx, d); err != nil {
			h.Log.Warn().Err(err).Int64("expense_id", d.ExpenseID).Msg("review event not published")
		}
	}()
}
