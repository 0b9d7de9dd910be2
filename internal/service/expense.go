package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/revature/expense-manager/internal/model"
)

// ExpenseStore lists joined expense views.  Every method returns rows
// ordered newest date first and a non-nil slice when nothing matches.
type ExpenseStore interface {
	ListAll(ctx context.Context) ([]model.ExpenseView, error)
	ListPending(ctx context.Context) ([]model.ExpenseView, error)
	ListByUser(ctx context.Context, userID int64) ([]model.ExpenseView, error)
	ListByDescription(ctx context.Context, substr string) ([]model.ExpenseView, error)
	ListByDateRange(ctx context.Context, start, end string) ([]model.ExpenseView, error)
}

// QueryProjector exposes the filtered expense listings used by both the
// JSON API and the CSV reports.  Store failures come back as *QueryError.
type QueryProjector struct {
	store ExpenseStore
}

func NewQueryProjector(store ExpenseStore) *QueryProjector {
	return &QueryProjector{store: store}
}

func (p *QueryProjector) AllExpenses(ctx context.Context) ([]model.ExpenseView, error) {
	views, err := p.store.ListAll(ctx)
	return wrapQuery(views, err, "finding expenses", "all expenses")
}

// PendingExpenses lists expenses whose approval is still pending.
func (p *QueryProjector) PendingExpenses(ctx context.Context) ([]model.ExpenseView, error) {
	views, err := p.store.ListPending(ctx)
	return wrapQuery(views, err, "finding expenses", "pending status")
}

// ExpensesByEmployee lists expenses owned by userID.  An id that matches no
// user is an empty listing, not an error.
func (p *QueryProjector) ExpensesByEmployee(ctx context.Context, userID int64) ([]model.ExpenseView, error) {
	if userID <= 0 {
		return nil, invalidInput("Invalid employee ID format")
	}
	views, err := p.store.ListByUser(ctx, userID)
	return wrapQuery(views, err, "finding expenses", fmt.Sprintf("employee %d", userID))
}

// ExpensesByCategory lists expenses whose description contains substr,
// matched case-sensitively and literally.
func (p *QueryProjector) ExpensesByCategory(ctx context.Context, substr string) ([]model.ExpenseView, error) {
	if strings.TrimSpace(substr) == "" {
		return nil, invalidInput("Category parameter is required")
	}
	views, err := p.store.ListByDescription(ctx, substr)
	return wrapQuery(views, err, "finding expenses", fmt.Sprintf("category %q", substr))
}

// ExpensesByDateRange lists expenses dated within [start, end], both
// inclusive and both YYYY-MM-DD.  A start after end yields an empty listing.
func (p *QueryProjector) ExpensesByDateRange(ctx context.Context, start, end string) ([]model.ExpenseView, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return nil, invalidInput("Both startDate and endDate query parameters are required (format: YYYY-MM-DD)")
	}
	if !validDate(start) || !validDate(end) {
		return nil, invalidInput("Invalid date format. Use YYYY-MM-DD format")
	}
	views, err := p.store.ListByDateRange(ctx, start, end)
	return wrapQuery(views, err, "finding expenses", fmt.Sprintf("date range %s to %s", start, end))
}

func validDate(s string) bool {
	_, err := time.Parse(model.DateLayout, s)
	return err == nil
}

func wrapQuery(views []model.ExpenseView, err error, op, criterion string) ([]model.ExpenseView, error) {
	if err != nil {
		return nil, &QueryError{Operation: op, Criterion: criterion, Err: err}
	}
	if views == nil {
		views = []model.ExpenseView{}
	}
	return views, nil
}
