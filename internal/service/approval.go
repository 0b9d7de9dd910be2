package service

import (
	"context"
	"time"

	"github.com/revature/expense-manager/internal/model"
)

// ApprovalStore applies a review decision to the approval of one expense.
// UpdateStatus reports whether a row matched.
type ApprovalStore interface {
	UpdateStatus(ctx context.Context, expenseID int64, status model.Status, reviewerID int64, comment *string, reviewedAt time.Time) (bool, error)
}

// Outcome distinguishes a decision that was recorded from one that had no
// approval record to land on.
type Outcome int

const (
	OutcomeApplied Outcome = iota + 1
	OutcomeNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Decision is a review as it was written to the data store.
type Decision struct {
	ExpenseID  int64
	Status     model.Status
	ReviewerID int64
	Comment    *string
	ReviewedAt time.Time
}

// ApprovalEngine records manager decisions.  A decision overwrites whatever
// the approval held before, so re-deciding an already reviewed expense
// succeeds and the last write wins.
type ApprovalEngine struct {
	store ApprovalStore
	now   func() time.Time
}

func NewApprovalEngine(store ApprovalStore) *ApprovalEngine {
	return &ApprovalEngine{store: store, now: time.Now}
}

// Approve marks the expense approved by managerID.
func (e *ApprovalEngine) Approve(ctx context.Context, expenseID, managerID int64, comment *string) (Decision, Outcome, error) {
	return e.decide(ctx, expenseID, managerID, model.StatusApproved, comment)
}

// Deny marks the expense denied by managerID.
func (e *ApprovalEngine) Deny(ctx context.Context, expenseID, managerID int64, comment *string) (Decision, Outcome, error) {
	return e.decide(ctx, expenseID, managerID, model.StatusDenied, comment)
}

func (e *ApprovalEngine) decide(ctx context.Context, expenseID, managerID int64, status model.Status, comment *string) (Decision, Outcome, error) {
	if expenseID <= 0 {
		return Decision{}, 0, invalidInput("Invalid expense ID")
	}
	if managerID <= 0 {
		return Decision{}, 0, invalidInput("Invalid reviewer ID")
	}
	d := Decision{
		ExpenseID:  expenseID,
		Status:     status,
		ReviewerID: managerID,
		Comment:    comment,
		ReviewedAt: e.now().UTC().Truncate(time.Second),
	}
	ok, err := e.store.UpdateStatus(ctx, d.ExpenseID, d.Status, d.ReviewerID, d.Comment, d.ReviewedAt)
	if err != nil {
		return Decision{}, 0, err
	}
	if !ok {
		return Decision{}, OutcomeNotFound, nil
	}
	return d, OutcomeApplied, nil
}
