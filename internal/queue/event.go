// Package queue defines message payloads exchanged over the message broker
// and the consumer for expense submissions.
package queue

const (
	// ReviewedQueue carries ExpenseReviewedEvent after every recorded decision.
	ReviewedQueue = "expense.reviewed"
	// SubmittedQueue carries ExpenseSubmittedEvent from the submission app.
	SubmittedQueue = "expense.submitted"
)

// ExpenseReviewedEvent is published when a manager approves or denies an
// expense.  It carries enough for downstream consumers to notify the
// employee without querying the primary database.
type ExpenseReviewedEvent struct {
	ExpenseID  int64   `json:"expense_id"`
	Status     string  `json:"status"`
	ReviewerID int64   `json:"reviewer_id"`
	Comment    *string `json:"comment,omitempty"`
	ReviewedAt string  `json:"reviewed_at"`
}

// ExpenseSubmittedEvent announces a newly stored expense that still needs
// its approval record.
type ExpenseSubmittedEvent struct {
	ExpenseID int64 `json:"expense_id"`
	UserID    int64 `json:"user_id"`
}
