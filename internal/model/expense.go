package model

import "github.com/shopspring/decimal"

// DateLayout is the storage and wire format of Expense.Date.  Dates in this
// layout sort lexicographically in calendar order.
const DateLayout = "2006-01-02"

// ReviewDateLayout is the format written to approvals.review_date.
const ReviewDateLayout = "2006-01-02 15:04:05"

// Expense mirrors the `expenses` table.  Rows are written by the
// submission application and are read-only here.
type Expense struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"userId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
}

// Status is the state of an approval record.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
)

// Approval mirrors the `approvals` table.  There is exactly one row per
// expense.  Reviewer, Comment and ReviewDate stay nil until a manager
// decides.
type Approval struct {
	ID         int64   `json:"id"`
	ExpenseID  int64   `json:"expenseId"`
	Status     Status  `json:"status"`
	Reviewer   *int64  `json:"reviewer"`
	Comment    *string `json:"comment"`
	ReviewDate *string `json:"reviewDate"`
}

// ExpenseView is the joined projection of an expense, its owner and its
// approval.  It is never persisted.
type ExpenseView struct {
	Expense  Expense  `json:"expense"`
	User     User     `json:"user"`
	Approval Approval `json:"approval"`
}
