package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/revature/expense-manager/internal/model"
)

// ApprovalRepo persists the decision record attached to each expense.
type ApprovalRepo struct {
	db *sql.DB
}

// NewApprovalRepo returns a new ApprovalRepo bound to the given database.
func NewApprovalRepo(db *sql.DB) *ApprovalRepo { return &ApprovalRepo{db: db} }

// GetByExpenseID returns the approval of an expense or sql.ErrNoRows.
func (r *ApprovalRepo) GetByExpenseID(ctx context.Context, expenseID int64) (model.Approval, error) {
	const q = `SELECT id, expense_id, status, reviewer, comment, review_date FROM approvals WHERE expense_id = ?`
	var (
		a          model.Approval
		status     string
		reviewer   sql.NullInt64
		comment    sql.NullString
		reviewDate sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, expenseID).Scan(&a.ID, &a.ExpenseID, &status, &reviewer, &comment, &reviewDate)
	if err != nil {
		return model.Approval{}, err
	}
	a.Status = model.Status(status)
	if reviewer.Valid {
		id := reviewer.Int64
		a.Reviewer = &id
	}
	if comment.Valid {
		c := comment.String
		a.Comment = &c
	}
	if reviewDate.Valid {
		d := reviewDate.String
		a.ReviewDate = &d
	}
	return a, nil
}

// UpdateStatus stamps a decision on the approval of expenseID in a single
// UPDATE, so concurrent reviews of the same expense serialize on the row.
// It reports false when no approval row exists for the expense.  A nil
// comment clears any previous comment.
func (r *ApprovalRepo) UpdateStatus(ctx context.Context, expenseID int64, status model.Status, reviewerID int64, comment *string, reviewedAt time.Time) (bool, error) {
	const q = `UPDATE approvals SET status = ?, reviewer = ?, comment = ?, review_date = ? WHERE expense_id = ?`
	var c sql.NullString
	if comment != nil {
		c = sql.NullString{String: *comment, Valid: true}
	}
	res, err := r.db.ExecContext(ctx, q, string(status), reviewerID, c, reviewedAt.Format(model.ReviewDateLayout), expenseID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts the approval row for a newly submitted expense.  It
// returns ErrDuplicateApproval when the expense already has one.
func (r *ApprovalRepo) Create(ctx context.Context, expenseID int64, status model.Status) (model.Approval, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO approvals (expense_id, status) VALUES (?, ?)`, expenseID, string(status))
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return model.Approval{}, ErrDuplicateApproval
		}
		return model.Approval{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Approval{}, err
	}
	return model.Approval{ID: id, ExpenseID: expenseID, Status: status}, nil
}
