package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/revature/expense-manager/internal/model"
)

// ExpenseRepo provides the read side of the data store: expense point
// lookups and the joined expense/user/approval listings used by the
// dashboard and the CSV reports.
type ExpenseRepo struct {
	db *sql.DB
}

// NewExpenseRepo returns a new ExpenseRepo bound to the given database.
func NewExpenseRepo(db *sql.DB) *ExpenseRepo { return &ExpenseRepo{db: db} }

// viewSelect joins every expense with its owner and its approval.  Inner
// joins drop rows where either leg is missing, so a listing never carries
// a half-populated view.
const viewSelect = `SELECT e.id, e.user_id, e.amount, e.description, e.date,
       u.username, u.role,
       a.id, a.status, a.reviewer, a.comment, a.review_date
FROM expenses e
JOIN users u     ON u.id = e.user_id
JOIN approvals a ON a.expense_id = e.id`

// viewOrder sorts newest first.  The id tiebreak keeps equal dates stable
// between calls.
const viewOrder = ` ORDER BY e.date DESC, e.id DESC`

// GetByID returns a single expense.  sql.ErrNoRows is returned when it
// does not exist.
func (r *ExpenseRepo) GetByID(ctx context.Context, id int64) (model.Expense, error) {
	var e model.Expense
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, amount, description, date FROM expenses WHERE id = ?`, id).
		Scan(&e.ID, &e.UserID, &e.Amount, &e.Description, &e.Date)
	return e, err
}

// ListAll returns every expense view.
func (r *ExpenseRepo) ListAll(ctx context.Context) ([]model.ExpenseView, error) {
	return r.listViews(ctx, "")
}

// ListPending returns views whose approval is still pending.
func (r *ExpenseRepo) ListPending(ctx context.Context) ([]model.ExpenseView, error) {
	return r.listViews(ctx, "a.status = ?", string(model.StatusPending))
}

// ListByUser returns the views of one employee.  An unknown user id yields
// an empty slice.
func (r *ExpenseRepo) ListByUser(ctx context.Context, userID int64) ([]model.ExpenseView, error) {
	return r.listViews(ctx, "e.user_id = ?", userID)
}

// ListByDescription returns views whose description contains substr.  The
// match is case-sensitive (binary collation) and wildcard characters in
// substr are matched literally.
func (r *ExpenseRepo) ListByDescription(ctx context.Context, substr string) ([]model.ExpenseView, error) {
	return r.listViews(ctx, "e.description COLLATE utf8mb4_bin LIKE ?", "%"+escapeLike(substr)+"%")
}

// ListByDateRange returns views dated between start and end, both
// inclusive.  Dates are compared as YYYY-MM-DD strings.
func (r *ExpenseRepo) ListByDateRange(ctx context.Context, start, end string) ([]model.ExpenseView, error) {
	return r.listViews(ctx, "e.date >= ? AND e.date <= ?", start, end)
}

// listViews runs viewSelect with an optional WHERE clause and scans every
// row.  The result is never nil so JSON encodes an empty list as [].
func (r *ExpenseRepo) listViews(ctx context.Context, where string, args ...any) ([]model.ExpenseView, error) {
	q := viewSelect
	if where != "" {
		q += "\nWHERE " + where
	}
	q += viewOrder

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ExpenseView, 0)
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanView(rows *sql.Rows) (model.ExpenseView, error) {
	var (
		v          model.ExpenseView
		role       string
		status     string
		reviewer   sql.NullInt64
		comment    sql.NullString
		reviewDate sql.NullString
	)
	if err := rows.Scan(
		&v.Expense.ID, &v.Expense.UserID, &v.Expense.Amount, &v.Expense.Description, &v.Expense.Date,
		&v.User.Username, &role,
		&v.Approval.ID, &status, &reviewer, &comment, &reviewDate,
	); err != nil {
		return model.ExpenseView{}, err
	}
	parsed, err := model.ParseRole(role)
	if err != nil {
		return model.ExpenseView{}, fmt.Errorf("expense %d owner: %w", v.Expense.ID, err)
	}
	v.User.ID = v.Expense.UserID
	v.User.Role = parsed
	v.Approval.ExpenseID = v.Expense.ID
	v.Approval.Status = model.Status(status)
	if reviewer.Valid {
		id := reviewer.Int64
		v.Approval.Reviewer = &id
	}
	if comment.Valid {
		c := comment.String
		v.Approval.Comment = &c
	}
	if reviewDate.Valid {
		d := reviewDate.String
		v.Approval.ReviewDate = &d
	}
	return v, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
