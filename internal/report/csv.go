// Package report renders expense views as CSV documents.
package report

import (
	"strconv"
	"strings"

	"github.com/revature/expense-manager/internal/model"
)

// Header is the first line of every report.
const Header = "Expense ID,Employee,Amount,Description,Date,Status,Reviewer,Comment,Review Date\n"

// Format renders views as CSV, one line per view in the given order.  Every
// line, the header included, ends with a newline.  Missing reviewer,
// comment and review date render as empty fields.
func Format(views []model.ExpenseView) string {
	var b strings.Builder
	b.WriteString(Header)
	for _, v := range views {
		writeRow(&b, v)
	}
	return b.String()
}

func writeRow(b *strings.Builder, v model.ExpenseView) {
	reviewer := ""
	if v.Approval.Reviewer != nil {
		reviewer = strconv.FormatInt(*v.Approval.Reviewer, 10)
	}
	fields := [...]string{
		strconv.FormatInt(v.Expense.ID, 10),
		v.User.Username,
		v.Expense.Amount.String(),
		v.Expense.Description,
		v.Expense.Date,
		string(v.Approval.Status),
		reviewer,
		deref(v.Approval.Comment),
		deref(v.Approval.ReviewDate),
	}
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(Escape(f))
	}
	b.WriteByte('\n')
}

// Escape quotes s when it contains a comma, a double quote or a line feed,
// doubling any inner quotes.  Other values are returned unchanged.
func Escape(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
