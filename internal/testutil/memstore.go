// Package testutil provides an in-memory data store for HTTP-level tests.
package testutil

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/revature/expense-manager/internal/model"
)

// MemStore implements the credential store, the expense listings and the
// approval update over plain slices.  Set Err to make every call fail.
type MemStore struct {
	mu       sync.Mutex
	Users    map[int64]model.User
	Expenses []model.Expense
	Approval map[int64]model.Approval // keyed by expense id
	Err      error
}

// Seed returns the store used by the HTTP scenarios: one manager, two
// employees and three expenses, the first of which is already approved.
func Seed() *MemStore {
	s := &MemStore{
		Users: map[int64]model.User{
			1: {ID: 1, Username: "manager1", Password: "password123", Role: model.RoleManager},
			2: {ID: 2, Username: "employee1", Password: "password123", Role: model.RoleEmployee},
			3: {ID: 3, Username: "employee2", Password: "password123", Role: model.RoleEmployee},
		},
		Expenses: []model.Expense{
			{ID: 1, UserID: 2, Amount: decimal.RequireFromString("150.00"), Description: "Business travel", Date: "2025-01-05"},
			{ID: 2, UserID: 2, Amount: decimal.RequireFromString("25.50"), Description: "Office supplies", Date: "2025-01-06"},
			{ID: 3, UserID: 3, Amount: decimal.RequireFromString("80.00"), Description: "Client dinner, downtown", Date: "2025-01-07"},
		},
		Approval: map[int64]model.Approval{},
	}
	one := int64(1)
	c, rd := "ok", "2025-01-06 10:00:00"
	s.Approval[1] = model.Approval{ID: 1, ExpenseID: 1, Status: model.StatusApproved, Reviewer: &one, Comment: &c, ReviewDate: &rd}
	s.Approval[2] = model.Approval{ID: 2, ExpenseID: 2, Status: model.StatusPending}
	s.Approval[3] = model.Approval{ID: 3, ExpenseID: 3, Status: model.StatusPending}
	return s
}

func (s *MemStore) GetByID(_ context.Context, id int64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return model.User{}, s.Err
	}
	u, ok := s.Users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *MemStore) GetByUsername(_ context.Context, username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return model.User{}, s.Err
	}
	for _, u := range s.Users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (s *MemStore) UpdateStatus(_ context.Context, expenseID int64, status model.Status, reviewerID int64, comment *string, reviewedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	a, ok := s.Approval[expenseID]
	if !ok {
		return false, nil
	}
	rd := reviewedAt.UTC().Format(model.ReviewDateLayout)
	a.Status, a.Reviewer, a.Comment, a.ReviewDate = status, &reviewerID, comment, &rd
	s.Approval[expenseID] = a
	return true, nil
}

func (s *MemStore) ListAll(context.Context) ([]model.ExpenseView, error) {
	return s.list(func(model.ExpenseView) bool { return true })
}

func (s *MemStore) ListPending(context.Context) ([]model.ExpenseView, error) {
	return s.list(func(v model.ExpenseView) bool { return v.Approval.Status == model.StatusPending })
}

func (s *MemStore) ListByUser(_ context.Context, userID int64) ([]model.ExpenseView, error) {
	return s.list(func(v model.ExpenseView) bool { return v.Expense.UserID == userID })
}

func (s *MemStore) ListByDescription(_ context.Context, substr string) ([]model.ExpenseView, error) {
	return s.list(func(v model.ExpenseView) bool { return strings.Contains(v.Expense.Description, substr) })
}

func (s *MemStore) ListByDateRange(_ context.Context, start, end string) ([]model.ExpenseView, error) {
	return s.list(func(v model.ExpenseView) bool { return v.Expense.Date >= start && v.Expense.Date <= end })
}

// list joins expenses with their owner and approval, skipping rows with a
// missing leg, newest date first.
func (s *MemStore) list(keep func(model.ExpenseView) bool) ([]model.ExpenseView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []model.ExpenseView{}
	for _, e := range s.Expenses {
		u, ok := s.Users[e.UserID]
		if !ok {
			continue
		}
		a, ok := s.Approval[e.ID]
		if !ok {
			continue
		}
		v := model.ExpenseView{Expense: e, User: u, Approval: a}
		if keep(v) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Expense.Date != out[j].Expense.Date {
			return out[i].Expense.Date > out[j].Expense.Date
		}
		return out[i].Expense.ID > out[j].Expense.ID
	})
	return out, nil
}

// ApprovalOf returns the current approval of expenseID.
func (s *MemStore) ApprovalOf(expenseID int64) model.Approval {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Approval[expenseID]
}
