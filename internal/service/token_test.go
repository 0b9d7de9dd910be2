package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/revature/expense-manager/internal/model"
	"github.com/revature/expense-manager/internal/utils"
)

// fakeUsers is an in-memory CredentialStore.
type fakeUsers struct {
	byID   map[int64]model.User
	err    error
	lookup int
}

func newFakeUsers(users ...model.User) *fakeUsers {
	f := &fakeUsers{byID: map[int64]model.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (model.User, error) {
	f.lookup++
	if f.err != nil {
		return model.User{}, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (model.User, error) {
	f.lookup++
	if f.err != nil {
		return model.User{}, f.err
	}
	for _, u := range f.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

const testSecret = "test-secret"

var (
	manager  = model.User{ID: 1, Username: "manager1", Password: "password123", Role: model.RoleManager}
	employee = model.User{ID: 2, Username: "employee1", Password: "password123", Role: model.RoleEmployee}
)

func newTestTokens(users CredentialStore, now time.Time) *TokenService {
	s := NewTokenService(testSecret, 24*time.Hour, users, zerolog.Nop())
	s.now = func() time.Time { return now }
	return s
}

func TestTokenService_IssueVerify(t *testing.T) {
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	users := newFakeUsers(manager, employee)
	s := newTestTokens(users, now)

	tok, err := s.Issue(manager)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !tok.Exp.Equal(now.Add(24 * time.Hour)) {
		t.Fatalf("Exp = %v, want %v", tok.Exp, now.Add(24*time.Hour))
	}

	u, ok := s.Verify(context.Background(), tok.Token)
	if !ok || u.ID != manager.ID || u.Username != "manager1" {
		t.Fatalf("Verify = %+v, %v", u, ok)
	}
	if _, ok := s.VerifyManager(context.Background(), tok.Token); !ok {
		t.Fatal("VerifyManager rejected a manager token")
	}
}

func TestTokenService_VerifyRejects(t *testing.T) {
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	users := newFakeUsers(manager, employee)
	s := newTestTokens(users, now)
	valid, _ := s.Issue(manager)
	ghost, _ := s.Issue(model.User{ID: 99, Username: "ghost", Role: model.RoleManager})
	other := NewTokenService("other-secret", time.Hour, users, zerolog.Nop())
	other.now = s.now
	forged, _ := other.Issue(manager)

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"garbage", "not-a-jwt"},
		{"wrong secret", forged.Token},
		{"deleted user", ghost.Token},
		{"tampered", valid.Token + "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if u, ok := s.Verify(context.Background(), tt.raw); ok {
				t.Fatalf("Verify accepted %q as %+v", tt.raw, u)
			}
		})
	}

	t.Run("expired", func(t *testing.T) {
		s.now = func() time.Time { return now.Add(25 * time.Hour) }
		defer func() { s.now = func() time.Time { return now } }()
		if _, ok := s.Verify(context.Background(), valid.Token); ok {
			t.Fatal("Verify accepted an expired token")
		}
	})
}

func TestTokenService_VerifyManager_RoleChangeAndEmployee(t *testing.T) {
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	users := newFakeUsers(manager, employee)
	s := newTestTokens(users, now)

	empTok, _ := s.Issue(employee)
	if _, ok := s.Verify(context.Background(), empTok.Token); !ok {
		t.Fatal("Verify rejected a valid employee token")
	}
	if _, ok := s.VerifyManager(context.Background(), empTok.Token); ok {
		t.Fatal("VerifyManager accepted an employee token")
	}

	mgrTok, _ := s.Issue(manager)
	demoted := manager
	demoted.Role = model.RoleEmployee
	users.byID[manager.ID] = demoted
	if _, ok := s.VerifyManager(context.Background(), mgrTok.Token); ok {
		t.Fatal("VerifyManager accepted a token of a demoted manager")
	}
}

func TestTokenService_VerifyStoreFailure(t *testing.T) {
	now := time.Now()
	users := newFakeUsers(manager)
	s := newTestTokens(users, now)
	tok, _ := s.Issue(manager)
	users.err = errors.New("connection refused")
	if _, ok := s.Verify(context.Background(), tok.Token); ok {
		t.Fatal("Verify accepted a token while the store was failing")
	}
}

func TestNewTokenService_DefaultTTL(t *testing.T) {
	s := NewTokenService(testSecret, 0, newFakeUsers(), zerolog.Nop())
	if s.TTL() != 24*time.Hour {
		t.Fatalf("TTL = %v, want 24h", s.TTL())
	}
}

func TestAuthService_LoginManager(t *testing.T) {
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	users := newFakeUsers(manager, employee)
	tokens := newTestTokens(users, now)
	a := NewAuthService(users, tokens, zerolog.Nop())

	u, tok, err := a.LoginManager(context.Background(), "manager1", "password123")
	if err != nil {
		t.Fatalf("LoginManager: %v", err)
	}
	if u.ID != manager.ID || tok.Token == "" {
		t.Fatalf("LoginManager = %+v, %+v", u, tok)
	}
	claims, err := utils.ParseAccessToken(testSecret, tok.Token, now)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.Subject != "1" || claims.Role != "Manager" {
		t.Fatalf("claims = %+v", claims)
	}

	tests := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"missing username", "", "x", ErrInvalidInput},
		{"missing password", "manager1", "", ErrInvalidInput},
		{"unknown user", "nobody", "x", ErrInvalidCredentials},
		{"wrong password", "manager1", "nope", ErrInvalidCredentials},
		{"employee", "employee1", "password123", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := a.LoginManager(context.Background(), tt.username, tt.password)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	t.Run("store failure", func(t *testing.T) {
		users.err = errors.New("db down")
		defer func() { users.err = nil }()
		_, _, err := a.LoginManager(context.Background(), "manager1", "password123")
		if err == nil || errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("err = %v, want internal error", err)
		}
	})
}
