package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/revature/expense-manager/internal/model"
)

const testSecret = "test-secret"

var manager = model.User{ID: 1, Username: "manager1", Role: model.RoleManager}

func TestAccessToken_RoundTrip(t *testing.T) {
	now := time.Now()
	at, err := NewAccessToken(testSecret, manager, now, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if got := at.Exp.Sub(now.UTC()); got != 24*time.Hour {
		t.Errorf("Exp - now = %s, want 24h", got)
	}

	claims, err := ParseAccessToken(testSecret, at.Token, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	id, err := claims.UserID()
	if err != nil || id != 1 {
		t.Errorf("UserID() = %d, %v; want 1", id, err)
	}
	if claims.Username != "manager1" || claims.Role != "Manager" || claims.Issuer != TokenIssuer {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseAccessToken_Expired(t *testing.T) {
	issued := time.Now().Add(-25 * time.Hour)
	at, err := NewAccessToken(testSecret, manager, issued, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	_, err = ParseAccessToken(testSecret, at.Token, time.Now())
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("ParseAccessToken error = %v, want ErrTokenExpired", err)
	}
}

func TestParseAccessToken_WrongSecret(t *testing.T) {
	at, _ := NewAccessToken(testSecret, manager, time.Now(), time.Hour)
	if _, err := ParseAccessToken("other-secret", at.Token, time.Now()); err == nil {
		t.Error("token signed with another secret should not verify")
	}
}

func TestParseAccessToken_WrongIssuer(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseAccessToken(testSecret, raw, time.Now()); err == nil {
		t.Error("foreign issuer should not verify")
	}
}

func TestParseAccessToken_Garbage(t *testing.T) {
	for _, raw := range []string{"", "abc", "a.b.c"} {
		if _, err := ParseAccessToken(testSecret, raw, time.Now()); err == nil {
			t.Errorf("ParseAccessToken(%q) error = nil, want error", raw)
		}
	}
}

func TestClaims_UserID_Malformed(t *testing.T) {
	for _, sub := range []string{"", "abc", "0", "-4", "1.5"} {
		c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: sub}}
		if _, err := c.UserID(); !errors.Is(err, ErrMalformedSubject) {
			t.Errorf("UserID(%q) error = %v, want ErrMalformedSubject", sub, err)
		}
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	tests := []struct {
		name   string
		stored string
		plain  string
		want   bool
	}{
		{"plaintext match", "password123", "password123", true},
		{"plaintext mismatch", "password123", "password124", false},
		{"bcrypt match", string(hash), "password123", true},
		{"bcrypt mismatch", string(hash), "nope", false},
		{"empty attempt", "password123", "", false},
		{"empty stored", "", "password123", false},
		{"hash used as password", string(hash), string(hash), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifyPassword(tt.stored, tt.plain); got != tt.want {
				t.Errorf("VerifyPassword = %v, want %v", got, tt.want)
			}
		})
	}
}
