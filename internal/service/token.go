package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/revature/expense-manager/internal/model"
	"github.com/revature/expense-manager/internal/utils"
)

// CredentialStore looks users up by id or username.  Lookups that match
// nothing return sql.ErrNoRows.
type CredentialStore interface {
	GetByID(ctx context.Context, id int64) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
}

// TokenService issues identity tokens and resolves them back to live users.
type TokenService struct {
	secret string
	ttl    time.Duration
	users  CredentialStore
	log    zerolog.Logger
	now    func() time.Time
}

// NewTokenService returns a TokenService signing with secret.  A
// non-positive ttl falls back to 24 hours.
func NewTokenService(secret string, ttl time.Duration, users CredentialStore, log zerolog.Logger) *TokenService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{secret: secret, ttl: ttl, users: users, log: log, now: time.Now}
}

// TTL is the lifetime of issued tokens.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token for u valid from now for the configured lifetime.
func (s *TokenService) Issue(u model.User) (utils.AccessToken, error) {
	return utils.NewAccessToken(s.secret, u, s.now(), s.ttl)
}

// Verify resolves raw to the user it was issued for.  Empty, forged,
// expired and malformed tokens, and tokens of users that no longer exist,
// all yield ok == false.  The user is always re-read from the credential
// store so a role change takes effect before the token expires.
func (s *TokenService) Verify(ctx context.Context, raw string) (model.User, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.User{}, false
	}
	claims, err := utils.ParseAccessToken(s.secret, raw, s.now())
	if err != nil {
		return model.User{}, false
	}
	id, err := claims.UserID()
	if err != nil {
		return model.User{}, false
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.Error().Err(err).Int64("user_id", id).Msg("token subject lookup failed")
		}
		return model.User{}, false
	}
	return u, true
}

// VerifyManager is Verify restricted to users that currently hold the
// manager role.
func (s *TokenService) VerifyManager(ctx context.Context, raw string) (model.User, bool) {
	u, ok := s.Verify(ctx, raw)
	if !ok || !u.IsManager() {
		return model.User{}, false
	}
	return u, true
}
