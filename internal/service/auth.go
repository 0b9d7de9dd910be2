package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/revature/expense-manager/internal/model"
	"github.com/revature/expense-manager/internal/utils"
)

// ErrInvalidCredentials is returned for unknown users, wrong passwords and
// users without the manager role alike, so the response does not reveal
// which one failed.
var ErrInvalidCredentials = errors.New("Invalid credentials or user is not a manager")

// AuthService checks manager logins against the credential store.
type AuthService struct {
	users  CredentialStore
	tokens *TokenService
	log    zerolog.Logger
}

func NewAuthService(users CredentialStore, tokens *TokenService, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, log: log}
}

// LoginManager authenticates username/password and issues a token when the
// user is a manager.  Missing fields are an InputError; every credential
// failure is ErrInvalidCredentials; anything else is an internal error.
func (s *AuthService) LoginManager(ctx context.Context, username, password string) (model.User, utils.AccessToken, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return model.User{}, utils.AccessToken{}, invalidInput("Username and password are required")
	}
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, utils.AccessToken{}, ErrInvalidCredentials
		}
		return model.User{}, utils.AccessToken{}, err
	}
	if !utils.VerifyPassword(u.Password, password) || !u.IsManager() {
		s.log.Info().Str("username", username).Msg("manager login rejected")
		return model.User{}, utils.AccessToken{}, ErrInvalidCredentials
	}
	tok, err := s.tokens.Issue(u)
	if err != nil {
		return model.User{}, utils.AccessToken{}, err
	}
	return u, tok, nil
}
