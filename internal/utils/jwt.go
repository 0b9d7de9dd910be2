package utils // package utils provides helper functions for token signing and password checks

import (
	"errors"
	"strconv" // subject claim is the decimal user id
	"time"    // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens

	"github.com/revature/expense-manager/internal/model"
)

// TokenIssuer is written to and required in the iss claim.
const TokenIssuer = "expense-manager"

// ErrMalformedSubject is returned when a correctly signed token carries a
// subject that is not a user id.
var ErrMalformedSubject = errors.New("token subject is not a user id")

// Claims is the identity carried by a token: the user id in sub plus the
// username and role at issuance time.  The role is informational; access
// decisions re-read the user.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrMalformedSubject
	}
	return id, nil
}

// AccessToken represents a signed JWT along with its expiry.  The Token
// field is what travels in the jwt cookie.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a user.  issuedAt is
// passed in rather than read from the clock so callers can control time.
func NewAccessToken(secret string, u model.User, issuedAt time.Time, ttl time.Duration) (AccessToken, error) {
	issuedAt = issuedAt.UTC()
	exp := issuedAt.Add(ttl)
	claims := Claims{
		Username: u.Username,
		Role:     string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies signature, algorithm, issuer and expiry of raw
// against the clock value now and returns its claims.
func ParseAccessToken(secret, raw string, now time.Time) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
