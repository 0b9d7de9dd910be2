package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/revature/expense-manager/internal/model"
)

// UserRepo reads the 'users' table.  It is the credential store used by
// login and token verification.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,password,role"

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// GetByUsername fetches a user by username.  Surrounding whitespace is
// ignored; case is significant.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", strings.TrimSpace(username))
	return scanUser(row)
}

// scanUser reads one users row and normalizes its role.  A row with an
// unknown role is an error rather than a user with no authority.
func scanUser(row *sql.Row) (model.User, error) {
	var (
		u    model.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Password, &role); err != nil {
		return model.User{}, err
	}
	parsed, err := model.ParseRole(role)
	if err != nil {
		return model.User{}, fmt.Errorf("load user %d: %w", u.ID, err)
	}
	u.Role = parsed
	return u, nil
}
