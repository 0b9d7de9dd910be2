package model

import (
	"fmt"
	"strings"
)

// Role is the closed set of user roles understood by the approval backend.
// Values are normalized when a users row is loaded so comparisons elsewhere
// are plain equality.
type Role string

const (
	RoleManager  Role = "Manager"
	RoleEmployee Role = "Employee"
)

// ParseRole maps a stored role string onto a Role.  The comparison is
// case-insensitive and ignores surrounding whitespace; anything else is an
// error so a corrupt row is rejected at load time.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "manager":
		return RoleManager, nil
	case "employee":
		return RoleEmployee, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// User represents an application user record as stored in the `users`
// table.  Users are created by the employee-facing application; this
// service only reads them.
//
// Fields:
//
//	ID       – primary key identifier of the user.
//	Username – unique login name.
//	Password – stored credential (bcrypt hash, or plaintext for legacy rows).
//	Role     – normalized role.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"`
	Role     Role   `json:"role"`
}

// IsManager reports whether the user holds approval authority.
func (u User) IsManager() bool { return u.Role == RoleManager }
