package users

import (
	"time"

	"github.com/uleam/vehicle-gate/internal/auth"
	"github.com/uleam/vehicle-gate/internal/rbac"
)

// User is the management view of an account. Secret hashes never leave the
// auth package.
type User struct {
	ID        int64      `json:"id"`
	Name      string     `json:"nombre"`
	Email     string     `json:"email"`
	Username  string     `json:"usuario"`
	Role      rbac.Role  `json:"rol"`
	IsActive  bool       `json:"activo"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

func fromAccount(u auth.User) User {
	return User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Username:  u.Username,
		Role:      u.Role,
		IsActive:  u.IsActive(),
		LastLogin: u.LastLogin,
	}
}
