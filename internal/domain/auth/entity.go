// internal/domain/auth/entity.go
package auth

import (
	"context"
	"time"
)

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// User is an admin panel account. PasswordHash never leaves the auth service.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password"`
	Name         string    `json:"name" db:"name"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Summary is the public view of a user embedded in tokens and login responses.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// UserRepository is the credential store.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	Count(ctx context.Context) (int64, error)
}
