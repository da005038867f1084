package users

import (
	"context"
	"time"

	"github.com/Togather-Foundation/listings/internal/apperr"
	"github.com/Togather-Foundation/listings/internal/auth"
)

var (
	ErrNotFound    = apperr.New(apperr.ErrNotFound, "User not found.")
	ErrEmailTaken  = apperr.New(apperr.ErrConflict, "User already exists.")
	ErrBadPassword = apperr.New(apperr.ErrAuth, "Unable to authenticate the user")
)

// User is a stored identity. PasswordHash never leaves the process.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         auth.Role `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Claims is the public projection embedded in tokens and returned to clients.
func (u User) Claims() auth.Claims {
	return auth.Claims{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

type CreateParams struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         auth.Role
}

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
