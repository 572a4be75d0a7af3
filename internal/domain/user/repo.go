package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no user matches a lookup.
var ErrNotFound = errors.New("user not found")

// ErrEmailTaken is returned when creating a user with an existing email.
var ErrEmailTaken = errors.New("email address already registered")

// Repository provides access to staff accounts.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	Insert(ctx context.Context, u *User) error
	List(ctx context.Context, limit, offset int) ([]*User, error)
}
