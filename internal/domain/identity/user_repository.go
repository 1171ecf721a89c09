package identity

import (
	"context"
)

// UserRepository defines the persistence interface for users.
//
// Create must translate the storage engine's unique-constraint violation on
// email into shared.ErrAlreadyExists; registration relies on the insert
// attempt itself for uniqueness instead of a racy pre-check.
type UserRepository interface {
	Create(ctx context.Context, user *User) error

	// FindByEmail returns shared.ErrNotFound when no such account exists.
	FindByEmail(ctx context.Context, email string) (*User, error)
}
