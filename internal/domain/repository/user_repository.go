package repository

import (
	"context"
	"errors"

	"parish/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the standard operations for user persistence.
// The application layer will depend on this interface, not the concrete implementation.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single user by their email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByUsername retrieves a single user by their username.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// Create persists a new user entity to the storage.
	Create(ctx context.Context, user *entity.User) error

	// Update modifies an existing user entity in the storage.
	Update(ctx context.Context, user *entity.User) error
}
