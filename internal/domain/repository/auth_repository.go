package repository

import (
	"context"
	"errors"

	"parish/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrAuthNotFound is returned when no authentication record matches the lookup.
var ErrAuthNotFound = errors.New("authentication record not found")

// AuthRepository defines the operations for authentication identity persistence.
type AuthRepository interface {
	// CreateAuthentication persists a new authentication identity for a user.
	CreateAuthentication(ctx context.Context, auth *entity.Authentication) error

	// FindByProviderID retrieves the identity matching a provider and its
	// provider-side user ID. This is the primary federated sign-in lookup.
	FindByProviderID(ctx context.Context, provider entity.ProviderType, providerUserID string) (*entity.Authentication, error)

	// FindByUserIDAndProvider retrieves a user's identity for one provider.
	FindByUserIDAndProvider(ctx context.Context, userID uuid.UUID, provider entity.ProviderType) (*entity.Authentication, error)

	// ListByUserID retrieves all identities attached to a user.
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Authentication, error)
}
