package repository

import (
	"context"
	"errors"

	"parish/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for refresh token persistence.
var (
	// ErrRefreshTokenNotFound is returned when a refresh token is not found.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	// ErrRefreshTokenExpired is returned when a refresh token has expired.
	ErrRefreshTokenExpired = errors.New("refresh token has expired")
)

// RefreshTokenRepository defines the interface for refresh token and session management.
type RefreshTokenRepository interface {
	// CreateRefreshToken persists a new refresh token, representing a user session.
	CreateRefreshToken(ctx context.Context, token *entity.RefreshToken) error

	// FindRefreshTokenByHash retrieves a refresh token record by its stored hash.
	FindRefreshTokenByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error)

	// DeleteRefreshTokenByHash deletes a refresh token by its hash, ending a session.
	DeleteRefreshTokenByHash(ctx context.Context, tokenHash string) error

	// DeleteRefreshTokensByUserID removes all refresh tokens for a specific user.
	DeleteRefreshTokensByUserID(ctx context.Context, userID uuid.UUID) error

	// DeleteExpiredRefreshTokens removes all expired refresh tokens from the database.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}
