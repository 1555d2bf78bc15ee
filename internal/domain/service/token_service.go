package service

import (
	"time"

	"github.com/google/uuid"
)

// TokenClaims are the verified contents of an access token.
type TokenClaims struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// TokenPair is an issued session credential pair. The refresh token is opaque;
// only its hash is persisted.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService issues and validates session tokens.
type TokenService interface {
	// GenerateTokens issues a new access/refresh pair for a user.
	GenerateTokens(userID uuid.UUID, isAdmin bool) (*TokenPair, error)

	// ValidateAccessToken verifies an access token and returns its claims.
	ValidateAccessToken(token string) (*TokenClaims, error)

	// HashToken returns the storage hash of an opaque refresh token.
	HashToken(token string) string

	// RefreshTokenDuration returns the configured refresh token lifetime.
	RefreshTokenDuration() time.Duration
}
