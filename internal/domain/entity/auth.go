package entity

import (
	"time"

	"github.com/google/uuid"
)

// Authentication binds a user to one sign-in method. For the email provider
// ProviderUserID equals the email address and PasswordHash is set; for
// federated providers ProviderUserID is the provider-issued subject and
// PasswordHash stays empty.
type Authentication struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Provider       ProviderType
	ProviderUserID string
	PasswordHash   string
	CreatedAt      time.Time
}

// RefreshToken is a stored session refresh credential. Only the SHA-256 hash
// of the opaque token is persisted.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired reports whether the refresh token is past its expiry.
func (t *RefreshToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
