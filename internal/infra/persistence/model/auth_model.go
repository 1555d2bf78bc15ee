package model

import (
	"time"

	"github.com/google/uuid"
)

// AuthenticationModel is the GORM model for the user_authentications table.
// A user may hold several rows, one per sign-in provider.
type AuthenticationModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Provider       string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_auth_provider_provider_user_id"`
	ProviderUserID string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_auth_provider_provider_user_id"`
	PasswordHash   string    `gorm:"type:varchar(255)"`
	CreatedAt      time.Time
}

// TableName specifies the table name for AuthenticationModel.
func (AuthenticationModel) TableName() string {
	return "user_authentications"
}

// RefreshTokenModel is the GORM model for the refresh_tokens table.
type RefreshTokenModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	TokenHash string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

// TableName specifies the table name for RefreshTokenModel.
func (RefreshTokenModel) TableName() string {
	return "refresh_tokens"
}
