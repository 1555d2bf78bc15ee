package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Username  string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	FullName  string    `gorm:"type:varchar(255)"`
	IsAdmin   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for UserModel.
func (UserModel) TableName() string {
	return "users"
}
