package model

import (
	"time"

	"github.com/google/uuid"
)

// PrayerRequestModel is the GORM model for the prayer_requests table.
type PrayerRequestModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Email     string    `gorm:"type:varchar(255);not null"`
	Subject   string    `gorm:"type:varchar(255);not null"`
	Body      string    `gorm:"type:text;not null"`
	Private   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
}

// TableName specifies the table name for PrayerRequestModel.
func (PrayerRequestModel) TableName() string {
	return "prayer_requests"
}
