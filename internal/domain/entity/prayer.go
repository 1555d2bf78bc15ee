package entity

import (
	"time"

	"github.com/google/uuid"
)

// PrayerRequest is a prayer submission from a member or visitor.
// Private requests are only shared with the intercessory team.
type PrayerRequest struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Subject   string
	Body      string
	Private   bool
	CreatedAt time.Time
}
