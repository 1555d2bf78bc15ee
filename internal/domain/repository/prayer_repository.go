package repository

import (
	"context"

	"parish/internal/domain/entity"
)

// PrayerRepository defines the operations for prayer request persistence.
type PrayerRepository interface {
	// Create persists a new prayer request.
	Create(ctx context.Context, prayer *entity.PrayerRequest) error
}
