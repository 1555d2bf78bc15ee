package postgres

import (
	"context"

	"parish/internal/domain/entity"
	domainerrors "parish/internal/domain/errors"
	"parish/internal/domain/repository"
	"parish/internal/infra/persistence/model"

	"gorm.io/gorm"
)

// prayerRepository implements the domain.PrayerRepository interface.
type prayerRepository struct {
	db *gorm.DB
}

// NewPrayerRepository is the constructor for prayerRepository.
func NewPrayerRepository(db *gorm.DB) repository.PrayerRepository {
	return &prayerRepository{db: db}
}

// Create persists a new prayer request.
func (repo *prayerRepository) Create(ctx context.Context, prayer *entity.PrayerRequest) error {
	prayerM := fromPrayerDomain(prayer)

	if err := repo.db.WithContext(ctx).Create(prayerM).Error; err != nil {
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required prayer request fields")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create prayer request")
	}

	prayer.ID = prayerM.ID
	prayer.CreatedAt = prayerM.CreatedAt

	return nil
}

// --- Mapper Functions ---

func fromPrayerDomain(data *entity.PrayerRequest) *model.PrayerRequestModel {
	if data == nil {
		return nil
	}

	return &model.PrayerRequestModel{
		ID:      data.ID,
		Name:    data.Name,
		Email:   data.Email,
		Subject: data.Subject,
		Body:    data.Body,
		Private: data.Private,
	}
}
