package postgres

import (
	"context"

	"parish/internal/domain/entity"
	"parish/internal/domain/repository"
	"parish/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// integrationRepository implements the domain.IntegrationRepository interface.
type integrationRepository struct {
	db *gorm.DB
}

// NewIntegrationRepository is the constructor for integrationRepository.
func NewIntegrationRepository(db *gorm.DB) repository.IntegrationRepository {
	return &integrationRepository{db: db}
}

// ListActive returns the active integrations for a service ordered by ID
// ascending, which is the order transports are attempted in.
func (repo *integrationRepository) ListActive(ctx context.Context, service string) ([]*entity.ServiceIntegration, error) {
	var integrationModels []*model.ServiceIntegrationModel
	if err := repo.db.WithContext(ctx).
		Where("service = ? AND is_active = ?", service, true).
		Order("id ASC").
		Find(&integrationModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list active integrations")
	}

	integrations := make([]*entity.ServiceIntegration, 0, len(integrationModels))
	for _, integrationM := range integrationModels {
		integrations = append(integrations, toIntegrationDomain(integrationM))
	}

	return integrations, nil
}

// --- Mapper Functions ---

func toIntegrationDomain(data *model.ServiceIntegrationModel) *entity.ServiceIntegration {
	if data == nil {
		return nil
	}

	return &entity.ServiceIntegration{
		ID:        data.ID,
		Service:   data.Service,
		Provider:  data.Provider,
		Config:    data.Config,
		IsActive:  data.IsActive,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}
