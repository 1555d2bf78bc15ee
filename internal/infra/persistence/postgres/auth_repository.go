package postgres

import (
	"context"

	"parish/internal/domain/entity"
	domainerrors "parish/internal/domain/errors"
	"parish/internal/domain/repository"
	"parish/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// authRepository implements the domain.AuthRepository interface using GORM.
type authRepository struct {
	db *gorm.DB
}

// NewAuthRepository is the constructor for authRepository.
func NewAuthRepository(db *gorm.DB) repository.AuthRepository {
	return &authRepository{db: db}
}

// CreateAuthentication persists a new sign-in method for a user.
func (repo *authRepository) CreateAuthentication(ctx context.Context, auth *entity.Authentication) error {
	authM := fromAuthDomain(auth)

	if err := repo.db.WithContext(ctx).Create(authM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("sign-in method already registered")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserCreationFailed.WrapMessage("invalid user reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create authentication")
	}

	auth.ID = authM.ID
	auth.CreatedAt = authM.CreatedAt

	return nil
}

// FindByProviderID retrieves an authentication by provider and the provider's
// stable subject identifier.
func (repo *authRepository) FindByProviderID(ctx context.Context, provider entity.ProviderType, providerUserID string) (*entity.Authentication, error) {
	var authM model.AuthenticationModel
	if err := repo.db.WithContext(ctx).
		Where("provider = ? AND provider_user_id = ?", string(provider), providerUserID).
		First(&authM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAuthNotFound
		}

		return nil, errors.Wrap(err, "failed to find authentication by provider id")
	}

	return toAuthDomain(&authM), nil
}

// FindByUserIDAndProvider retrieves a user's authentication for one provider.
func (repo *authRepository) FindByUserIDAndProvider(ctx context.Context, userID uuid.UUID, provider entity.ProviderType) (*entity.Authentication, error) {
	var authM model.AuthenticationModel
	if err := repo.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, string(provider)).
		First(&authM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAuthNotFound
		}

		return nil, errors.Wrap(err, "failed to find authentication by user and provider")
	}

	return toAuthDomain(&authM), nil
}

// ListByUserID retrieves every sign-in method registered for a user.
func (repo *authRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Authentication, error) {
	var authModels []*model.AuthenticationModel
	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&authModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list authentications")
	}

	auths := make([]*entity.Authentication, 0, len(authModels))
	for _, authM := range authModels {
		auths = append(auths, toAuthDomain(authM))
	}

	return auths, nil
}

// --- Mapper Functions ---

func toAuthDomain(data *model.AuthenticationModel) *entity.Authentication {
	if data == nil {
		return nil
	}

	return &entity.Authentication{
		ID:             data.ID,
		UserID:         data.UserID,
		Provider:       entity.ProviderType(data.Provider),
		ProviderUserID: data.ProviderUserID,
		PasswordHash:   data.PasswordHash,
		CreatedAt:      data.CreatedAt,
	}
}

func fromAuthDomain(data *entity.Authentication) *model.AuthenticationModel {
	if data == nil {
		return nil
	}

	return &model.AuthenticationModel{
		ID:             data.ID,
		UserID:         data.UserID,
		Provider:       string(data.Provider),
		ProviderUserID: data.ProviderUserID,
		PasswordHash:   data.PasswordHash,
	}
}
