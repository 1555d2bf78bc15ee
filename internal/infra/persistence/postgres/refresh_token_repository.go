package postgres

import (
	"context"
	"time"

	"parish/internal/domain/entity"
	domainerrors "parish/internal/domain/errors"
	"parish/internal/domain/repository"
	"parish/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// refreshTokenRepository implements the domain.RefreshTokenRepository interface.
type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository is the constructor for refreshTokenRepository.
func NewRefreshTokenRepository(db *gorm.DB) repository.RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

// CreateRefreshToken persists a new refresh token, representing a user session.
func (repo *refreshTokenRepository) CreateRefreshToken(ctx context.Context, token *entity.RefreshToken) error {
	tokenM := fromRefreshTokenDomain(token)

	if err := repo.db.WithContext(ctx).Create(tokenM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrRefreshTokenInvalid.WrapMessage("refresh token already exists")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrRefreshTokenInvalid.WrapMessage("invalid user reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create refresh token")
	}

	token.ID = tokenM.ID
	token.CreatedAt = tokenM.CreatedAt

	return nil
}

// FindRefreshTokenByHash retrieves a refresh token record by its stored hash.
// Expired tokens are reported as ErrRefreshTokenExpired.
func (repo *refreshTokenRepository) FindRefreshTokenByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error) {
	var tokenM model.RefreshTokenModel
	if err := repo.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		First(&tokenM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRefreshTokenNotFound
		}

		return nil, errors.Wrap(err, "failed to find refresh token")
	}

	token := toRefreshTokenDomain(&tokenM)
	if token.IsExpired() {
		return nil, repository.ErrRefreshTokenExpired
	}

	return token, nil
}

// DeleteRefreshTokenByHash deletes a refresh token by its hash, ending a session.
func (repo *refreshTokenRepository) DeleteRefreshTokenByHash(ctx context.Context, tokenHash string) error {
	result := repo.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		Delete(&model.RefreshTokenModel{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete refresh token")
	}
	if result.RowsAffected == 0 {
		return repository.ErrRefreshTokenNotFound
	}

	return nil
}

// DeleteRefreshTokensByUserID removes every session for a specific user.
func (repo *refreshTokenRepository) DeleteRefreshTokensByUserID(ctx context.Context, userID uuid.UUID) error {
	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.RefreshTokenModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to delete user refresh tokens")
	}

	return nil
}

// DeleteExpiredRefreshTokens removes all expired refresh tokens.
func (repo *refreshTokenRepository) DeleteExpiredRefreshTokens(ctx context.Context) error {
	if err := repo.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&model.RefreshTokenModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to delete expired refresh tokens")
	}

	return nil
}

// --- Mapper Functions ---

func toRefreshTokenDomain(data *model.RefreshTokenModel) *entity.RefreshToken {
	if data == nil {
		return nil
	}

	return &entity.RefreshToken{
		ID:        data.ID,
		UserID:    data.UserID,
		TokenHash: data.TokenHash,
		ExpiresAt: data.ExpiresAt,
		CreatedAt: data.CreatedAt,
	}
}

func fromRefreshTokenDomain(data *entity.RefreshToken) *model.RefreshTokenModel {
	if data == nil {
		return nil
	}

	return &model.RefreshTokenModel{
		ID:        data.ID,
		UserID:    data.UserID,
		TokenHash: data.TokenHash,
		ExpiresAt: data.ExpiresAt,
		CreatedAt: data.CreatedAt,
	}
}
