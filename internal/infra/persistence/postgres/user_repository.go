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

// userRepository implements the domain.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByID retrieves a single user by their unique ID.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return toUserDomain(&userM), nil
}

// FindByEmail retrieves a single user by their email address.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).
		Where("email = ?", email).
		First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	return toUserDomain(&userM), nil
}

// FindByUsername retrieves a single user by their username.
func (repo *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).
		Where("username = ?", username).
		First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by username")
	}

	return toUserDomain(&userM), nil
}

// Create persists a new user entity to the database.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("email or username already exists")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrUserCreationFailed.WrapMessage("missing required user information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// Update modifies an existing user entity in the database.
func (repo *userRepository) Update(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Save(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("email or username already exists")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to update user")
	}

	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// --- Mapper Functions ---
// These helpers convert between domain entities and persistence models.

func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	return &entity.User{
		ID:        data.ID,
		Username:  data.Username,
		Email:     data.Email,
		FullName:  data.FullName,
		IsAdmin:   data.IsAdmin,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	return &model.UserModel{
		ID:       data.ID,
		Username: data.Username,
		Email:    data.Email,
		FullName: data.FullName,
		IsAdmin:  data.IsAdmin,
	}
}
