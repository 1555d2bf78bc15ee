package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	deliverycontext "parish/internal/delivery/context"
	"parish/internal/domain/entity"
	domainerrors "parish/internal/domain/errors"
	"parish/internal/domain/repository"
	"parish/internal/domain/service"
	"parish/internal/usecase"

	"github.com/pkg/errors"
)

// userService implements the UserUsecase interface.
type userService struct {
	txManager repository.TransactionManager
	hasher    service.PasswordHasher
	tokens    service.TokenService
	logger    *slog.Logger
}

// NewUserService is the constructor for userService.
func NewUserService(
	txManager repository.TransactionManager,
	hasher service.PasswordHasher,
	tokens service.TokenService,
	logger *slog.Logger,
) usecase.UserUsecase {
	return &userService{
		txManager: txManager,
		hasher:    hasher,
		tokens:    tokens,
		logger:    logger,
	}
}

func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a local account with an email sign-in method.
func (srv *userService) Register(ctx context.Context, input usecase.RegisterInput) (*usecase.AuthOutput, error) {
	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	passwordHash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
	}

	var output *usecase.AuthOutput

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()

		if _, err := userRepo.FindByEmail(ctx, input.Email); err == nil {
			return domainerrors.ErrUserAlreadyExists
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to check email availability")
		}

		user := &entity.User{
			Username: strings.TrimSpace(input.Username),
			Email:    strings.TrimSpace(input.Email),
			FullName: strings.TrimSpace(input.FullName),
		}
		if err := userRepo.Create(ctx, user); err != nil {
			return err
		}

		if err := repoFactory.NewAuthRepository().CreateAuthentication(ctx, &entity.Authentication{
			UserID:         user.ID,
			Provider:       entity.ProviderTypeEmail,
			ProviderUserID: user.Email,
			PasswordHash:   passwordHash,
		}); err != nil {
			return err
		}

		output, err = srv.openSession(ctx, repoFactory, user)

		return err
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("user registered", slog.Any("user_id", output.User.ID))

	return output, nil
}

// Login authenticates an email/password pair and opens a session.
func (srv *userService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.AuthOutput, error) {
	var output *usecase.AuthOutput

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		user, err := repoFactory.NewUserRepository().FindByEmail(ctx, strings.TrimSpace(input.Email))
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrInvalidCredentials
			}

			return errors.Wrap(err, "failed to find user")
		}

		auth, err := repoFactory.NewAuthRepository().FindByUserIDAndProvider(ctx, user.ID, entity.ProviderTypeEmail)
		if err != nil {
			if errors.Is(err, repository.ErrAuthNotFound) {
				// Account exists but only via federated sign-in.
				return domainerrors.ErrInvalidCredentials
			}

			return errors.Wrap(err, "failed to find authentication")
		}

		if !srv.hasher.Check(input.Password, auth.PasswordHash) {
			return domainerrors.ErrInvalidCredentials
		}

		output, err = srv.openSession(ctx, repoFactory, user)

		return err
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("user logged in", slog.Any("user_id", output.User.ID))

	return output, nil
}

// Refresh rotates a refresh token into a new token pair.
func (srv *userService) Refresh(ctx context.Context, refreshToken string) (*usecase.AuthOutput, error) {
	tokenHash := srv.tokens.HashToken(refreshToken)

	var output *usecase.AuthOutput

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		refreshRepo := repoFactory.NewRefreshTokenRepository()

		stored, err := refreshRepo.FindRefreshTokenByHash(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) || errors.Is(err, repository.ErrRefreshTokenExpired) {
				return domainerrors.ErrRefreshTokenInvalid
			}

			return errors.Wrap(err, "failed to find refresh token")
		}

		user, err := repoFactory.NewUserRepository().FindByID(ctx, stored.UserID)
		if err != nil {
			return errors.Wrap(err, "failed to load session user")
		}

		// Rotation: the presented token is spent either way.
		if err := refreshRepo.DeleteRefreshTokenByHash(ctx, tokenHash); err != nil {
			return errors.Wrap(err, "failed to revoke refresh token")
		}

		output, err = srv.openSession(ctx, repoFactory, user)

		return err
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// Logout revokes the session behind the refresh token.
func (srv *userService) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := srv.tokens.HashToken(refreshToken)

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.NewRefreshTokenRepository().DeleteRefreshTokenByHash(ctx, tokenHash)
	})
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			// Logging out an already-revoked session is not an error.
			return nil
		}

		return errors.Wrap(err, "failed to revoke session")
	}

	return nil
}

// openSession issues a token pair and persists the refresh token hash.
func (srv *userService) openSession(ctx context.Context, repoFactory repository.RepositoryFactory, user *entity.User) (*usecase.AuthOutput, error) {
	pair, err := srv.tokens.GenerateTokens(user.ID, user.IsAdmin)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate tokens")
	}

	if err := repoFactory.NewRefreshTokenRepository().CreateRefreshToken(ctx, &entity.RefreshToken{
		UserID:    user.ID,
		TokenHash: srv.tokens.HashToken(pair.RefreshToken),
		ExpiresAt: time.Now().Add(srv.tokens.RefreshTokenDuration()),
	}); err != nil {
		return nil, errors.Wrap(err, "failed to store refresh token")
	}

	return &usecase.AuthOutput{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

func validateRegisterInput(input usecase.RegisterInput) error {
	if strings.TrimSpace(input.Username) == "" {
		return domainerrors.ErrValidationFailed.WithDetails("username is required")
	}

	email := strings.TrimSpace(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domainerrors.ErrValidationFailed.WithDetails("a valid email address is required")
	}

	if len(input.Password) < 8 {
		return domainerrors.ErrValidationFailed.WithDetails("password must be at least 8 characters long")
	}

	return nil
}
