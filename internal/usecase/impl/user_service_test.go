package impl

import (
	"context"
	"log/slog"
	"testing"

	"parish/internal/domain/entity"
	domainerrors "parish/internal/domain/errors"
	"parish/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserTestEnv() (usecase.UserUsecase, *fakeRepositoryFactory) {
	factory := newFakeRepositoryFactory()
	svc := NewUserService(&fakeTxManager{factory: factory}, stubHasher{}, &stubTokenService{}, slog.Default())

	return svc, factory
}

func registerTestUser(t *testing.T, svc usecase.UserUsecase) *usecase.AuthOutput {
	t.Helper()

	out, err := svc.Register(context.Background(), usecase.RegisterInput{
		Username: "ada",
		Email:    "ada@example.com",
		Password: "long-enough-password",
		FullName: "Ada Obi",
	})
	require.NoError(t, err)

	return out
}

func TestUserService_Register(t *testing.T) {
	svc, factory := newUserTestEnv()

	out := registerTestUser(t, svc)
	assert.Equal(t, "ada", out.User.Username)
	assert.NotEmpty(t, out.AccessToken)
	assert.NotEmpty(t, out.RefreshToken)

	auth, err := factory.auths.FindByProviderID(context.Background(), entity.ProviderTypeEmail, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, auth.UserID)
	assert.Equal(t, "hashed:long-enough-password", auth.PasswordHash)
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	svc, _ := newUserTestEnv()
	registerTestUser(t, svc)

	_, err := svc.Register(context.Background(), usecase.RegisterInput{
		Username: "ada2",
		Email:    "ada@example.com",
		Password: "long-enough-password",
	})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "USER_ALREADY_EXISTS", appErr.ErrorCode())
}

func TestUserService_Register_ShortPassword(t *testing.T) {
	svc, _ := newUserTestEnv()

	_, err := svc.Register(context.Background(), usecase.RegisterInput{
		Username: "ada",
		Email:    "ada@example.com",
		Password: "short",
	})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_FAILED", appErr.ErrorCode())
}

func TestUserService_Login(t *testing.T) {
	svc, _ := newUserTestEnv()
	registered := registerTestUser(t, svc)

	out, err := svc.Login(context.Background(), usecase.LoginInput{
		Email:    "ada@example.com",
		Password: "long-enough-password",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, out.User.ID)

	_, err = svc.Login(context.Background(), usecase.LoginInput{
		Email:    "ada@example.com",
		Password: "wrong-password-here",
	})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_CREDENTIALS", appErr.ErrorCode())
}

func TestUserService_Login_UnknownEmail(t *testing.T) {
	svc, _ := newUserTestEnv()

	_, err := svc.Login(context.Background(), usecase.LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever-password",
	})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_CREDENTIALS", appErr.ErrorCode())
}

func TestUserService_Refresh_RotatesToken(t *testing.T) {
	svc, factory := newUserTestEnv()
	registered := registerTestUser(t, svc)

	out, err := svc.Refresh(context.Background(), registered.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, out.User.ID)
	assert.NotEqual(t, registered.RefreshToken, out.RefreshToken)

	// The old token is spent.
	_, err = svc.Refresh(context.Background(), registered.RefreshToken)
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "REFRESH_TOKEN_INVALID", appErr.ErrorCode())

	// The rotated token is stored.
	assert.Len(t, factory.tokens.byHash, 1)
}

func TestUserService_Logout(t *testing.T) {
	svc, factory := newUserTestEnv()
	registered := registerTestUser(t, svc)

	require.NoError(t, svc.Logout(context.Background(), registered.RefreshToken))
	assert.Empty(t, factory.tokens.byHash)

	// Logging out twice is a no-op.
	require.NoError(t, svc.Logout(context.Background(), registered.RefreshToken))
}
