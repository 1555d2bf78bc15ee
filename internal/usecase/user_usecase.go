package usecase

import (
	"context"

	"parish/internal/domain/entity"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register with email and password.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
}

// LoginInput defines the data required for an email/password login.
type LoginInput struct {
	Email    string
	Password string
}

// --- Output DTOs ---

// AuthOutput returns the user and session tokens after a successful
// registration, login or refresh.
type AuthOutput struct {
	User         *entity.User
	AccessToken  string
	RefreshToken string
}

// UserUsecase defines the interface for account and session operations.
type UserUsecase interface {
	// Register creates a local account with an email sign-in method.
	Register(ctx context.Context, input RegisterInput) (*AuthOutput, error)

	// Login authenticates an email/password pair and opens a session.
	Login(ctx context.Context, input LoginInput) (*AuthOutput, error)

	// Refresh rotates a refresh token into a new token pair.
	Refresh(ctx context.Context, refreshToken string) (*AuthOutput, error)

	// Logout revokes the session behind the refresh token.
	Logout(ctx context.Context, refreshToken string) error
}
