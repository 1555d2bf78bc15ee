package usecase

import (
	"context"

	"parish/internal/domain/entity"
	"parish/internal/domain/service"
)

// --- Input DTOs ---

// CompleteLoginInput defines the data from a provider callback.
type CompleteLoginInput struct {
	Provider string
	State    string
	Code     string
}

// --- Output DTOs ---

// StartLoginOutput returns the provider consent URL to redirect to.
type StartLoginOutput struct {
	RedirectURL string
}

// CompleteLoginOutput returns the signed-in user and their session tokens.
type CompleteLoginOutput struct {
	User   *entity.User
	Tokens *service.TokenPair
	// Next is the post-login destination bound to the consumed state.
	Next string
}

// OAuthUsecase defines the interface for federated sign-in operations.
type OAuthUsecase interface {
	// StartLogin issues a state token and builds the provider consent URL.
	StartLogin(ctx context.Context, provider, next string) (*StartLoginOutput, error)

	// CompleteLogin redeems the state, exchanges the code, resolves the
	// provider profile and signs the matched-or-created local account in.
	CompleteLogin(ctx context.Context, input CompleteLoginInput) (*CompleteLoginOutput, error)
}
