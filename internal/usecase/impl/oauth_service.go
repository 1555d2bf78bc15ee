package impl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"parish/config"
	deliverycontext "parish/internal/delivery/context"
	"parish/internal/domain/entity"
	domainerrors "parish/internal/domain/errors"
	"parish/internal/domain/repository"
	"parish/internal/domain/service"
	"parish/internal/usecase"

	"github.com/pkg/errors"
)

const maxUsernameAttempts = 20

// oauthService implements the OAuthUsecase interface.
type oauthService struct {
	providers service.OAuthRegistry
	states    service.StateStore
	txManager repository.TransactionManager
	tokens    service.TokenService
	baseURL   string
	logger    *slog.Logger
}

// NewOAuthService is the constructor for oauthService.
func NewOAuthService(
	providers service.OAuthRegistry,
	states service.StateStore,
	txManager repository.TransactionManager,
	tokens service.TokenService,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.OAuthUsecase {
	return &oauthService{
		providers: providers,
		states:    states,
		txManager: txManager,
		tokens:    tokens,
		baseURL:   strings.TrimRight(cfg.HTTP.BaseURL, "/"),
		logger:    logger,
	}
}

func (srv *oauthService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *oauthService) redirectURI(provider string) string {
	return fmt.Sprintf("%s/oauth/%s/callback", srv.baseURL, provider)
}

// StartLogin issues a state token and builds the provider consent URL.
func (srv *oauthService) StartLogin(ctx context.Context, provider, next string) (*usecase.StartLoginOutput, error) {
	p, ok := srv.providers.Lookup(provider)
	if !ok {
		return nil, domainerrors.ErrProviderNotEnabled.WithDetails(provider + " sign-in is not configured")
	}

	state, err := srv.states.Issue(service.StateClaim{
		Provider: p.Name(),
		Next:     sanitizeNext(next),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue oauth state")
	}

	srv.log(ctx).Debug("oauth login started", slog.String("provider", provider))

	return &usecase.StartLoginOutput{
		RedirectURL: p.AuthorizationURL(state, srv.redirectURI(provider)),
	}, nil
}

// CompleteLogin redeems the state, exchanges the code, resolves the provider
// profile and signs the matched-or-created local account in.
func (srv *oauthService) CompleteLogin(ctx context.Context, input usecase.CompleteLoginInput) (*usecase.CompleteLoginOutput, error) {
	p, ok := srv.providers.Lookup(input.Provider)
	if !ok {
		return nil, domainerrors.ErrProviderNotEnabled.WithDetails(input.Provider + " sign-in is not configured")
	}

	claim, ok := srv.states.Consume(input.State)
	if !ok || claim.Provider != p.Name() {
		return nil, domainerrors.ErrOAuthStateMismatch
	}

	credential, err := p.Exchange(ctx, input.Code, srv.redirectURI(input.Provider))
	if err != nil {
		srv.log(ctx).Warn("oauth code exchange failed",
			slog.String("provider", input.Provider),
			slog.Any("error", err),
		)

		return nil, domainerrors.ErrOAuthFailed.WithDetails("code exchange with " + p.Label() + " failed")
	}

	profile, err := p.FetchProfile(ctx, credential)
	if err != nil {
		srv.log(ctx).Warn("oauth profile fetch failed",
			slog.String("provider", input.Provider),
			slog.Any("error", err),
		)

		return nil, domainerrors.ErrOAuthFailed.WithDetails("profile fetch from " + p.Label() + " failed")
	}

	var user *entity.User
	var pair *service.TokenPair

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		user, err = srv.resolveUser(ctx, repoFactory, profile)
		if err != nil {
			return err
		}

		pair, err = srv.tokens.GenerateTokens(user.ID, user.IsAdmin)
		if err != nil {
			return errors.Wrap(err, "failed to generate tokens")
		}

		return repoFactory.NewRefreshTokenRepository().CreateRefreshToken(ctx, &entity.RefreshToken{
			UserID:    user.ID,
			TokenHash: srv.tokens.HashToken(pair.RefreshToken),
			ExpiresAt: time.Now().Add(srv.tokens.RefreshTokenDuration()),
		})
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("oauth login completed",
		slog.String("provider", input.Provider),
		slog.Any("user_id", user.ID),
	)

	return &usecase.CompleteLoginOutput{
		User:   user,
		Tokens: pair,
		Next:   sanitizeNext(claim.Next),
	}, nil
}

// sanitizeNext restricts a post-login destination to a local path. Values
// like "//evil.example" or "/\evil.example" are scheme-relative URLs to a
// browser and would leave the site.
func sanitizeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") {
		return "/"
	}
	if strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}

	return next
}

// resolveUser matches the provider identity to a local account. The provider
// subject wins; otherwise a verified email links the identity to an existing
// account; otherwise a new account is created.
func (srv *oauthService) resolveUser(ctx context.Context, repoFactory repository.RepositoryFactory, profile *service.Profile) (*entity.User, error) {
	userRepo := repoFactory.NewUserRepository()
	authRepo := repoFactory.NewAuthRepository()

	auth, err := authRepo.FindByProviderID(ctx, profile.Provider, profile.ProviderUserID)
	if err == nil {
		user, err := userRepo.FindByID(ctx, auth.UserID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load linked user")
		}

		return user, nil
	}
	if !errors.Is(err, repository.ErrAuthNotFound) {
		return nil, errors.Wrap(err, "failed to look up provider identity")
	}

	if strings.TrimSpace(profile.Email) == "" {
		return nil, domainerrors.ErrProviderMissingEmail
	}

	user, err := userRepo.FindByEmail(ctx, profile.Email)
	switch {
	case err == nil:
		// Existing account, new provider: link the identity.
	case errors.Is(err, repository.ErrUserNotFound):
		user, err = srv.createUser(ctx, userRepo, profile)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.Wrap(err, "failed to look up user by email")
	}

	if err := authRepo.CreateAuthentication(ctx, &entity.Authentication{
		UserID:         user.ID,
		Provider:       profile.Provider,
		ProviderUserID: profile.ProviderUserID,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to link provider identity")
	}

	return user, nil
}

func (srv *oauthService) createUser(ctx context.Context, userRepo repository.UserRepository, profile *service.Profile) (*entity.User, error) {
	username, err := srv.availableUsername(ctx, userRepo, profile.Email)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username: username,
		Email:    profile.Email,
		FullName: profile.FullName,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		return nil, errors.Wrap(err, "failed to create user")
	}

	return user, nil
}

// availableUsername derives a username from the email local part and appends
// a numeric suffix until it is free.
func (srv *oauthService) availableUsername(ctx context.Context, userRepo repository.UserRepository, email string) (string, error) {
	base := sanitizeUsername(email)

	for attempt := 0; attempt < maxUsernameAttempts; attempt++ {
		candidate := base
		if attempt > 0 {
			candidate = fmt.Sprintf("%s%d", base, attempt)
		}

		_, err := userRepo.FindByUsername(ctx, candidate)
		if errors.Is(err, repository.ErrUserNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", errors.Wrap(err, "failed to check username availability")
		}
	}

	return "", domainerrors.ErrUserCreationFailed.WrapMessage("could not find a free username")
}

// sanitizeUsername keeps the lowercase [a-z0-9._-] characters of the email
// local part, falling back to "user" when nothing survives.
func sanitizeUsername(email string) string {
	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}
	local = strings.ToLower(local)

	var b strings.Builder
	for _, r := range local {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return "user"
	}

	return b.String()
}
