package oauth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"parish/config"
	"parish/internal/domain/entity"
	"parish/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const (
	appleAuthorizeURL = "https://appleid.apple.com/auth/authorize"
	appleTokenURL     = "https://appleid.apple.com/auth/token"
)

// AppleProvider implements Sign in with Apple. The credential returned by
// Exchange is the id_token itself; FetchProfile reads its payload without
// signature verification, so a hardened deployment must add JWKS checks.
type AppleProvider struct {
	clientID     string
	clientSecret string

	authorizeURL string
	tokenURL     string
	client       *http.Client
}

// NewAppleProvider creates an Apple provider from configuration.
func NewAppleProvider(cfg config.OAuthProviderConfig) *AppleProvider {
	return &AppleProvider{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		authorizeURL: appleAuthorizeURL,
		tokenURL:     appleTokenURL,
		client:       &http.Client{Timeout: 10 * time.Second},
	}
}

// Name returns the provider identifier.
func (p *AppleProvider) Name() entity.ProviderType {
	return entity.ProviderTypeApple
}

// Label returns the human-readable provider name.
func (p *AppleProvider) Label() string {
	return "Apple"
}

// AuthorizationURL builds the Apple consent URL.
func (p *AppleProvider) AuthorizationURL(state, redirectURI string) string {
	params := url.Values{}
	params.Set("client_id", p.clientID)
	params.Set("redirect_uri", redirectURI)
	params.Set("response_type", "code")
	params.Set("scope", "email name")
	params.Set("state", state)
	params.Set("response_mode", "query")

	return p.authorizeURL + "?" + params.Encode()
}

// Exchange trades the authorization code for the id_token.
func (p *AppleProvider) Exchange(ctx context.Context, code, redirectURI string) (string, error) {
	data := url.Values{}
	data.Set("client_id", p.clientID)
	data.Set("client_secret", p.clientSecret)
	data.Set("code", code)
	data.Set("grant_type", "authorization_code")
	data.Set("redirect_uri", redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "failed to create token exchange request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "failed to exchange code for token")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		return "", errors.Errorf("token exchange failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResponse struct {
		IDToken string `json:"id_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return "", errors.Wrap(err, "failed to decode token response")
	}
	if tokenResponse.IDToken == "" {
		return "", errors.New("token response contained no id_token")
	}

	return tokenResponse.IDToken, nil
}

// FetchProfile reads the subject and email from the id_token payload.
// The signature is NOT verified here.
func (p *AppleProvider) FetchProfile(_ context.Context, credential string) (*service.Profile, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(credential, claims); err != nil {
		return nil, errors.Wrap(err, "failed to decode id_token")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errors.New("id_token contained no subject")
	}
	email, _ := claims["email"].(string)

	return &service.Profile{
		Provider:       entity.ProviderTypeApple,
		ProviderUserID: sub,
		Email:          email,
	}, nil
}
