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

	"github.com/pkg/errors"
)

const (
	googleAuthorizeURL = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL     = "https://oauth2.googleapis.com/token"
	googleUserInfoURL  = "https://openidconnect.googleapis.com/v1/userinfo"
)

// GoogleProvider implements the Google federated sign-in flow.
type GoogleProvider struct {
	clientID     string
	clientSecret string

	authorizeURL string
	tokenURL     string
	userInfoURL  string
	client       *http.Client
}

// NewGoogleProvider creates a Google provider from configuration.
func NewGoogleProvider(cfg config.OAuthProviderConfig) *GoogleProvider {
	return &GoogleProvider{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		authorizeURL: googleAuthorizeURL,
		tokenURL:     googleTokenURL,
		userInfoURL:  googleUserInfoURL,
		client:       &http.Client{Timeout: 10 * time.Second},
	}
}

// Name returns the provider identifier.
func (p *GoogleProvider) Name() entity.ProviderType {
	return entity.ProviderTypeGoogle
}

// Label returns the human-readable provider name.
func (p *GoogleProvider) Label() string {
	return "Google"
}

// AuthorizationURL builds the Google consent URL.
func (p *GoogleProvider) AuthorizationURL(state, redirectURI string) string {
	params := url.Values{}
	params.Set("client_id", p.clientID)
	params.Set("redirect_uri", redirectURI)
	params.Set("response_type", "code")
	params.Set("scope", "openid email profile")
	params.Set("state", state)
	params.Set("access_type", "offline")
	params.Set("prompt", "consent")

	return p.authorizeURL + "?" + params.Encode()
}

// Exchange trades the authorization code for an access token.
func (p *GoogleProvider) Exchange(ctx context.Context, code, redirectURI string) (string, error) {
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
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return "", errors.Wrap(err, "failed to decode token response")
	}
	if tokenResponse.AccessToken == "" {
		return "", errors.New("token response contained no access token")
	}

	return tokenResponse.AccessToken, nil
}

// FetchProfile resolves the OpenID Connect userinfo profile.
func (p *GoogleProvider) FetchProfile(ctx context.Context, credential string) (*service.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create user info request")
	}
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user info")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		return nil, errors.Errorf("user info request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var userInfo struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, errors.Wrap(err, "failed to decode user info response")
	}
	if userInfo.Sub == "" {
		return nil, errors.New("user info response contained no subject")
	}

	return &service.Profile{
		Provider:       entity.ProviderTypeGoogle,
		ProviderUserID: userInfo.Sub,
		Email:          userInfo.Email,
		FullName:       userInfo.Name,
	}, nil
}
