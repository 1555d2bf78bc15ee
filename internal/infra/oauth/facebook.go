package oauth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"parish/config"
	"parish/internal/domain/entity"
	"parish/internal/domain/service"

	"github.com/pkg/errors"
)

const (
	facebookAuthorizeURL = "https://www.facebook.com/v19.0/dialog/oauth"
	facebookTokenURL     = "https://graph.facebook.com/v19.0/oauth/access_token"
	facebookUserInfoURL  = "https://graph.facebook.com/me"
)

// FacebookProvider implements the Facebook federated sign-in flow. Unlike
// the other providers Facebook exchanges the code with a GET request.
type FacebookProvider struct {
	clientID     string
	clientSecret string

	authorizeURL string
	tokenURL     string
	userInfoURL  string
	client       *http.Client
}

// NewFacebookProvider creates a Facebook provider from configuration.
func NewFacebookProvider(cfg config.OAuthProviderConfig) *FacebookProvider {
	return &FacebookProvider{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		authorizeURL: facebookAuthorizeURL,
		tokenURL:     facebookTokenURL,
		userInfoURL:  facebookUserInfoURL,
		client:       &http.Client{Timeout: 10 * time.Second},
	}
}

// Name returns the provider identifier.
func (p *FacebookProvider) Name() entity.ProviderType {
	return entity.ProviderTypeFacebook
}

// Label returns the human-readable provider name.
func (p *FacebookProvider) Label() string {
	return "Facebook"
}

// AuthorizationURL builds the Facebook consent URL.
func (p *FacebookProvider) AuthorizationURL(state, redirectURI string) string {
	params := url.Values{}
	params.Set("client_id", p.clientID)
	params.Set("redirect_uri", redirectURI)
	params.Set("response_type", "code")
	params.Set("scope", "email public_profile")
	params.Set("state", state)

	return p.authorizeURL + "?" + params.Encode()
}

// Exchange trades the authorization code for an access token via GET.
func (p *FacebookProvider) Exchange(ctx context.Context, code, redirectURI string) (string, error) {
	params := url.Values{}
	params.Set("client_id", p.clientID)
	params.Set("client_secret", p.clientSecret)
	params.Set("code", code)
	params.Set("redirect_uri", redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.tokenURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to create token exchange request")
	}

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

// FetchProfile resolves the Graph API profile.
func (p *FacebookProvider) FetchProfile(ctx context.Context, credential string) (*service.Profile, error) {
	params := url.Values{}
	params.Set("fields", "id,name,email")
	params.Set("access_token", credential)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create user info request")
	}

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
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, errors.Wrap(err, "failed to decode user info response")
	}
	if userInfo.ID == "" {
		return nil, errors.New("user info response contained no id")
	}

	return &service.Profile{
		Provider:       entity.ProviderTypeFacebook,
		ProviderUserID: userInfo.ID,
		Email:          userInfo.Email,
		FullName:       userInfo.Name,
	}, nil
}
