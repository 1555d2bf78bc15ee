package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"parish/internal/domain/entity"
	"parish/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStateStore_SingleUse(t *testing.T) {
	store := NewMemoryStateStore()

	state, err := store.Issue(service.StateClaim{Provider: entity.ProviderTypeGoogle, Next: "/donate"})
	require.NoError(t, err)
	require.NotEmpty(t, state)

	claim, ok := store.Consume(state)
	require.True(t, ok)
	assert.Equal(t, entity.ProviderTypeGoogle, claim.Provider)
	assert.Equal(t, "/donate", claim.Next)

	_, ok = store.Consume(state)
	assert.False(t, ok, "state must be single use")
}

func TestMemoryStateStore_Expired(t *testing.T) {
	store := NewMemoryStateStore()

	state, err := store.Issue(service.StateClaim{Provider: entity.ProviderTypeApple})
	require.NoError(t, err)

	// Shift the clock past the TTL.
	store.now = func() time.Time { return time.Now().Add(stateTTL + time.Minute) }

	_, ok := store.Consume(state)
	assert.False(t, ok)
}

func TestMemoryStateStore_UnknownState(t *testing.T) {
	store := NewMemoryStateStore()

	_, ok := store.Consume("never-issued")
	assert.False(t, ok)
}

func TestGoogleAuthorizationURL(t *testing.T) {
	p := &GoogleProvider{clientID: "gid", authorizeURL: googleAuthorizeURL}

	raw := p.AuthorizationURL("state-1", "https://parish.example.com/oauth/google/callback")

	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	query := parsed.Query()
	assert.Equal(t, "gid", query.Get("client_id"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "openid email profile", query.Get("scope"))
	assert.Equal(t, "state-1", query.Get("state"))
	assert.Equal(t, "offline", query.Get("access_type"))
	assert.Equal(t, "consent", query.Get("prompt"))
	assert.Equal(t, "https://parish.example.com/oauth/google/callback", query.Get("redirect_uri"))
}

func TestGoogleExchangeAndFetchProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "gid", r.PostForm.Get("client_id"))
		assert.Equal(t, "gsecret", r.PostForm.Get("client_secret"))
		assert.Equal(t, "code-1", r.PostForm.Get("code"))
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))

		_, _ = w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer"}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`{"sub":"sub-9","email":"member@example.com","name":"Mary Member"}`))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := &GoogleProvider{
		clientID:     "gid",
		clientSecret: "gsecret",
		tokenURL:     srv.URL + "/token",
		userInfoURL:  srv.URL + "/userinfo",
		client:       srv.Client(),
	}

	token, err := p.Exchange(context.Background(), "code-1", "https://parish.example.com/cb")
	require.NoError(t, err)
	assert.Equal(t, "at-1", token)

	profile, err := p.FetchProfile(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, entity.ProviderTypeGoogle, profile.Provider)
	assert.Equal(t, "sub-9", profile.ProviderUserID)
	assert.Equal(t, "member@example.com", profile.Email)
	assert.Equal(t, "Mary Member", profile.FullName)
}

func TestFacebookExchange_UsesGetWithQueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)

		query := r.URL.Query()
		assert.Equal(t, "fid", query.Get("client_id"))
		assert.Equal(t, "fsecret", query.Get("client_secret"))
		assert.Equal(t, "code-2", query.Get("code"))

		_, _ = w.Write([]byte(`{"access_token":"fb-token"}`))
	}))
	defer srv.Close()

	p := &FacebookProvider{
		clientID:     "fid",
		clientSecret: "fsecret",
		tokenURL:     srv.URL,
		client:       srv.Client(),
	}

	token, err := p.Exchange(context.Background(), "code-2", "https://parish.example.com/cb")
	require.NoError(t, err)
	assert.Equal(t, "fb-token", token)
}

func TestFacebookFetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.Equal(t, "id,name,email", query.Get("fields"))
		assert.Equal(t, "fb-token", query.Get("access_token"))

		_, _ = w.Write([]byte(`{"id":"fb-77","name":"Frank Member","email":"frank@example.com"}`))
	}))
	defer srv.Close()

	p := &FacebookProvider{userInfoURL: srv.URL, client: srv.Client()}

	profile, err := p.FetchProfile(context.Background(), "fb-token")
	require.NoError(t, err)
	assert.Equal(t, entity.ProviderTypeFacebook, profile.Provider)
	assert.Equal(t, "fb-77", profile.ProviderUserID)
	assert.Equal(t, "frank@example.com", profile.Email)
}

func TestAppleFetchProfile_DecodesIDTokenPayload(t *testing.T) {
	idToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "apple-42",
		"email": "apple.member@example.com",
	}).SignedString([]byte("irrelevant"))
	require.NoError(t, err)

	p := &AppleProvider{}

	profile, err := p.FetchProfile(context.Background(), idToken)
	require.NoError(t, err)
	assert.Equal(t, entity.ProviderTypeApple, profile.Provider)
	assert.Equal(t, "apple-42", profile.ProviderUserID)
	assert.Equal(t, "apple.member@example.com", profile.Email)
}

func TestAppleFetchProfile_MissingSubject(t *testing.T) {
	idToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "nobody@example.com",
	}).SignedString([]byte("irrelevant"))
	require.NoError(t, err)

	p := &AppleProvider{}

	_, err = p.FetchProfile(context.Background(), idToken)
	assert.Error(t, err)
}

func TestRegistryLookup(t *testing.T) {
	registry := &Registry{providers: map[string]service.OAuthProvider{
		"google": &GoogleProvider{},
	}}

	_, ok := registry.Lookup("google")
	assert.True(t, ok)

	_, ok = registry.Lookup("facebook")
	assert.False(t, ok)
}
