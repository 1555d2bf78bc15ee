package service

import (
	"context"

	"parish/internal/domain/entity"
)

// Profile is the normalized identity a provider returns after sign-in.
// Email may be empty; account creation requires it.
type Profile struct {
	Provider       entity.ProviderType
	ProviderUserID string
	Email          string
	FullName       string
}

// OAuthProvider abstracts one federated sign-in provider.
type OAuthProvider interface {
	// Name returns the provider identifier used in routes and storage.
	Name() entity.ProviderType

	// Label returns the human-readable provider name for logs and errors.
	Label() string

	// AuthorizationURL builds the provider consent URL for the given state
	// and redirect URI.
	AuthorizationURL(state, redirectURI string) string

	// Exchange trades the authorization code for an access credential. For
	// Apple the returned credential is the id_token itself.
	Exchange(ctx context.Context, code, redirectURI string) (string, error)

	// FetchProfile resolves the normalized profile from the credential.
	FetchProfile(ctx context.Context, credential string) (*Profile, error)
}

// OAuthRegistry resolves the configured provider for a route parameter.
type OAuthRegistry interface {
	// Lookup returns the provider by name, or false when the provider has
	// no credentials configured.
	Lookup(name string) (OAuthProvider, bool)
}

// StateClaim is what an issued OAuth state token is bound to.
type StateClaim struct {
	Provider entity.ProviderType
	Next     string
}

// StateStore issues and redeems single-use OAuth state tokens. Tokens expire
// after a short TTL and are removed on first consumption regardless of the
// flow outcome.
type StateStore interface {
	// Issue mints a new state token bound to the claim.
	Issue(claim StateClaim) (string, error)

	// Consume redeems a state token, returning its claim. A token can only
	// be consumed once; expired or unknown tokens return false.
	Consume(state string) (StateClaim, bool)
}
