package oauth

import (
	"log/slog"

	"parish/config"
	"parish/internal/domain/service"
)

// Registry holds the sign-in providers whose credentials are configured.
type Registry struct {
	providers map[string]service.OAuthProvider
}

// NewRegistry builds the provider registry from configuration. Providers
// without a client ID stay disabled.
func NewRegistry(cfg *config.Config, logger *slog.Logger) service.OAuthRegistry {
	providers := make(map[string]service.OAuthProvider)

	if cfg.OAuth != nil {
		if cfg.OAuth.Google.IsConfigured() {
			p := NewGoogleProvider(cfg.OAuth.Google)
			providers[p.Name().String()] = p
		}
		if cfg.OAuth.Facebook.IsConfigured() {
			p := NewFacebookProvider(cfg.OAuth.Facebook)
			providers[p.Name().String()] = p
		}
		if cfg.OAuth.Apple.IsConfigured() {
			p := NewAppleProvider(cfg.OAuth.Apple)
			providers[p.Name().String()] = p
		}
	}

	if len(providers) == 0 {
		logger.Warn("no sign-in providers configured")
	}

	return &Registry{providers: providers}
}

// Lookup returns the provider by name, or false when not enabled.
func (r *Registry) Lookup(name string) (service.OAuthProvider, bool) {
	p, ok := r.providers[name]

	return p, ok
}
