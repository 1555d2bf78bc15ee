package entity

// ProviderType represents the authentication provider of an identity.
type ProviderType string

const (
	// ProviderTypeEmail indicates a local email/password identity.
	ProviderTypeEmail ProviderType = "email"
	// ProviderTypeGoogle indicates a Google federated identity.
	ProviderTypeGoogle ProviderType = "google"
	// ProviderTypeFacebook indicates a Facebook federated identity.
	ProviderTypeFacebook ProviderType = "facebook"
	// ProviderTypeApple indicates an Apple federated identity.
	ProviderTypeApple ProviderType = "apple"
)

// String returns the string representation of the ProviderType.
func (p ProviderType) String() string {
	return string(p)
}

// IsValid checks if the ProviderType is a valid value.
func (p ProviderType) IsValid() bool {
	switch p {
	case ProviderTypeEmail, ProviderTypeGoogle, ProviderTypeFacebook, ProviderTypeApple:
		return true
	default:
		return false
	}
}

// IsFederated reports whether the provider is an external identity provider.
func (p ProviderType) IsFederated() bool {
	return p == ProviderTypeGoogle || p == ProviderTypeFacebook || p == ProviderTypeApple
}
