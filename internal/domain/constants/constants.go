// Package constants holds shared domain-level constant values.
package constants

// Pub/Sub provider types.
const (
	// PubSubProviderLocal publishes through a local HTTP endpoint.
	PubSubProviderLocal = "local"
	// PubSubProviderGoogle publishes through Google Cloud Pub/Sub.
	PubSubProviderGoogle = "google"
)

// Deployment environments.
const (
	EnvDevelop    = "develop"
	EnvProduction = "production"
)
