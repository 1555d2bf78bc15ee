package entity

import "time"

// ServiceIntegration is an admin-managed external service binding, for
// example an email delivery provider. Config holds provider specific
// credentials and options. Rows are tried in ascending ID order.
type ServiceIntegration struct {
	ID        int64
	Service   string
	Provider  string
	Config    map[string]any
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Service integration categories.
const (
	IntegrationServiceEmail = "email"
)

// Email integration providers.
const (
	EmailProviderSES     = "ses"
	EmailProviderMailgun = "mailgun"
	EmailProviderSMTP    = "smtp"
)
