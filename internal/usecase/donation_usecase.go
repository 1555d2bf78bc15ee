// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"parish/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// --- Input DTOs ---

// InitiateDonationInput defines the data required to start a donation.
type InitiateDonationInput struct {
	Email         string
	Amount        decimal.Decimal
	Currency      string
	PaymentMethod entity.PaymentMethod

	// FirstName, LastName and Country are required by some providers.
	FirstName string
	LastName  string
	Country   string
}

// WebhookInput is the normalized content of a provider webhook notification.
type WebhookInput struct {
	Reference     string
	TransactionID string
	// Succeeded reports whether the provider confirmed the charge.
	Succeeded bool
	// FailureReason carries the provider's message for failed charges.
	FailureReason string
}

// CallbackInput is the normalized content of a browser return from checkout.
type CallbackInput struct {
	Reference string
	Status    string
}

// --- Output DTOs ---

// InitiateDonationOutput returns where to send the donor next.
type InitiateDonationOutput struct {
	RedirectURL string
	Reference   string
}

// CallbackOutput tells the delivery layer what to show the returning donor.
type CallbackOutput struct {
	// Succeeded reflects the provider-reported status, not the durable
	// donation state. Confirmation still arrives through the webhook.
	Succeeded bool
	Message   string
}

// DonationUsecase defines the interface for donation business operations.
type DonationUsecase interface {
	// Initiate validates the input, records a pending donation and starts a
	// hosted checkout with the selected provider.
	Initiate(ctx context.Context, input InitiateDonationInput) (*InitiateDonationOutput, error)

	// HandleWebhook applies a provider's charge outcome to the donation
	// record. Duplicate deliveries of the same outcome are idempotent.
	HandleWebhook(ctx context.Context, input WebhookInput) error

	// HandleCallback processes the donor's browser return from checkout.
	HandleCallback(ctx context.Context, input CallbackInput) (*CallbackOutput, error)

	// RecentDonations lists the most recent successful donations.
	RecentDonations(ctx context.Context, limit int) ([]*entity.Donation, error)
}
