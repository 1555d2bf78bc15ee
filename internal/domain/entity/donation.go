// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DonationStatus represents the lifecycle state of a donation record.
type DonationStatus string

const (
	// DonationStatusPending indicates the donation was initiated but not yet confirmed.
	DonationStatusPending DonationStatus = "pending"
	// DonationStatusSuccess indicates the provider confirmed the payment.
	DonationStatusSuccess DonationStatus = "success"
	// DonationStatusFailed indicates the payment did not complete.
	DonationStatusFailed DonationStatus = "failed"
)

// String returns the string representation of the DonationStatus.
func (s DonationStatus) String() string {
	return string(s)
}

// IsValid checks if the DonationStatus is a valid value.
func (s DonationStatus) IsValid() bool {
	switch s {
	case DonationStatusPending, DonationStatusSuccess, DonationStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status allows no further transition.
func (s DonationStatus) IsTerminal() bool {
	return s == DonationStatusSuccess || s == DonationStatusFailed
}

// PaymentMethod identifies which payment provider handles a donation.
type PaymentMethod string

const (
	// PaymentMethodPaystack routes the donation through Paystack.
	PaymentMethodPaystack PaymentMethod = "paystack"
	// PaymentMethodFincra routes the donation through Fincra checkout.
	PaymentMethodFincra PaymentMethod = "fincra"
	// PaymentMethodStripe routes the donation through Stripe Checkout.
	PaymentMethodStripe PaymentMethod = "stripe"
	// PaymentMethodFlutterwave routes the donation through Flutterwave.
	PaymentMethodFlutterwave PaymentMethod = "flutterwave"
)

// String returns the string representation of the PaymentMethod.
func (m PaymentMethod) String() string {
	return string(m)
}

// IsValid checks if the PaymentMethod is a valid value.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodPaystack, PaymentMethodFincra, PaymentMethodStripe, PaymentMethodFlutterwave:
		return true
	default:
		return false
	}
}

// Donation is a single giving attempt tracked from initiation to settlement.
// Reference is the internal correlation key shared with the provider;
// TransactionID is the provider-side identifier and stays empty until known.
type Donation struct {
	ID            int64
	Email         string
	Amount        decimal.Decimal
	Currency      string
	Reference     string
	Status        DonationStatus
	PaymentMethod PaymentMethod
	TransactionID string
	ErrorMessage  string
	PaymentInfo   map[string]any
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
