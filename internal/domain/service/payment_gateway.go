// Package service defines the interfaces for domain-level services that are
// implemented by the infrastructure layer.
package service

import (
	"context"
	"fmt"

	"parish/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// Customer carries the payer fields some providers require beyond the email.
type Customer struct {
	FirstName string
	LastName  string
	Country   string
}

// InitiationRequest is the provider-agnostic input of a payment initiation.
// Amount is the major-unit value; each adapter applies its own encoding.
type InitiationRequest struct {
	Amount      decimal.Decimal
	Currency    string
	Email       string
	Reference   string
	CallbackURL string
	Customer    Customer
}

// InitiationResult is the normalized outcome of a successful initiation.
type InitiationResult struct {
	// AuthorizationURL is the hosted checkout page the donor is redirected to.
	AuthorizationURL string
	// TransactionID is the provider-side identifier when the provider
	// returns one at initiation time; empty otherwise.
	TransactionID string
	// Raw is the decoded provider response body, persisted for audit.
	Raw map[string]any
}

// PaymentGateway initiates a hosted checkout with one payment provider.
type PaymentGateway interface {
	// Name returns the payment method this gateway serves.
	Name() entity.PaymentMethod

	// Initialize starts a checkout for the given request. Failures are
	// reported as *GatewayError.
	Initialize(ctx context.Context, req *InitiationRequest) (*InitiationResult, error)
}

// GatewayRegistry resolves the configured gateway for a payment method.
type GatewayRegistry interface {
	// Lookup returns the gateway for the method, or false when the method
	// has no credentials configured.
	Lookup(method entity.PaymentMethod) (PaymentGateway, bool)
}

// GatewayErrorKind classifies provider initiation failures.
type GatewayErrorKind string

const (
	// GatewayErrorTimeout indicates the provider did not answer in time.
	GatewayErrorTimeout GatewayErrorKind = "TIMEOUT"
	// GatewayErrorTransport indicates a network-level failure.
	GatewayErrorTransport GatewayErrorKind = "TRANSPORT"
	// GatewayErrorHTTPStatus indicates a non-200 provider response.
	GatewayErrorHTTPStatus GatewayErrorKind = "HTTP_STATUS"
	// GatewayErrorBadPayload indicates a 200 response that could not be decoded.
	GatewayErrorBadPayload GatewayErrorKind = "BAD_PAYLOAD"
)

// GatewayError is the typed failure every gateway adapter returns.
// ProviderLabel is the display name used in persisted failure messages.
type GatewayError struct {
	ProviderLabel string
	Kind          GatewayErrorKind
	StatusCode    int
	Body          string
	Cause         error
}

// Error implements the error interface.
func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s gateway error (%s): %s", e.ProviderLabel, e.Kind, e.FailureMessage())
}

// Unwrap returns the underlying cause, if any.
func (e *GatewayError) Unwrap() error {
	return e.Cause
}

// FailureMessage returns the normalized message persisted on the donation
// record when an initiation fails.
func (e *GatewayError) FailureMessage() string {
	switch e.Kind {
	case GatewayErrorTimeout:
		return fmt.Sprintf("Request to %s initialize endpoint timed out.", e.ProviderLabel)
	case GatewayErrorHTTPStatus:
		return fmt.Sprintf("Non-200 response (%d)", e.StatusCode)
	case GatewayErrorBadPayload:
		return fmt.Sprintf("Unexpected response from %s initialize endpoint.", e.ProviderLabel)
	default:
		return fmt.Sprintf("Request to %s failed: %v", e.ProviderLabel, e.Cause)
	}
}

// NewTimeoutError builds a GatewayError for a timed-out initiation.
func NewTimeoutError(providerLabel string) *GatewayError {
	return &GatewayError{ProviderLabel: providerLabel, Kind: GatewayErrorTimeout}
}

// NewTransportError builds a GatewayError for a network-level failure.
func NewTransportError(providerLabel string, cause error) *GatewayError {
	return &GatewayError{ProviderLabel: providerLabel, Kind: GatewayErrorTransport, Cause: cause}
}

// NewHTTPStatusError builds a GatewayError for a non-2xx provider response.
func NewHTTPStatusError(providerLabel string, statusCode int, body string) *GatewayError {
	return &GatewayError{ProviderLabel: providerLabel, Kind: GatewayErrorHTTPStatus, StatusCode: statusCode, Body: body}
}

// NewBadPayloadError builds a GatewayError for an undecodable success response.
func NewBadPayloadError(providerLabel string, cause error) *GatewayError {
	return &GatewayError{ProviderLabel: providerLabel, Kind: GatewayErrorBadPayload, Cause: cause}
}
