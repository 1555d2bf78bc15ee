// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"parish/internal/domain/entity"
)

// Domain-specific errors for donation persistence.
var (
	// ErrDonationNotFound is returned when no donation matches the reference.
	ErrDonationNotFound = errors.New("donation not found")
	// ErrDonationFinalized is returned when a status write contradicts an
	// already finalized donation. Repeating an identical terminal write is
	// not an error.
	ErrDonationFinalized = errors.New("donation already finalized")
)

// DonationRepository defines the standard operations for donation persistence.
type DonationRepository interface {
	// Create persists a new donation record in pending status.
	Create(ctx context.Context, donation *entity.Donation) error

	// FindByReference retrieves a donation by its unique reference.
	FindByReference(ctx context.Context, reference string) (*entity.Donation, error)

	// RecordInitiation stores the provider transaction ID and merges the
	// given keys into payment_info after a successful gateway handshake.
	// The record stays pending.
	RecordInitiation(ctx context.Context, reference, transactionID string, paymentInfo map[string]any) error

	// MarkFailed moves a pending donation to failed with a normalized error
	// message and merges the given keys into payment_info.
	MarkFailed(ctx context.Context, reference, errorMessage string, paymentInfo map[string]any) error

	// Finalize performs a compare-and-set transition from pending to the
	// given terminal status. The first writer wins: an identical repeat is a
	// no-op, a contradictory write returns ErrDonationFinalized.
	Finalize(ctx context.Context, reference, transactionID string, status entity.DonationStatus, errorMessage string) error

	// ListRecent returns the most recent successful donations, newest first.
	ListRecent(ctx context.Context, limit int) ([]*entity.Donation, error)
}
