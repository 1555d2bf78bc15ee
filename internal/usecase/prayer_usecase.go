package usecase

import (
	"context"

	"parish/internal/domain/entity"
	"parish/internal/domain/service"
)

// --- Input DTOs ---

// SubmitPrayerInput defines the data required to submit a prayer request.
type SubmitPrayerInput struct {
	Name    string
	Email   string
	Subject string
	Body    string
	Private bool
}

// --- Output DTOs ---

// SubmitPrayerOutput returns the stored prayer request.
type SubmitPrayerOutput struct {
	Prayer *entity.PrayerRequest
}

// PrayerUsecase defines the interface for prayer request operations.
type PrayerUsecase interface {
	// SubmitPrayer stores the request and publishes a notification event.
	SubmitPrayer(ctx context.Context, input SubmitPrayerInput) (*SubmitPrayerOutput, error)
}

// PrayerNotifier delivers prayer notification events to the intercessory
// team. It runs in the worker, fed by the Pub/Sub subscription.
type PrayerNotifier interface {
	// NotifyPrayer emails the intercessory team about a new request.
	NotifyPrayer(ctx context.Context, event *service.PrayerEvent) error
}
