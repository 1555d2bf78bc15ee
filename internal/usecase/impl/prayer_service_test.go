package impl

import (
	"context"
	"log/slog"
	"testing"

	domainerrors "parish/internal/domain/errors"
	"parish/internal/domain/service"
	"parish/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPrayerInput() usecase.SubmitPrayerInput {
	return usecase.SubmitPrayerInput{
		Name:    "Ada Obi",
		Email:   "ada@example.com",
		Subject: "Travel mercies",
		Body:    "Please pray for safe travel next week.",
	}
}

func TestPrayerService_SubmitPrayer_Publishes(t *testing.T) {
	repo := &stubPrayerRepo{}
	publisher := &stubPublisher{}
	notifier := &stubNotifier{}
	svc := NewPrayerService(repo, publisher, notifier, slog.Default())

	out, err := svc.SubmitPrayer(context.Background(), validPrayerInput())
	require.NoError(t, err)
	require.NotNil(t, out.Prayer)
	assert.NotEmpty(t, out.Prayer.ID)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, out.Prayer.ID.String(), publisher.events[0].PrayerID)
	assert.Equal(t, "Travel mercies", publisher.events[0].Subject)

	// The inline notifier is only the fallback path.
	assert.Empty(t, notifier.events)
}

func TestPrayerService_SubmitPrayer_PublishFailureNotifiesInline(t *testing.T) {
	repo := &stubPrayerRepo{}
	publisher := &stubPublisher{err: errors.New("broker down")}
	notifier := &stubNotifier{}
	svc := NewPrayerService(repo, publisher, notifier, slog.Default())

	out, err := svc.SubmitPrayer(context.Background(), validPrayerInput())
	require.NoError(t, err)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, out.Prayer.ID.String(), notifier.events[0].PrayerID)
}

func TestPrayerService_SubmitPrayer_Validation(t *testing.T) {
	svc := NewPrayerService(&stubPrayerRepo{}, &stubPublisher{}, &stubNotifier{}, slog.Default())

	tests := []struct {
		name   string
		mutate func(*usecase.SubmitPrayerInput)
	}{
		{"missing name", func(in *usecase.SubmitPrayerInput) { in.Name = "" }},
		{"missing email", func(in *usecase.SubmitPrayerInput) { in.Email = "" }},
		{"invalid email", func(in *usecase.SubmitPrayerInput) { in.Email = "not-an-email" }},
		{"missing subject", func(in *usecase.SubmitPrayerInput) { in.Subject = " " }},
		{"missing body", func(in *usecase.SubmitPrayerInput) { in.Body = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validPrayerInput()
			tt.mutate(&input)

			_, err := svc.SubmitPrayer(context.Background(), input)
			require.Error(t, err)

			var appErr domainerrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "VALIDATION_FAILED", appErr.ErrorCode())
		})
	}
}

func TestPrayerNotifier_NoRecipientsIsNoop(t *testing.T) {
	notifier := NewPrayerNotifier(nil, newDonationTestConfig(), slog.Default())

	err := notifier.NotifyPrayer(context.Background(), &service.PrayerEvent{
		PrayerID: "p1",
		Subject:  "Travel mercies",
	})
	require.NoError(t, err)
}
