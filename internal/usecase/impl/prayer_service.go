package impl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"parish/config"
	deliverycontext "parish/internal/delivery/context"
	"parish/internal/domain/entity"
	domainerrors "parish/internal/domain/errors"
	"parish/internal/domain/repository"
	"parish/internal/domain/service"
	"parish/internal/usecase"

	"github.com/pkg/errors"
)

// prayerService implements the PrayerUsecase interface.
type prayerService struct {
	prayers   repository.PrayerRepository
	publisher service.EventPublisher
	notifier  usecase.PrayerNotifier
	logger    *slog.Logger
}

// NewPrayerService is the constructor for prayerService.
func NewPrayerService(
	prayers repository.PrayerRepository,
	publisher service.EventPublisher,
	notifier usecase.PrayerNotifier,
	logger *slog.Logger,
) usecase.PrayerUsecase {
	return &prayerService{
		prayers:   prayers,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger,
	}
}

func (srv *prayerService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// SubmitPrayer stores the request and publishes a notification event. When
// the event pipeline is unavailable the notification is sent inline so a
// submitted request is never silently dropped.
func (srv *prayerService) SubmitPrayer(ctx context.Context, input usecase.SubmitPrayerInput) (*usecase.SubmitPrayerOutput, error) {
	if err := validatePrayerInput(input); err != nil {
		return nil, err
	}

	prayer := &entity.PrayerRequest{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Subject: strings.TrimSpace(input.Subject),
		Body:    strings.TrimSpace(input.Body),
		Private: input.Private,
	}

	if err := srv.prayers.Create(ctx, prayer); err != nil {
		return nil, errors.Wrap(err, "failed to store prayer request")
	}

	event := &service.PrayerEvent{
		PrayerID:       prayer.ID.String(),
		RequestID:      deliverycontext.GetRequestIDFromContext(ctx),
		Subject:        prayer.Subject,
		Body:           prayer.Body,
		SubmitterName:  prayer.Name,
		SubmitterEmail: prayer.Email,
		Private:        prayer.Private,
	}

	if err := srv.publisher.PublishPrayerEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("prayer event publish failed, notifying inline",
			slog.String("prayer_id", event.PrayerID),
			slog.Any("error", err),
		)

		if notifyErr := srv.notifier.NotifyPrayer(ctx, event); notifyErr != nil {
			srv.log(ctx).Error("inline prayer notification failed",
				slog.String("prayer_id", event.PrayerID),
				slog.Any("error", notifyErr),
			)
		}
	}

	return &usecase.SubmitPrayerOutput{Prayer: prayer}, nil
}

func validatePrayerInput(input usecase.SubmitPrayerInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return domainerrors.ErrValidationFailed.WithDetails("name is required")
	}

	email := strings.TrimSpace(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domainerrors.ErrValidationFailed.WithDetails("a valid email address is required")
	}

	if strings.TrimSpace(input.Subject) == "" {
		return domainerrors.ErrValidationFailed.WithDetails("subject is required")
	}

	if strings.TrimSpace(input.Body) == "" {
		return domainerrors.ErrValidationFailed.WithDetails("prayer request body is required")
	}

	return nil
}

// prayerNotifier implements the PrayerNotifier interface by emailing the
// configured intercessory team through the dispatcher.
type prayerNotifier struct {
	dispatcher service.EmailDispatcher
	recipients []string
	logger     *slog.Logger
}

// NewPrayerNotifier is the constructor for prayerNotifier.
func NewPrayerNotifier(
	dispatcher service.EmailDispatcher,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.PrayerNotifier {
	var recipients []string
	if cfg.Prayer != nil {
		recipients = cfg.Prayer.Recipients
	}

	return &prayerNotifier{
		dispatcher: dispatcher,
		recipients: recipients,
		logger:     logger,
	}
}

// NotifyPrayer emails the intercessory team about a new request.
func (n *prayerNotifier) NotifyPrayer(ctx context.Context, event *service.PrayerEvent) error {
	if len(n.recipients) == 0 {
		n.logger.Warn("no prayer notification recipients configured",
			slog.String("prayer_id", event.PrayerID),
		)

		return nil
	}

	subject := "New prayer request: " + event.Subject
	body := formatPrayerNotification(event)

	if err := n.dispatcher.Dispatch(ctx, &service.EmailMessage{
		Subject:    subject,
		Body:       body,
		Recipients: n.recipients,
	}); err != nil {
		return errors.Wrap(err, "failed to dispatch prayer notification")
	}

	return nil
}

func formatPrayerNotification(event *service.PrayerEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\n", event.SubmitterName, event.SubmitterEmail)
	if event.Private {
		b.WriteString("Visibility: private\n")
	}
	b.WriteString("\n")
	b.WriteString(event.Body)

	return b.String()
}
