package mail

import (
	"context"
	"log/slog"

	"parish/config"
	"parish/internal/domain/entity"
	domainerrors "parish/internal/domain/errors"
	"parish/internal/domain/repository"
	"parish/internal/domain/service"
)

// Dispatcher delivers mail through the admin-configured email integrations,
// trying them in ascending ID order. The first transport that accepts the
// message wins; when every integration fails the built-in SMTP transport is
// the last resort.
type Dispatcher struct {
	integrations  repository.IntegrationRepository
	fallback      service.EmailSender
	defaultSender string
	logger        *slog.Logger

	// newTransport is swapped out in tests.
	newTransport func(ctx context.Context, integration *entity.ServiceIntegration) (service.EmailSender, error)
}

// NewDispatcher creates the email dispatcher.
func NewDispatcher(integrations repository.IntegrationRepository, cfg *config.Config, logger *slog.Logger) service.EmailDispatcher {
	defaultSender := ""
	if cfg.Mail != nil {
		defaultSender = cfg.Mail.DefaultSender
	}

	return &Dispatcher{
		integrations:  integrations,
		fallback:      NewFallbackSMTPSender(cfg.Mail),
		defaultSender: defaultSender,
		logger:        logger,
		newTransport:  buildTransport,
	}
}

func buildTransport(ctx context.Context, integration *entity.ServiceIntegration) (service.EmailSender, error) {
	switch integration.Provider {
	case entity.EmailProviderSES:
		return NewSESSender(ctx, integration.Config)
	case entity.EmailProviderMailgun:
		return NewMailgunSender(integration.Config)
	case entity.EmailProviderSMTP:
		return NewSMTPSender(integration.Config)
	default:
		return nil, domainerrors.ErrValidationFailed.WithDetails("unknown email provider: " + integration.Provider)
	}
}

// Dispatch sends the message through the first working transport.
func (d *Dispatcher) Dispatch(ctx context.Context, msg *service.EmailMessage) error {
	if len(msg.Recipients) == 0 {
		return domainerrors.ErrValidationFailed.WithDetails("email recipients are required")
	}

	integrations, err := d.integrations.ListActive(ctx, entity.IntegrationServiceEmail)
	if err != nil {
		d.logger.Warn("failed to load email integrations, using fallback transport",
			slog.Any("error", err),
		)
		integrations = nil
	}

	for _, integration := range integrations {
		transport, err := d.newTransport(ctx, integration)
		if err != nil {
			d.logger.Warn("skipping misconfigured email integration",
				slog.Int64("integration_id", integration.ID),
				slog.String("provider", integration.Provider),
				slog.Any("error", err),
			)

			continue
		}

		send := *msg
		if send.Sender == "" {
			send.Sender = d.resolveSender(integration)
		}

		if err := transport.Send(ctx, &send); err != nil {
			d.logger.Warn("email integration failed, trying next",
				slog.Int64("integration_id", integration.ID),
				slog.String("provider", integration.Provider),
				slog.Any("error", err),
			)

			continue
		}

		return nil
	}

	send := *msg
	if send.Sender == "" {
		send.Sender = d.defaultSender
	}

	if err := d.fallback.Send(ctx, &send); err != nil {
		d.logger.Error("fallback email transport failed",
			slog.Any("error", err),
		)

		return domainerrors.ErrEmailDispatchFailed.WithDetails(err.Error())
	}

	return nil
}

// resolveSender picks the sender for an integration: the integration's own
// sender_email first, then the configured default.
func (d *Dispatcher) resolveSender(integration *entity.ServiceIntegration) string {
	if sender := stringOpt(integration.Config, "sender_email"); sender != "" {
		return sender
	}

	return d.defaultSender
}
