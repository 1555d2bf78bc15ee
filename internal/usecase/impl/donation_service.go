// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"strings"

	"parish/config"
	deliverycontext "parish/internal/delivery/context"
	"parish/internal/domain/entity"
	domainerrors "parish/internal/domain/errors"
	"parish/internal/domain/repository"
	"parish/internal/domain/service"
	"parish/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const callbackPath = "/payment/callback"

// donationService implements the DonationUsecase interface.
type donationService struct {
	donations repository.DonationRepository
	gateways  service.GatewayRegistry
	baseURL   string
	logger    *slog.Logger
}

// NewDonationService is the constructor for donationService.
func NewDonationService(
	donations repository.DonationRepository,
	gateways service.GatewayRegistry,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.DonationUsecase {
	return &donationService{
		donations: donations,
		gateways:  gateways,
		baseURL:   strings.TrimRight(cfg.HTTP.BaseURL, "/"),
		logger:    logger,
	}
}

func (srv *donationService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Initiate validates the input, records a pending donation and starts a
// hosted checkout with the selected provider.
func (srv *donationService) Initiate(ctx context.Context, input usecase.InitiateDonationInput) (*usecase.InitiateDonationOutput, error) {
	if err := validateDonationInput(input); err != nil {
		return nil, err
	}

	donation := &entity.Donation{
		Email:         strings.TrimSpace(input.Email),
		Amount:        input.Amount,
		Currency:      strings.ToUpper(input.Currency),
		Reference:     uuid.NewString(),
		Status:        entity.DonationStatusPending,
		PaymentMethod: input.PaymentMethod,
		PaymentInfo:   customerPaymentInfo(input),
	}

	if err := srv.donations.Create(ctx, donation); err != nil {
		return nil, errors.Wrap(err, "failed to record donation")
	}

	gateway, ok := srv.gateways.Lookup(input.PaymentMethod)
	if !ok {
		srv.log(ctx).Warn("payment method has no configured gateway",
			slog.String("payment_method", string(input.PaymentMethod)),
			slog.String("reference", donation.Reference),
		)

		return nil, domainerrors.ErrPaymentUnavailable.WithDetails(string(input.PaymentMethod) + " is not configured")
	}

	result, err := gateway.Initialize(ctx, &service.InitiationRequest{
		Amount:      donation.Amount,
		Currency:    donation.Currency,
		Email:       donation.Email,
		Reference:   donation.Reference,
		CallbackURL: srv.baseURL + callbackPath,
		Customer: service.Customer{
			FirstName: strings.TrimSpace(input.FirstName),
			LastName:  strings.TrimSpace(input.LastName),
			Country:   strings.TrimSpace(input.Country),
		},
	})
	if err != nil {
		return nil, srv.recordInitiationFailure(ctx, donation, err)
	}

	paymentInfo := map[string]any{"authorization_url": result.AuthorizationURL}
	if len(result.Raw) > 0 {
		paymentInfo["provider_response"] = result.Raw
	}

	if err := srv.donations.RecordInitiation(ctx, donation.Reference, result.TransactionID, paymentInfo); err != nil {
		return nil, errors.Wrap(err, "failed to record payment initiation")
	}

	srv.log(ctx).Info("donation initiated",
		slog.String("reference", donation.Reference),
		slog.String("payment_method", string(donation.PaymentMethod)),
		slog.String("currency", donation.Currency),
	)

	return &usecase.InitiateDonationOutput{
		RedirectURL: result.AuthorizationURL,
		Reference:   donation.Reference,
	}, nil
}

// recordInitiationFailure marks the donation failed with the normalized
// provider message and maps the error for the delivery layer.
func (srv *donationService) recordInitiationFailure(ctx context.Context, donation *entity.Donation, initErr error) error {
	var gwErr *service.GatewayError
	if !errors.As(initErr, &gwErr) {
		// Adapter-side rejection before any provider call, e.g. an
		// unsupported checkout currency.
		if err := srv.donations.MarkFailed(ctx, donation.Reference, initErr.Error(), nil); err != nil {
			srv.log(ctx).Error("failed to mark donation failed", slog.Any("error", err))
		}

		return domainerrors.ErrValidationFailed.WithDetails(initErr.Error())
	}

	message := gwErr.FailureMessage()
	paymentInfo := map[string]any{}
	if gwErr.Body != "" {
		paymentInfo[string(donation.PaymentMethod)+"_error"] = gwErr.Body
	}

	if err := srv.donations.MarkFailed(ctx, donation.Reference, message, paymentInfo); err != nil {
		srv.log(ctx).Error("failed to mark donation failed",
			slog.String("reference", donation.Reference),
			slog.Any("error", err),
		)
	}

	srv.log(ctx).Warn("payment initiation failed",
		slog.String("reference", donation.Reference),
		slog.String("payment_method", string(donation.PaymentMethod)),
		slog.String("kind", string(gwErr.Kind)),
		slog.String("message", message),
	)

	return domainerrors.ErrPaymentInitiationFailed.WithDetails(message)
}

// HandleWebhook applies a provider's charge outcome to the donation record.
func (srv *donationService) HandleWebhook(ctx context.Context, input usecase.WebhookInput) error {
	status := entity.DonationStatusSuccess
	message := ""
	if !input.Succeeded {
		status = entity.DonationStatusFailed
		message = input.FailureReason
	}

	err := srv.donations.Finalize(ctx, input.Reference, input.TransactionID, status, message)
	if err == nil {
		srv.log(ctx).Info("donation finalized by webhook",
			slog.String("reference", input.Reference),
			slog.String("status", string(status)),
		)

		return nil
	}

	if errors.Is(err, repository.ErrDonationNotFound) {
		return domainerrors.ErrDonationNotFound.WithDetails("no donation for reference " + input.Reference)
	}
	if errors.Is(err, repository.ErrDonationFinalized) {
		// A contradictory late delivery never rewrites a settled record.
		srv.log(ctx).Warn("webhook contradicts finalized donation, ignoring",
			slog.String("reference", input.Reference),
			slog.String("incoming_status", string(status)),
		)

		return nil
	}

	return errors.Wrap(err, "failed to finalize donation")
}

// HandleCallback processes the donor's browser return from checkout. A
// success-looking return only shapes the flash message; the durable success
// transition is reserved for the provider webhook.
func (srv *donationService) HandleCallback(ctx context.Context, input usecase.CallbackInput) (*usecase.CallbackOutput, error) {
	if _, err := srv.donations.FindByReference(ctx, input.Reference); err != nil {
		if errors.Is(err, repository.ErrDonationNotFound) {
			return nil, domainerrors.ErrDonationNotFound.WithDetails("no donation for reference " + input.Reference)
		}

		return nil, errors.Wrap(err, "failed to load donation")
	}

	switch strings.ToLower(input.Status) {
	case "successful", "completed", "success":
		return &usecase.CallbackOutput{
			Succeeded: true,
			Message:   "Thank you! Your donation is being confirmed.",
		}, nil
	default:
		err := srv.donations.Finalize(ctx, input.Reference, "", entity.DonationStatusFailed, "Payment was cancelled or failed.")
		if err != nil && !errors.Is(err, repository.ErrDonationFinalized) {
			return nil, errors.Wrap(err, "failed to finalize cancelled donation")
		}

		return &usecase.CallbackOutput{
			Succeeded: false,
			Message:   "Your donation was not completed.",
		}, nil
	}
}

// RecentDonations lists the most recent successful donations.
func (srv *donationService) RecentDonations(ctx context.Context, limit int) ([]*entity.Donation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	donations, err := srv.donations.ListRecent(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list donations")
	}

	return donations, nil
}

// customerPaymentInfo captures donor fields that only some providers collect,
// so the record keeps them even when initiation later fails.
func customerPaymentInfo(input usecase.InitiateDonationInput) map[string]any {
	info := map[string]any{}
	if v := strings.TrimSpace(input.FirstName); v != "" {
		info["first_name"] = v
	}
	if v := strings.TrimSpace(input.LastName); v != "" {
		info["last_name"] = v
	}
	if v := strings.TrimSpace(input.Country); v != "" {
		info["country"] = v
	}
	if len(info) == 0 {
		return nil
	}

	return info
}

func validateDonationInput(input usecase.InitiateDonationInput) error {
	email := strings.TrimSpace(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domainerrors.ErrValidationFailed.WithDetails("a valid email address is required")
	}

	if !input.Amount.IsPositive() {
		return domainerrors.ErrValidationFailed.WithDetails("amount must be greater than zero")
	}
	if input.Amount.Exponent() < -2 {
		return domainerrors.ErrValidationFailed.WithDetails("amount supports at most two decimal places")
	}

	if !input.PaymentMethod.IsValid() {
		return domainerrors.ErrValidationFailed.WithDetails("unknown payment method")
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if len(currency) != 3 {
		return domainerrors.ErrValidationFailed.WithDetails("currency must be a three-letter code")
	}

	if input.PaymentMethod == entity.PaymentMethodPaystack && currency != "NGN" {
		return domainerrors.ErrValidationFailed.WithDetails("Paystack donations are only supported in NGN")
	}

	if input.PaymentMethod == entity.PaymentMethodFincra {
		if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
			return domainerrors.ErrValidationFailed.WithDetails("first and last name are required for Fincra")
		}
		if strings.TrimSpace(input.Country) == "" {
			return domainerrors.ErrValidationFailed.WithDetails("country is required for Fincra")
		}
	}

	return nil
}
