package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"parish/internal/delivery/http/response"
	domainerrors "parish/internal/domain/errors"
	"parish/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// WebhookHandler receives asynchronous payment notifications from providers.
// Webhooks are the durable settlement path; browser callbacks are cosmetic.
type WebhookHandler struct {
	donationUsecase usecase.DonationUsecase
	logger          *slog.Logger
}

// NewWebhookHandler creates a new WebhookHandler instance.
func NewWebhookHandler(donationUsecase usecase.DonationUsecase, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{donationUsecase: donationUsecase, logger: logger}
}

type fincraWebhookPayload struct {
	// TransactionID is Fincra's own transaction identifier.
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	// Reference is the reference we generated at initiation.
	Reference     string `json:"reference"`
	FailureReason string `json:"failureReason"`
}

// HandleFincra processes a Fincra charge notification.
func (h *WebhookHandler) HandleFincra(c echo.Context) error {
	if c.Request().Header.Get("x-fincra-signature") == "" {
		return errors.WithStack(domainerrors.ErrWebhookUnauthorized)
	}

	var payload fincraWebhookPayload
	if err := c.Bind(&payload); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid webhook payload")
	}
	switch {
	case payload.TransactionID == "":
		return response.BadRequest(c, "INVALID_INPUT", "Webhook payload is missing the transaction id")
	case payload.Status == "":
		return response.BadRequest(c, "INVALID_INPUT", "Webhook payload is missing the status")
	case payload.Reference == "":
		return response.BadRequest(c, "INVALID_INPUT", "Webhook payload is missing the reference")
	}

	succeeded := strings.EqualFold(payload.Status, "successful")

	h.logger.Info("Fincra webhook received",
		slog.String("reference", payload.Reference),
		slog.String("status", payload.Status),
		slog.Bool("succeeded", succeeded),
	)

	if err := h.donationUsecase.HandleWebhook(c.Request().Context(), usecase.WebhookInput{
		Reference:     payload.Reference,
		TransactionID: payload.TransactionID,
		Succeeded:     succeeded,
		FailureReason: payload.FailureReason,
	}); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Webhook processed")
}
