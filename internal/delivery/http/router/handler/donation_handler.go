package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"parish/config"
	"parish/internal/delivery/http/response"
	"parish/internal/domain/entity"
	domainerrors "parish/internal/domain/errors"
	"parish/internal/domain/service"
	"parish/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// donatePagePath is where the browser lands after a provider callback.
const donatePagePath = "/donate"

// DonationHandler handles the giving flow: initiation, provider callback,
// the recent donations widget and the shareable QR code.
type DonationHandler struct {
	donationUsecase usecase.DonationUsecase
	qrSvc           service.QRCodeService
	baseURL         string
}

// NewDonationHandler creates a new DonationHandler instance.
func NewDonationHandler(donationUsecase usecase.DonationUsecase, qrSvc service.QRCodeService, cfg *config.Config) *DonationHandler {
	return &DonationHandler{
		donationUsecase: donationUsecase,
		qrSvc:           qrSvc,
		baseURL:         strings.TrimRight(cfg.HTTP.BaseURL, "/"),
	}
}

type donationRequest struct {
	Email         string `json:"email" form:"email" validate:"required,email"`
	Amount        string `json:"amount" form:"amount" validate:"required"`
	Currency      string `json:"currency" form:"currency" validate:"required,len=3"`
	PaymentMethod string `json:"payment_method" form:"payment_method" validate:"required"`
	FirstName     string `json:"first_name" form:"first_name"`
	LastName      string `json:"last_name" form:"last_name"`
	Country       string `json:"country" form:"country"`
}

type recentDonationPayload struct {
	Donor     string    `json:"donor"`
	Amount    string    `json:"amount"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

// Process starts a donation with the selected payment provider and sends the
// browser to the provider checkout. Failures land back on the giving page
// with a flash message instead of an error response.
func (h *DonationHandler) Process(c echo.Context) error {
	var req donationRequest
	if err := c.Bind(&req); err != nil {
		return redirectWithFlash(c, "error", "Invalid donation form submission.")
	}
	if err := c.Validate(&req); err != nil {
		return redirectWithFlash(c, "error", "Please fill in a valid email, amount, currency and payment method.")
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return redirectWithFlash(c, "error", "Amount must be a decimal number.")
	}

	out, err := h.donationUsecase.Initiate(c.Request().Context(), usecase.InitiateDonationInput{
		Email:         req.Email,
		Amount:        amount,
		Currency:      strings.ToUpper(req.Currency),
		PaymentMethod: entity.PaymentMethod(strings.ToLower(req.PaymentMethod)),
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Country:       req.Country,
	})
	if err != nil {
		return redirectWithFlash(c, "error", donationFailureMessage(err))
	}

	return c.Redirect(http.StatusFound, out.RedirectURL)
}

// redirectWithFlash sends the browser back to the giving page carrying a
// status and message for the page to display.
func redirectWithFlash(c echo.Context, status, message string) error {
	return c.Redirect(http.StatusFound, donatePagePath+"?"+url.Values{
		"status":  {status},
		"message": {message},
	}.Encode())
}

// donationFailureMessage picks a user-facing message for a failed initiation.
func donationFailureMessage(err error) string {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		if details := appErr.Details(); details != "" {
			return details
		}

		return appErr.Message()
	}

	return "We could not start your donation. Please try again."
}

// Callback receives the browser redirect from a payment provider and sends
// the donor back to the giving page with a flash message. The durable
// outcome is decided by the provider webhook, never here.
func (h *DonationHandler) Callback(c echo.Context) error {
	reference := c.QueryParam("reference")
	if reference == "" {
		// Paystack redirects with trxref.
		reference = c.QueryParam("trxref")
	}

	out, err := h.donationUsecase.HandleCallback(c.Request().Context(), usecase.CallbackInput{
		Reference: reference,
		Status:    c.QueryParam("status"),
	})
	if err != nil {
		return redirectWithFlash(c, "error", "We could not match your payment. Please contact the parish office.")
	}

	status := "failed"
	if out.Succeeded {
		status = "success"
	}

	return redirectWithFlash(c, status, out.Message)
}

// Recent lists the latest confirmed donations with donor emails masked.
func (h *DonationHandler) Recent(c echo.Context) error {
	return h.listRecent(c, true)
}

// AdminRecent lists the latest confirmed donations with full donor emails.
func (h *DonationHandler) AdminRecent(c echo.Context) error {
	return h.listRecent(c, false)
}

func (h *DonationHandler) listRecent(c echo.Context, masked bool) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	donations, err := h.donationUsecase.RecentDonations(c.Request().Context(), limit)
	if err != nil {
		return errors.WithStack(err)
	}

	payload := make([]recentDonationPayload, 0, len(donations))
	for _, donation := range donations {
		donor := donation.Email
		if masked {
			donor = maskEmail(donor)
		}
		payload = append(payload, recentDonationPayload{
			Donor:     donor,
			Amount:    donation.Amount.StringFixed(2),
			Currency:  donation.Currency,
			CreatedAt: donation.CreatedAt,
		})
	}

	return response.Success(c, http.StatusOK, payload, "")
}

// LinkQR renders the giving page link as a PNG QR code for print material.
func (h *DonationHandler) LinkQR(c echo.Context) error {
	png, err := h.qrSvc.GenerateLinkQR(h.baseURL + donatePagePath)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// maskEmail hides most of the local part, keeping the first character.
func maskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 1 {
		return "***" + email[max(at, 0):]
	}

	return email[:1] + "***" + email[at:]
}
