package handler

import (
	"net/http"
	"time"

	"parish/internal/delivery/http/response"
	"parish/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// PrayerHandler handles prayer request submissions.
type PrayerHandler struct {
	prayerUsecase usecase.PrayerUsecase
}

// NewPrayerHandler creates a new PrayerHandler instance.
func NewPrayerHandler(prayerUsecase usecase.PrayerUsecase) *PrayerHandler {
	return &PrayerHandler{prayerUsecase: prayerUsecase}
}

type prayerRequest struct {
	Name    string `json:"name" form:"name" validate:"required"`
	Email   string `json:"email" form:"email" validate:"required,email"`
	Subject string `json:"subject" form:"subject" validate:"required"`
	Body    string `json:"body" form:"body" validate:"required"`
	Private bool   `json:"private" form:"private"`
}

type prayerSubmittedPayload struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Submit records a prayer request and queues the team notification.
func (h *PrayerHandler) Submit(c echo.Context) error {
	var req prayerRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	out, err := h.prayerUsecase.SubmitPrayer(c.Request().Context(), usecase.SubmitPrayerInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Body:    req.Body,
		Private: req.Private,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, prayerSubmittedPayload{
		ID:        out.Prayer.ID.String(),
		CreatedAt: out.Prayer.CreatedAt,
	}, "Prayer request received")
}
