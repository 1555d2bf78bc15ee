// Package validator adapts go-playground/validator to Echo's Validator interface.
package validator

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// RequestValidator validates request payloads bound by Echo handlers.
type RequestValidator struct {
	validate *validator.Validate
}

// New creates a RequestValidator backed by a shared validator instance.
func New() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

// Validate implements echo.Validator.
func (v *RequestValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return nil
}
