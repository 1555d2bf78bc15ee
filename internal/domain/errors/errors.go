// Package errors defines the application error taxonomy rendered by the HTTP
// error middleware.
package errors

import (
	"net/http"

	"parish/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Input validation failed",
		"",
	)

	// Donation-related errors
	ErrDonationNotFound = NewBaseError(
		http.StatusNotFound,
		"DONATION_NOT_FOUND",
		"Donation not found",
		"",
	)

	ErrDonationFinalized = NewBaseError(
		http.StatusConflict,
		"DONATION_FINALIZED",
		"Donation is already finalized",
		"",
	)

	ErrPaymentUnavailable = NewBaseError(
		http.StatusServiceUnavailable,
		"CONFIG_MISSING",
		"Payment method is temporarily unavailable",
		"",
	)

	ErrPaymentInitiationFailed = NewBaseError(
		http.StatusBadGateway,
		"PAYMENT_INITIATION_FAILED",
		"Payment could not be started with the provider",
		"",
	)

	ErrWebhookUnauthorized = NewBaseError(
		http.StatusUnauthorized,
		"WEBHOOK_UNAUTHORIZED",
		"Missing or invalid webhook signature",
		"",
	)

	// User-related errors
	ErrUserNotFound = NewBaseError(
		http.StatusNotFound,
		"USER_NOT_FOUND",
		"User not found",
		"",
	)

	ErrUserAlreadyExists = NewBaseError(
		http.StatusConflict,
		"USER_ALREADY_EXISTS",
		"This email address is already registered",
		"",
	)

	ErrUserCreationFailed = NewBaseError(
		http.StatusInternalServerError,
		"USER_CREATION_FAILED",
		"Failed to create user",
		"",
	)

	// Authentication-related errors
	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"Incorrect email or password",
		"",
	)

	ErrRefreshTokenInvalid = NewBaseError(
		http.StatusUnauthorized,
		"REFRESH_TOKEN_INVALID",
		"Invalid or expired refresh token",
		"",
	)

	ErrPasswordHashFailed = NewBaseError(
		http.StatusInternalServerError,
		"PASSWORD_HASH_FAILED",
		"Password processing failed",
		"",
	)

	// OAuth-related errors
	ErrProviderNotEnabled = NewBaseError(
		http.StatusNotFound,
		"PROVIDER_NOT_ENABLED",
		"Sign-in provider is not enabled",
		"",
	)

	ErrOAuthStateMismatch = NewBaseError(
		http.StatusUnauthorized,
		"OAUTH_STATE_MISMATCH",
		"Sign-in session is invalid or expired",
		"",
	)

	ErrOAuthFailed = NewBaseError(
		http.StatusUnauthorized,
		"OAUTH_FAILED",
		"Sign-in with the provider failed",
		"",
	)

	ErrProviderMissingEmail = NewBaseError(
		http.StatusUnprocessableEntity,
		"PROVIDER_MISSING_EMAIL",
		"The provider did not share an email address",
		"",
	)

	// Email dispatch errors
	ErrEmailDispatchFailed = NewBaseError(
		http.StatusBadGateway,
		"EMAIL_DISPATCH_FAILED",
		"Email could not be delivered by any transport",
		"",
	)

	// Transaction-related errors
	ErrTransactionFailed = NewBaseError(
		http.StatusInternalServerError,
		"TRANSACTION_FAILED",
		"Database transaction failed",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"Resource not found",
		"",
	)

	ErrConflict = NewBaseError(
		http.StatusConflict,
		"CONFLICT",
		"Resource conflict",
		"",
	)
)

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "Database execution failed"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}
