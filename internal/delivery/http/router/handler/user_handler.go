// Package handler contains the HTTP handlers for the public API.
package handler

import (
	"net/http"

	"parish/internal/delivery/http/response"
	"parish/internal/domain/entity"
	"parish/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// HealthCheck reports service liveness.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}

// UserHandler handles account registration and session endpoints.
type UserHandler struct {
	userUsecase usecase.UserUsecase
}

// NewUserHandler creates a new UserHandler instance.
func NewUserHandler(userUsecase usecase.UserUsecase) *UserHandler {
	return &UserHandler{userUsecase: userUsecase}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type userPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	IsAdmin  bool   `json:"is_admin"`
}

type sessionPayload struct {
	User         userPayload `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
}

func newUserPayload(user *entity.User) userPayload {
	return userPayload{
		ID:       user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		IsAdmin:  user.IsAdmin,
	}
}

func newSessionPayload(out *usecase.AuthOutput) sessionPayload {
	return sessionPayload{
		User:         newUserPayload(out.User),
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
	}
}

// Register creates a local account with an email and password credential.
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	out, err := h.userUsecase.Register(c.Request().Context(), usecase.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, newSessionPayload(out), "Account created")
}

// Login authenticates an email and password credential.
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	out, err := h.userUsecase.Login(c.Request().Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newSessionPayload(out), "Login successful")
}

// Refresh rotates a refresh token and issues a new session pair.
func (h *UserHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	out, err := h.userUsecase.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newSessionPayload(out), "Session refreshed")
}

// Logout revokes a refresh token.
func (h *UserHandler) Logout(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.userUsecase.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Logged out")
}
