package handler

import (
	"net/http"
	"net/url"

	"parish/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// loginPagePath is where the browser lands when federated sign-in fails.
const loginPagePath = "/login"

// OAuthHandler handles the federated sign-in flow.
type OAuthHandler struct {
	oauthUsecase usecase.OAuthUsecase
}

// NewOAuthHandler creates a new OAuthHandler instance.
func NewOAuthHandler(oauthUsecase usecase.OAuthUsecase) *OAuthHandler {
	return &OAuthHandler{oauthUsecase: oauthUsecase}
}

// Start redirects the browser to the provider's consent screen.
func (h *OAuthHandler) Start(c echo.Context) error {
	out, err := h.oauthUsecase.StartLogin(c.Request().Context(), c.Param("provider"), c.QueryParam("next"))
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Redirect(http.StatusFound, out.RedirectURL)
}

// Callback completes the sign-in after the provider redirects back. The
// session tokens travel as HttpOnly cookies and the browser continues to the
// destination captured at the start of the flow; any failure lands back on
// the login page.
func (h *OAuthHandler) Callback(c echo.Context) error {
	if providerErr := c.QueryParam("error"); providerErr != "" {
		return redirectToLogin(c, providerErr)
	}

	code := c.QueryParam("code")
	if code == "" {
		return redirectToLogin(c, "missing_code")
	}

	out, err := h.oauthUsecase.CompleteLogin(c.Request().Context(), usecase.CompleteLoginInput{
		Provider: c.Param("provider"),
		State:    c.QueryParam("state"),
		Code:     code,
	})
	if err != nil {
		return redirectToLogin(c, "signin_failed")
	}

	c.SetCookie(&http.Cookie{
		Name:     "access_token",
		Value:    out.Tokens.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	c.SetCookie(&http.Cookie{
		Name:     "refresh_token",
		Value:    out.Tokens.RefreshToken,
		Path:     "/auth",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.Redirect(http.StatusFound, out.Next)
}

func redirectToLogin(c echo.Context, reason string) error {
	return c.Redirect(http.StatusFound, loginPagePath+"?"+url.Values{"error": {reason}}.Encode())
}
