package middleware

import (
	"net/http"
	"strings"

	"parish/internal/delivery/http/response"
	"parish/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// Context keys set by the Authenticate middleware.
const (
	ContextKeyUserID  = "userID"
	ContextKeyIsAdmin = "isAdmin"
)

// AuthMiddleware provides middleware for JWT authentication and authorization.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate is the core middleware function that validates the JWT access token.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "UNAUTHORIZED", "Authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return response.Unauthorized(c, "UNAUTHORIZED", "Invalid token format, must be Bearer token")
		}

		claims, err := m.tokenSvc.ValidateAccessToken(tokenString)
		if err != nil {
			return response.Unauthorized(c, "UNAUTHORIZED", "Invalid or expired token")
		}

		// Set user info on the context for handlers to use
		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyIsAdmin, claims.IsAdmin)

		return next(c)
	}
}

// RequireAdmin checks that the authenticated user carries the admin flag.
// It must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		isAdmin, ok := c.Get(ContextKeyIsAdmin).(bool)
		if !ok || !isAdmin {
			return response.Error(c, http.StatusForbidden, "FORBIDDEN", "Administrator access required", "")
		}

		return next(c)
	}
}
