// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"parish/config"
	domainerrors "parish/internal/domain/errors"
	"parish/internal/domain/service"
)

const (
	accessTokenTTL  = time.Minute * 15
	refreshTokenTTL = time.Hour * 24 * 7

	refreshTokenBytes = 32
)

// jwtService is a concrete implementation of the TokenService interface.
// Access tokens are signed JWTs; refresh tokens are opaque random strings
// whose SHA-256 hash is what the persistence layer stores.
type jwtService struct {
	accessSecret string
	accessTTL    time.Duration
	refreshTTL   time.Duration
}

// NewJWTService is the constructor for jwtService.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" {
		return nil, errors.New("jwt access secret must be provided")
	}

	return &jwtService{
		accessSecret: cfg.SecretKey.Access,
		accessTTL:    accessTokenTTL,
		refreshTTL:   refreshTokenTTL,
	}, nil
}

// GenerateTokens creates a new access/refresh token pair for a user.
func (s *jwtService) GenerateTokens(userID uuid.UUID, isAdmin bool) (*service.TokenPair, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"iat":   now.Unix(),
		"exp":   now.Add(s.accessTTL).Unix(),
		"admin": isAdmin,
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.accessSecret))
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign access token")
	}

	raw := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, errors.Wrap(err, "failed to generate refresh token")
	}

	return &service.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: hex.EncodeToString(raw),
	}, nil
}

// ValidateAccessToken verifies an access token and returns its claims.
func (s *jwtService) ValidateAccessToken(tokenString string) (*service.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return []byte(s.accessSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("invalid access token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("invalid access token claims")
	}

	subject, err := claims.GetSubject()
	if err != nil {
		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("access token has no subject")
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("access token subject is not a user id")
	}

	isAdmin, _ := claims["admin"].(bool)

	return &service.TokenClaims{
		UserID:  userID,
		IsAdmin: isAdmin,
	}, nil
}

// HashToken returns the hex SHA-256 digest of an opaque refresh token.
func (s *jwtService) HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))

	return hex.EncodeToString(sum[:])
}

// RefreshTokenDuration returns the configured refresh token lifetime.
func (s *jwtService) RefreshTokenDuration() time.Duration {
	return s.refreshTTL
}
