package auth

import (
	"errors"
	"log/slog"
	"time"

	"docvault/internal/domain"
	"docvault/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

// TokenManager issues and verifies HS256 access tokens. This is the
// default identity context when no external JWKS provider is configured.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	logger *slog.Logger
}

// NewTokenManager creates a token manager with the given signing secret.
func NewTokenManager(secret string, ttl time.Duration, logger *slog.Logger) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		logger: logger,
	}, nil
}

// Issue creates a signed token for the user. Role, groups and the
// global flags are embedded for client convenience; the server reloads
// them from the user record on every request.
func (m *TokenManager) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Role:        user.Role,
		GroupIDs:    user.GroupIDs,
		CanUpload:   user.CanUpload,
		CanDownload: user.CanDownload,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// VerifyToken validates a locally issued token.
func (m *TokenManager) VerifyToken(tokenString string) (*models.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.AccessClaims{},
		func(t *jwt.Token) (interface{}, error) {
			// Pin the algorithm to prevent confusion attacks
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, errors.New("unexpected signing method")
			}
			return m.secret, nil
		})
	if err != nil {
		m.logger.Debug("token parse failed", "error", err)
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.AccessClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}

// Close implements TokenVerifier; nothing to release for HS256.
func (m *TokenManager) Close() error {
	return nil
}
