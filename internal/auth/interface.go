package auth

import "docvault/internal/domain/models"

// TokenVerifier validates a bearer token and returns its claims. The
// middleware is agnostic to whether tokens are issued locally (HS256)
// or by an external identity provider (JWKS).
type TokenVerifier interface {
	// VerifyToken validates a token string and returns the parsed
	// claims. Returns an error if the token is invalid, expired, or
	// has an invalid signature.
	VerifyToken(tokenString string) (*models.AccessClaims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
