package middleware

import (
	"errors"
	"net/http"
	"strings"

	"docvault/internal/auth"
	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
	"docvault/internal/httputil"
)

// publicPaths are reachable without a bearer token. Registration is
// only open for the bootstrap user; callers presenting a token still
// get their principal attached so the superadmin gate applies.
var publicPaths = map[string]bool{
	"/health":            true,
	"/api/auth/login":    true,
	"/api/auth/register": true,
}

const registerPath = "/api/auth/register"

// Auth verifies the bearer token, loads the user behind the subject
// claim and attaches the resulting principal to the request context.
// The principal is rebuilt from the user record on every request so
// permission changes and account archival take effect immediately.
//
// Identity failures abort before any handler runs; permission checks
// always precede physical I/O downstream.
func Auth(verifier auth.TokenVerifier, userRepo repositories.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, hasToken := bearerToken(r)

			if publicPaths[r.URL.Path] {
				// Registration decides authorization itself, so a token,
				// when present, must still resolve to a principal.
				if r.URL.Path != registerPath || !hasToken {
					next.ServeHTTP(w, r)
					return
				}
			} else if !hasToken {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			user, err := userRepo.GetByID(r.Context(), claims.GetUserID())
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					httputil.RespondError(w, http.StatusUnauthorized, "unknown user")
					return
				}
				httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			if user.IsArchived {
				httputil.RespondError(w, http.StatusForbidden, "account archived")
				return
			}

			next.ServeHTTP(w, httputil.WithPrincipal(r, models.PrincipalFromUser(user)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
