package middleware

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"docvault/internal/auth"
	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
	"docvault/internal/httputil"
)

// stubUserRepo backs the middleware with a fixed user set. Only GetByID
// is reachable from the middleware; the embedded interface panics on
// anything else.
type stubUserRepo struct {
	repositories.UserRepository
	users map[string]*models.User
}

func (s *stubUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return u, nil
}

func authFixture(t *testing.T, users map[string]*models.User) (http.Handler, *auth.TokenManager) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens, err := auth.NewTokenManager("test-secret", time.Hour, logger)
	if err != nil {
		t.Fatal(err)
	}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := httputil.GetPrincipal(r)
		if p == nil {
			t.Error("handler reached without principal")
		}
		w.WriteHeader(http.StatusOK)
	})

	return Auth(tokens, &stubUserRepo{users: users})(inner), tokens
}

func TestAuthRejectsMissingToken(t *testing.T) {
	h, _ := authFixture(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/groups", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthAllowsPublicPaths(t *testing.T) {
	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, _ := auth.NewTokenManager("test-secret", time.Hour, logger)
	h := Auth(tokens, &stubUserRepo{})(inner)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/auth/login", nil))

	if !called {
		t.Error("public path did not reach handler")
	}
}

func TestAuthAttachesPrincipal(t *testing.T) {
	user := &models.User{ID: "u1", Username: "alice", Role: models.RoleUser, GroupIDs: []string{"g1"}}
	h, tokens := authFixture(t, map[string]*models.User{"u1": user})

	token, err := tokens.Issue(user)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/api/groups", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAuthRegisterWithoutTokenHasNoPrincipal(t *testing.T) {
	var principal *models.Principal
	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		principal = httputil.GetPrincipal(r)
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, _ := auth.NewTokenManager("test-secret", time.Hour, logger)
	h := Auth(tokens, &stubUserRepo{})(inner)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/auth/register", nil))

	if !called {
		t.Fatal("register did not reach handler")
	}
	if principal != nil {
		t.Errorf("principal = %+v, want nil", principal)
	}
}

func TestAuthRegisterWithTokenAttachesPrincipal(t *testing.T) {
	user := &models.User{ID: "u1", Username: "root", Role: models.RoleSuperadmin}

	var principal *models.Principal
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal = httputil.GetPrincipal(r)
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := auth.NewTokenManager("test-secret", time.Hour, logger)
	if err != nil {
		t.Fatal(err)
	}
	h := Auth(tokens, &stubUserRepo{users: map[string]*models.User{"u1": user}})(inner)

	token, err := tokens.Issue(user)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("POST", "/api/auth/register", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if principal == nil {
		t.Fatal("register with token reached handler without principal")
	}
	if principal.Role != models.RoleSuperadmin {
		t.Errorf("role = %q, want superadmin", principal.Role)
	}
}

func TestAuthRegisterWithBadTokenRejected(t *testing.T) {
	h, _ := authFixture(t, nil)

	req := httptest.NewRequest("POST", "/api/auth/register", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthRejectsArchivedUser(t *testing.T) {
	user := &models.User{ID: "u1", Username: "alice", Role: models.RoleUser, IsArchived: true}
	h, tokens := authFixture(t, map[string]*models.User{"u1": user})

	token, err := tokens.Issue(user)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/api/groups", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestAuthRejectsDeletedUser(t *testing.T) {
	user := &models.User{ID: "gone", Role: models.RoleUser}
	h, tokens := authFixture(t, map[string]*models.User{})

	token, err := tokens.Issue(user)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/api/groups", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
