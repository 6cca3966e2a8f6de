package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/ratehub/ratehub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubValidator implements TokenValidator for testing.
type stubValidator struct {
	userID int64
	role   domain.Role
	err    error
}

func (s *stubValidator) ValidateToken(_ context.Context, _ string) (int64, domain.Role, error) {
	return s.userID, s.role, s.err
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	mw := AuthMiddleware(&stubValidator{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	mw(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	mw := AuthMiddleware(&stubValidator{})

	for _, header := range []string{"Basic abc", "Bearer", "token-without-scheme"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()

		mw(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	mw := AuthMiddleware(&stubValidator{err: assert.AnError})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()

	mw(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_StoresClaimInContext(t *testing.T) {
	mw := AuthMiddleware(&stubValidator{userID: 42, role: domain.RoleNormalUser})

	var gotID int64
	var gotRole domain.Role
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = GetUserID(r.Context())
		gotRole = GetRole(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()

	mw(handler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), gotID)
	assert.Equal(t, domain.RoleNormalUser, gotRole)
}

func TestRequireRole_Matches(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), RoleKey, domain.RoleAdmin)
	rec := httptest.NewRecorder()

	RequireRole(domain.RoleAdmin)(okHandler()).ServeHTTP(rec, req.WithContext(ctx))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_WrongRoleIsForbidden(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), RoleKey, domain.RoleNormalUser)
	rec := httptest.NewRecorder()

	RequireRole(domain.RoleAdmin)(okHandler()).ServeHTTP(rec, req.WithContext(ctx))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRole_NoClaimIsUnauthenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	RequireRole(domain.RoleAdmin)(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func newSelfOrAdminRequest(t *testing.T, userID int64, role domain.Role, resourceID string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/users/"+resourceID, nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", resourceID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, UserIDKey, userID)
	ctx = context.WithValue(ctx, RoleKey, role)

	return req.WithContext(ctx)
}

func TestRequireSelfOrAdmin(t *testing.T) {
	tests := []struct {
		name       string
		userID     int64
		role       domain.Role
		resourceID string
		wantStatus int
	}{
		{"admin can access anyone", 1, domain.RoleAdmin, "99", http.StatusOK},
		{"user can access self", 7, domain.RoleNormalUser, "7", http.StatusOK},
		{"user cannot access others", 7, domain.RoleNormalUser, "8", http.StatusForbidden},
		{"owner cannot access others", 7, domain.RoleStoreOwner, "8", http.StatusForbidden},
		{"malformed id is rejected", 7, domain.RoleNormalUser, "abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newSelfOrAdminRequest(t, tt.userID, tt.role, tt.resourceID)
			rec := httptest.NewRecorder()

			RequireSelfOrAdmin("id")(okHandler()).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
