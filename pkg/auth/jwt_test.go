package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microfin/loanbook/pkg/auth"
)

func newService(t *testing.T) *auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService(auth.JWTConfig{
		Secret: "test-secret",
		Issuer: "loanbook",
	})
	require.NoError(t, err)
	return svc
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := newService(t)

	token, err := svc.GenerateToken("user-1", []string{auth.RoleOfficer})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "loanbook", claims.Issuer)
	assert.True(t, claims.HasRole(auth.RoleOfficer))
	assert.False(t, claims.HasRole(auth.RoleAdmin))
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	svc := newService(t)
	token, err := svc.GenerateToken("user-1", nil)
	require.NoError(t, err)

	other, err := auth.NewJWTService(auth.JWTConfig{Secret: "other-secret", Issuer: "loanbook"})
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsWrongIssuer(t *testing.T) {
	issued, err := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret", Issuer: "someone-else"})
	require.NoError(t, err)
	token, err := issued.GenerateToken("user-1", nil)
	require.NoError(t, err)

	_, err = newService(t).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	expired := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "loanbook",
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		UserID: "user-1",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expired).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = newService(t).ValidateToken(token)
	assert.Error(t, err)
}

func TestNewJWTService_RequiresSecret(t *testing.T) {
	_, err := auth.NewJWTService(auth.JWTConfig{})
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	svc := newService(t)
	var gotClaims *auth.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = auth.ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := auth.Middleware(svc, []string{"/healthz"})(next)

	t.Run("valid token passes and claims reach the handler", func(t *testing.T) {
		token, err := svc.GenerateToken("user-1", []string{auth.RoleAdmin})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/loans", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, gotClaims)
		assert.Equal(t, "user-1", gotClaims.UserID)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/loans", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/loans", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("skip paths bypass authentication", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := auth.RequireRole(next, auth.RoleAdmin)

	t.Run("matching role passes", func(t *testing.T) {
		claims := &auth.Claims{Roles: []string{auth.RoleAdmin}}
		req := httptest.NewRequest(http.MethodDelete, "/api/loans/LON-0001", nil)
		req = req.WithContext(auth.ContextWithClaims(req.Context(), claims))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing role is forbidden", func(t *testing.T) {
		claims := &auth.Claims{Roles: []string{auth.RoleViewer}}
		req := httptest.NewRequest(http.MethodDelete, "/api/loans/LON-0001", nil)
		req = req.WithContext(auth.ContextWithClaims(req.Context(), claims))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("no claims is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/loans/LON-0001", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
