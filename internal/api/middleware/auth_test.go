package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/config"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/domain"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/service/auth"
)

func testJWTService(t *testing.T) auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:      "test-jwt-secret-that-is-32-chars-long",
		TokenLifetime:  time.Hour,
		HashIterations: 10000,
	})
	require.NoError(t, err)
	return svc
}

// identityEcho records the identity the middleware placed in the context.
func identityEcho(captured **domain.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = GetIdentity(r)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	jwtService := testJWTService(t)
	userID := uuid.New()
	token, err := jwtService.GenerateToken(context.Background(), userID, domain.RoleUser)
	require.NoError(t, err)

	t.Run("valid bearer token passes with identity", func(t *testing.T) {
		t.Parallel()
		var got *domain.Identity
		handler := NewAuthMiddleware(jwtService).Authenticate(identityEcho(&got))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
		assert.Equal(t, userID, got.UserID)
		assert.Equal(t, domain.RoleUser, got.Role)
	})

	t.Run("Token scheme is accepted", func(t *testing.T) {
		t.Parallel()
		var got *domain.Identity
		handler := NewAuthMiddleware(jwtService).Authenticate(identityEcho(&got))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Token "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		t.Parallel()
		handler := NewAuthMiddleware(jwtService).Authenticate(identityEcho(new(*domain.Identity)))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Authorization header required")
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		t.Parallel()
		handler := NewAuthMiddleware(jwtService).Authenticate(identityEcho(new(*domain.Identity)))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong scheme is rejected", func(t *testing.T) {
		t.Parallel()
		handler := NewAuthMiddleware(jwtService).Authenticate(identityEcho(new(*domain.Identity)))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestOptional(t *testing.T) {
	t.Parallel()

	jwtService := testJWTService(t)
	userID := uuid.New()
	token, err := jwtService.GenerateToken(context.Background(), userID, domain.RoleUser)
	require.NoError(t, err)

	t.Run("anonymous request passes with nil identity", func(t *testing.T) {
		t.Parallel()
		var got *domain.Identity
		handler := NewAuthMiddleware(jwtService).Optional(identityEcho(&got))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, got)
	})

	t.Run("valid token attaches identity", func(t *testing.T) {
		t.Parallel()
		var got *domain.Identity
		handler := NewAuthMiddleware(jwtService).Optional(identityEcho(&got))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
		assert.Equal(t, userID, got.UserID)
	})

	t.Run("presented invalid token is rejected", func(t *testing.T) {
		t.Parallel()
		handler := NewAuthMiddleware(jwtService).Optional(identityEcho(new(*domain.Identity)))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
