package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/api/shared"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/domain"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/service/auth"
)

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	jwtService auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// Authenticate validates the bearer token from the Authorization header and
// adds the caller's identity to the request context. Requests without a
// valid token are rejected.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			respondTokenError(w, r, auth.ErrMissingToken)
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			respondTokenError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), shared.IdentityContextKey, claims.Identity())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional validates the bearer token when one is present but lets
// unauthenticated requests through. Read endpoints use it to project
// viewer-dependent fields like following and favorited.
func (m *AuthMiddleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			// A presented-but-invalid token is rejected rather than
			// silently downgraded to anonymous.
			respondTokenError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), shared.IdentityContextKey, claims.Identity())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetIdentity extracts the authenticated identity from the request context.
// Returns nil for anonymous requests.
func GetIdentity(r *http.Request) *domain.Identity {
	identity, ok := r.Context().Value(shared.IdentityContextKey).(*domain.Identity)
	if !ok {
		return nil
	}
	return identity
}

// bearerToken pulls the token out of an "Authorization: Bearer <token>"
// header. The "Token <token>" form is accepted as well for older clients.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || (parts[0] != "Bearer" && parts[0] != "Token") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), parts[1] != ""
}

func respondTokenError(w http.ResponseWriter, r *http.Request, err error) {
	switch err {
	case auth.ErrMissingToken:
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
	case auth.ErrExpiredToken:
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
	case auth.ErrInvalidToken:
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
	default:
		slog.Error("failed to validate token", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
	}
}
