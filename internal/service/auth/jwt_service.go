package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/domain"
)

// JWTService issues and validates signed session tokens.
type JWTService interface {
	// GenerateToken creates a signed token carrying the user's ID and role.
	GenerateToken(ctx context.Context, userID uuid.UUID, role domain.Role) (string, error)

	// ValidateToken verifies the token and extracts its claims. Returns
	// ErrExpiredToken past the validity window and ErrInvalidToken for
	// anything malformed or forged; both are surfaced to clients as
	// unauthenticated without further distinction.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the validated content of a session token.
type Claims struct {
	UserID    uuid.UUID   `json:"uid"`
	Role      domain.Role `json:"role"`
	Subject   string      `json:"sub,omitempty"`
	IssuedAt  time.Time   `json:"iat,omitempty"`
	ExpiresAt time.Time   `json:"exp,omitempty"`
	ID        string      `json:"jti,omitempty"`
}

// Identity converts validated claims into the caller identity passed to the
// service layer.
func (c *Claims) Identity() *domain.Identity {
	return &domain.Identity{UserID: c.UserID, Role: c.Role}
}
