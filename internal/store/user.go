package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/domain"
)

// UserStore defines the interface for user persistence, including the
// directed follows relation.
type UserStore interface {
	// Create saves a new user.
	// Returns ErrUsernameExists or ErrEmailExists on uniqueness violations.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by email.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByUsername retrieves a user by username (case-sensitive).
	// Returns ErrUserNotFound if the user does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindByIDs retrieves the users with the given IDs, keyed by ID.
	// Missing IDs are simply absent from the result.
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error)

	// Update persists changes to an existing user.
	// Returns ErrUserNotFound if the user does not exist, or
	// ErrUsernameExists/ErrEmailExists when the new value is taken.
	Update(ctx context.Context, user *domain.User) error

	// Follow records a directed follow edge. Adding an existing edge is a
	// no-op. Returns ErrUserNotFound when either side does not exist.
	Follow(ctx context.Context, followerID, followeeID uuid.UUID) error

	// Unfollow removes a follow edge. Removing an absent edge is a no-op.
	Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error

	// IsFollowing reports whether followerID follows followeeID.
	IsFollowing(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error)

	// FollowedAmong returns, for each candidate ID, whether followerID
	// follows them. Used to enrich comment and item listings in one query.
	FollowedAmong(ctx context.Context, followerID uuid.UUID, candidates []uuid.UUID) (map[uuid.UUID]bool, error)

	// WithTx returns a UserStore bound to the given transaction.
	WithTx(tx *sql.Tx) UserStore
}
