package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/domain"
)

// CommentStore defines the interface for comment persistence.
type CommentStore interface {
	// Create saves a new comment.
	// Returns ErrInvalidEntity when the referenced item or author is gone.
	Create(ctx context.Context, comment *domain.Comment) error

	// GetByID retrieves a comment by ID.
	// Returns ErrCommentNotFound if the comment does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)

	// ListByItem returns the item's comments ordered by creation time
	// ascending.
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]*domain.Comment, error)

	// Delete removes a comment.
	// Returns ErrCommentNotFound if the comment does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByItem removes all comments attached to an item. Used by item
	// deletion inside the same transaction.
	DeleteByItem(ctx context.Context, itemID uuid.UUID) error

	// WithTx returns a CommentStore bound to the given transaction.
	WithTx(tx *sql.Tx) CommentStore
}
