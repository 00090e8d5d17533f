package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/domain"
)

// ItemFilter narrows and pages item listings. Zero-value fields are ignored.
type ItemFilter struct {
	// Tag restricts to items carrying the tag.
	Tag string
	// Seller restricts to items sold by the named user.
	Seller string
	// FavoritedBy restricts to items favorited by the named user.
	FavoritedBy string

	Limit  int
	Offset int
}

// ItemStore defines the interface for item persistence, including tags and
// the favorites relation.
type ItemStore interface {
	// Create saves a new item together with its tag list.
	// Returns ErrSlugExists when the slug is already taken.
	Create(ctx context.Context, item *domain.Item) error

	// GetBySlug retrieves an item (with tags) by slug.
	// Returns ErrItemNotFound if the item does not exist.
	GetBySlug(ctx context.Context, slug string) (*domain.Item, error)

	// Update persists changes to title, description, image, and tags.
	// Returns ErrItemNotFound if the item does not exist and ErrSlugExists
	// when a regenerated slug collides.
	Update(ctx context.Context, item *domain.Item) error

	// Delete removes an item. Comment cleanup is the caller's concern and is
	// expected to run in the same transaction.
	// Returns ErrItemNotFound if the item does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns items matching the filter ordered by creation time
	// descending, plus the total match count before paging.
	List(ctx context.Context, filter ItemFilter) ([]*domain.Item, int, error)

	// Feed returns items whose seller is followed by userID, newest first,
	// plus the total count.
	Feed(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Item, int, error)

	// AddFavorite inserts the (user, item) favorite edge and reports whether
	// it was newly added. It does not touch the counter; callers pair it with
	// AdjustFavoritesCount inside one transaction.
	AddFavorite(ctx context.Context, userID, itemID uuid.UUID) (bool, error)

	// RemoveFavorite deletes the favorite edge and reports whether it existed.
	RemoveFavorite(ctx context.Context, userID, itemID uuid.UUID) (bool, error)

	// AdjustFavoritesCount atomically adds delta to the item's counter.
	AdjustFavoritesCount(ctx context.Context, itemID uuid.UUID, delta int) error

	// FavoritedAmong returns, for each candidate item, whether userID has
	// favorited it.
	FavoritedAmong(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID) (map[uuid.UUID]bool, error)

	// Tags returns the distinct tags across all items.
	Tags(ctx context.Context) ([]string, error)

	// WithTx returns an ItemStore bound to the given transaction.
	WithTx(tx *sql.Tx) ItemStore
}
