package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyItemID           = errors.New("item ID cannot be empty")
	ErrEmptyTitle            = errors.New("title cannot be empty")
	ErrEmptySlug             = errors.New("slug cannot be empty")
	ErrEmptySellerID         = errors.New("seller ID cannot be empty")
	ErrNegativeFavoriteCount = errors.New("favorites count cannot be negative")
)

// Item represents a marketplace listing. SellerID references the owning user;
// FavoritesCount is derived state kept equal to the number of users whose
// favorites set contains this item, and is only ever changed by the
// favorite/unfavorite operations.
type Item struct {
	ID             uuid.UUID `json:"id"`
	Slug           string    `json:"slug"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	Image          string    `json:"image,omitempty"`
	TagList        []string  `json:"tag_list"`
	SellerID       uuid.UUID `json:"seller_id"`
	FavoritesCount int       `json:"favorites_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewItem creates an Item with a fresh ID and a slug derived from the title.
// Slug collisions are the store's concern; the service retries with a suffixed
// slug when the unique constraint trips.
func NewItem(sellerID uuid.UUID, title, description, image string, tagList []string) (*Item, error) {
	now := time.Now().UTC()
	item := &Item{
		ID:          uuid.New(),
		Slug:        Slugify(title),
		Title:       title,
		Description: description,
		Image:       image,
		TagList:     dedupeTags(tagList),
		SellerID:    sellerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks the item's invariant fields.
func (i *Item) Validate() error {
	if i.ID == uuid.Nil {
		return ErrEmptyItemID
	}
	if i.Title == "" {
		return ErrEmptyTitle
	}
	if i.Slug == "" {
		return ErrEmptySlug
	}
	if i.SellerID == uuid.Nil {
		return ErrEmptySellerID
	}
	if i.FavoritesCount < 0 {
		return ErrNegativeFavoriteCount
	}
	return nil
}

// dedupeTags removes duplicates while preserving first-occurrence order.
func dedupeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
