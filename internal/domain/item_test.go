package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItem(t *testing.T) {
	t.Parallel()

	sellerID := uuid.New()

	t.Run("creates valid item", func(t *testing.T) {
		t.Parallel()
		item, err := NewItem(sellerID, "Vintage Camera", "A well-kept camera", "camera.png", []string{"photo", "vintage"})
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, item.ID)
		assert.Equal(t, "vintage-camera", item.Slug)
		assert.Equal(t, sellerID, item.SellerID)
		assert.Equal(t, []string{"photo", "vintage"}, item.TagList)
		assert.Zero(t, item.FavoritesCount)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		t.Parallel()
		item, err := NewItem(sellerID, "", "", "", nil)
		assert.ErrorIs(t, err, ErrEmptyTitle)
		assert.Nil(t, item)
	})

	t.Run("rejects nil seller", func(t *testing.T) {
		t.Parallel()
		item, err := NewItem(uuid.Nil, "Vintage Camera", "", "", nil)
		assert.ErrorIs(t, err, ErrEmptySellerID)
		assert.Nil(t, item)
	})

	t.Run("dedupes tags preserving order", func(t *testing.T) {
		t.Parallel()
		item, err := NewItem(sellerID, "Vintage Camera", "", "", []string{"photo", "", "vintage", "photo"})
		require.NoError(t, err)
		assert.Equal(t, []string{"photo", "vintage"}, item.TagList)
	})
}

func TestItemValidate(t *testing.T) {
	t.Parallel()

	t.Run("rejects negative favorites count", func(t *testing.T) {
		t.Parallel()
		item := &Item{
			ID:             uuid.New(),
			Slug:           "vintage-camera",
			Title:          "Vintage Camera",
			SellerID:       uuid.New(),
			FavoritesCount: -1,
		}
		assert.ErrorIs(t, item.Validate(), ErrNegativeFavoriteCount)
	})

	t.Run("rejects empty slug", func(t *testing.T) {
		t.Parallel()
		item := &Item{
			ID:       uuid.New(),
			Title:    "Vintage Camera",
			SellerID: uuid.New(),
		}
		assert.ErrorIs(t, item.Validate(), ErrEmptySlug)
	})
}
