package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/domain"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/events"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/store"
)

type itemFixture struct {
	users    *fakeUserStore
	items    *fakeItemStore
	comments *fakeCommentStore
	emitter  *fakeEmitter
	svc      *itemService
	userSvc  UserService
}

func newItemFixture(t *testing.T) *itemFixture {
	t.Helper()
	users := newFakeUserStore()
	items := newFakeItemStore(users)
	comments := newFakeCommentStore()
	emitter := &fakeEmitter{}
	return &itemFixture{
		users:    users,
		items:    items,
		comments: comments,
		emitter:  emitter,
		svc:      newTestItemService(items, users, comments, emitter),
		userSvc:  newTestUserService(t, users, emitter),
	}
}

func (fx *itemFixture) seller(t *testing.T, username string) *domain.User {
	t.Helper()
	return registerTestUser(t, fx.userSvc, username, username+"@jake.jake")
}

func TestItemCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates item with derived slug", func(t *testing.T) {
		t.Parallel()
		fx := newItemFixture(t)
		seller := fx.seller(t, "jacob")

		view, err := fx.svc.Create(ctx, identityOf(seller), "Vintage Camera", "well kept", "camera.png", []string{"photo"})
		require.NoError(t, err)

		assert.Equal(t, "vintage-camera", view.Item.Slug)
		assert.Equal(t, seller.ID, view.Item.SellerID)
		assert.Equal(t, "jacob", view.Seller.Username)
		assert.False(t, view.Favorited)
		assert.Zero(t, view.Item.FavoritesCount)
	})

	t.Run("emits item_created", func(t *testing.T) {
		t.Parallel()
		fx := newItemFixture(t)
		seller := fx.seller(t, "jacob")

		_, err := fx.svc.Create(ctx, identityOf(seller), "Vintage Camera", "", "", nil)
		require.NoError(t, err)

		emitted := fx.emitter.named(events.EventItemCreated)
		require.Len(t, emitted, 1)
		var item domain.Item
		require.NoError(t, emitted[0].UnmarshalPayload(&item))
		assert.Equal(t, "vintage-camera", item.Slug)
	})

	t.Run("colliding title gets a suffixed slug", func(t *testing.T) {
		t.Parallel()
		fx := newItemFixture(t)
		seller := fx.seller(t, "jacob")

		first, err := fx.svc.Create(ctx, identityOf(seller), "Vintage Camera", "", "", nil)
		require.NoError(t, err)
		second, err := fx.svc.Create(ctx, identityOf(seller), "Vintage Camera", "", "", nil)
		require.NoError(t, err)

		assert.Equal(t, "vintage-camera", first.Item.Slug)
		assert.True(t, strings.HasPrefix(second.Item.Slug, "vintage-camera-"))
		assert.NotEqual(t, first.Item.Slug, second.Item.Slug)
	})

	t.Run("concurrent same-title creates get unique slugs", func(t *testing.T) {
		t.Parallel()
		fx := newItemFixture(t)
		seller := fx.seller(t, "jacob")

		const writers = 6
		var wg sync.WaitGroup
		slugs := make(chan string, writers)
		errs := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				view, createErr := fx.svc.Create(ctx, identityOf(seller), "Vintage Camera", "", "", nil)
				if createErr != nil {
					errs <- createErr
					return
				}
				slugs <- view.Item.Slug
			}()
		}
		wg.Wait()
		close(slugs)
		close(errs)
		for createErr := range errs {
			require.NoError(t, createErr)
		}

		seen := map[string]bool{}
		for slug := range slugs {
			assert.True(t, strings.HasPrefix(slug, "vintage-camera"))
			assert.False(t, seen[slug], "slug %q allocated twice", slug)
			seen[slug] = true
		}
		assert.Len(t, seen, writers)
	})

	t.Run("anonymous caller is unauthorized", func(t *testing.T) {
		t.Parallel()
		fx := newItemFixture(t)
		_, err := fx.svc.Create(ctx, nil, "Vintage Camera", "", "", nil)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("empty title is a validation error", func(t *testing.T) {
		t.Parallel()
		fx := newItemFixture(t)
		seller := fx.seller(t, "jacob")
		_, err := fx.svc.Create(ctx, identityOf(seller), "", "", "", nil)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestItemUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("title change regenerates slug", func(t *testing.T) {
		t.Parallel()
		fx := newItemFixture(t)
		seller := fx.seller(t, "jacob")
		created, err := fx.svc.Create(ctx, identityOf(seller), "Vintage Camera", "", "", nil)
		require.NoError(t, err)

		newTitle := "Restored Camera"
		view, err := fx.svc.Update(ctx, identityOf(seller), created.Item.Slug, ItemUpdate{Title: &newTitle})
		require.NoError(t, err)

		assert.Equal(t, "Restored Camera", view.Item.Title)
		assert.Equal(t, "restored-camera", view.Item.Slug)
	})

	t.Run("description change keeps slug", func(t *testing.T) {
		t.Parallel()
		fx := newItemFixture(t)
		seller := fx.seller(t, "jacob")
		created, err := fx.svc.Create(ctx, identityOf(seller), "Vintage Camera", "", "", nil)
		require.NoError(t, err)

		desc := "now with lens cap"
		view, err := fx.svc.Update(ctx, identityOf(seller), created.Item.Slug, ItemUpdate{Description: &desc})
		require.NoError(t, err)

		assert.Equal(t, "vintage-camera", view.Item.Slug)
		assert.Equal(t, "now with lens cap", view.Item.Description)
	})

	t.Run("non-seller is forbidden", func(t *testing.T) {
		t.Parallel()
		fx := newItemFixture(t)
		seller := fx.seller(t, "jacob")
		intruder := fx.seller(t, "intruder")
		created, err := fx.svc.Create(ctx, identityOf(seller), "Vintage Camera", "", "", nil)
		require.NoError(t, err)

		title := "Stolen Camera"
		_, err = fx.svc.Update(ctx, identityOf(intruder), created.Item.Slug, ItemUpdate{Title: &title})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin without ownership is forbidden", func(t *testing.T) {
		t.Parallel()
		fx := newItemFixture(t)
		seller := fx.seller(t, "jacob")
		created, err := fx.svc.Create(ctx, identityOf(seller), "Vintage Camera", "", "", nil)
		require.NoError(t, err)

		admin := &domain.Identity{UserID: fx.seller(t, "admin").ID, Role: domain.RoleAdmin}
		title := "Moderated Camera"
		_, err = fx.svc.Update(ctx, admin, created.Item.Slug, ItemUpdate{Title: &title})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown slug is not found", func(t *testing.T) {
		t.Parallel()
		fx := newItemFixture(t)
		seller := fx.seller(t, "jacob")
		title := "Anything"
		_, err := fx.svc.Update(ctx, identityOf(seller), "no-such-item", ItemUpdate{Title: &title})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestItemDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("removes item and its comments", func(t *testing.T) {
		t.Parallel()
		fx := newItemFixture(t)
		seller := fx.seller(t, "jacob")
		created, err := fx.svc.Create(ctx, identityOf(seller), "Vintage Camera", "", "", nil)
		require.NoError(t, err)

		comment, err := domain.NewComment(seller.ID, created.Item.ID, "still available?")
		require.NoError(t, err)
		require.NoError(t, fx.comments.Create(ctx, comment))

		require.NoError(t, fx.svc.Delete(ctx, identityOf(seller), created.Item.Slug))

		_, err = fx.svc.Get(ctx, nil, created.Item.Slug)
		assert.ErrorIs(t, err, ErrNotFound)
		remaining, err := fx.comments.ListByItem(ctx, created.Item.ID)
		require.NoError(t, err)
		assert.Empty(t, remaining)
	})

	t.Run("non-seller is forbidden", func(t *testing.T) {
		t.Parallel()
		fx := newItemFixture(t)
		seller := fx.seller(t, "jacob")
		intruder := fx.seller(t, "intruder")
		created, err := fx.svc.Create(ctx, identityOf(seller), "Vintage Camera", "", "", nil)
		require.NoError(t, err)

		err = fx.svc.Delete(ctx, identityOf(intruder), created.Item.Slug)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestItemFavorite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("favorite sets flag and count together", func(t *testing.T) {
		t.Parallel()
		fx := newItemFixture(t)
		seller := fx.seller(t, "jacob")
		fan := fx.seller(t, "fan")
		created, err := fx.svc.Create(ctx, identityOf(seller), "Vintage Camera", "", "", nil)
		require.NoError(t, err)

		view, err := fx.svc.Favorite(ctx, identityOf(fan), created.Item.Slug)
		require.NoError(t, err)
		assert.True(t, view.Favorited)
		assert.Equal(t, 1, view.Item.FavoritesCount)
	})

	t.Run("favorite is idempotent", func(t *testing.T) {
		t.Parallel()
		fx := newItemFixture(t)
		seller := fx.seller(t, "jacob")
		fan := fx.seller(t, "fan")
		created, err := fx.svc.Create(ctx, identityOf(seller), "Vintage Camera", "", "", nil)
		require.NoError(t, err)

		_, err = fx.svc.Favorite(ctx, identityOf(fan), created.Item.Slug)
		require.NoError(t, err)
		view, err := fx.svc.Favorite(ctx, identityOf(fan), created.Item.Slug)
		require.NoError(t, err)

		assert.True(t, view.Favorited)
		assert.Equal(t, 1, view.Item.FavoritesCount)
	})

	t.Run("unfavorite reverses favorite and is idempotent", func(t *testing.T) {
		t.Parallel()
		fx := newItemFixture(t)
		seller := fx.seller(t, "jacob")
		fan := fx.seller(t, "fan")
		created, err := fx.svc.Create(ctx, identityOf(seller), "Vintage Camera", "", "", nil)
		require.NoError(t, err)

		_, err = fx.svc.Favorite(ctx, identityOf(fan), created.Item.Slug)
		require.NoError(t, err)

		view, err := fx.svc.Unfavorite(ctx, identityOf(fan), created.Item.Slug)
		require.NoError(t, err)
		assert.False(t, view.Favorited)
		assert.Zero(t, view.Item.FavoritesCount)

		view, err = fx.svc.Unfavorite(ctx, identityOf(fan), created.Item.Slug)
		require.NoError(t, err)
		assert.Zero(t, view.Item.FavoritesCount)
	})

	t.Run("distinct users accumulate the count", func(t *testing.T) {
		t.Parallel()
		fx := newItemFixture(t)
		seller := fx.seller(t, "jacob")
		created, err := fx.svc.Create(ctx, identityOf(seller), "Vintage Camera", "", "", nil)
		require.NoError(t, err)

		for _, name := range []string{"fanone", "fantwo", "fanthree"} {
			fan := fx.seller(t, name)
			_, err = fx.svc.Favorite(ctx, identityOf(fan), created.Item.Slug)
			require.NoError(t, err)
		}

		view, err := fx.svc.Get(ctx, nil, created.Item.Slug)
		require.NoError(t, err)
		assert.Equal(t, 3, view.Item.FavoritesCount)
	})

	t.Run("concurrent favorites keep the count exact", func(t *testing.T) {
		t.Parallel()
		fx := newItemFixture(t)
		seller := fx.seller(t, "jacob")
		created, err := fx.svc.Create(ctx, identityOf(seller), "Vintage Camera", "", "", nil)
		require.NoError(t, err)

		fans := make([]*domain.User, 8)
		for i := range fans {
			fans[i] = fx.seller(t, fmt.Sprintf("fan%d", i))
		}

		var wg sync.WaitGroup
		errs := make(chan error, len(fans))
		for _, fan := range fans {
			wg.Add(1)
			go func(fan *domain.User) {
				defer wg.Done()
				_, favErr := fx.svc.Favorite(ctx, identityOf(fan), created.Item.Slug)
				errs <- favErr
			}(fan)
		}
		wg.Wait()
		close(errs)
		for favErr := range errs {
			require.NoError(t, favErr)
		}

		view, err := fx.svc.Get(ctx, nil, created.Item.Slug)
		require.NoError(t, err)
		assert.Equal(t, len(fans), view.Item.FavoritesCount)
	})

	t.Run("concurrent favorite and unfavorite pairs net to zero", func(t *testing.T) {
		t.Parallel()
		fx := newItemFixture(t)
		seller := fx.seller(t, "jacob")
		created, err := fx.svc.Create(ctx, identityOf(seller), "Vintage Camera", "", "", nil)
		require.NoError(t, err)

		fans := make([]*domain.User, 8)
		for i := range fans {
			fans[i] = fx.seller(t, fmt.Sprintf("fan%d", i))
		}

		var wg sync.WaitGroup
		errs := make(chan error, len(fans))
		for _, fan := range fans {
			wg.Add(1)
			go func(fan *domain.User) {
				defer wg.Done()
				if _, favErr := fx.svc.Favorite(ctx, identityOf(fan), created.Item.Slug); favErr != nil {
					errs <- favErr
					return
				}
				_, unfavErr := fx.svc.Unfavorite(ctx, identityOf(fan), created.Item.Slug)
				errs <- unfavErr
			}(fan)
		}
		wg.Wait()
		close(errs)
		for opErr := range errs {
			require.NoError(t, opErr)
		}

		view, err := fx.svc.Get(ctx, identityOf(fans[0]), created.Item.Slug)
		require.NoError(t, err)
		assert.Zero(t, view.Item.FavoritesCount)
		assert.False(t, view.Favorited)
	})

	t.Run("anonymous caller is unauthorized", func(t *testing.T) {
		t.Parallel()
		fx := newItemFixture(t)
		seller := fx.seller(t, "jacob")
		created, err := fx.svc.Create(ctx, identityOf(seller), "Vintage Camera", "", "", nil)
		require.NoError(t, err)

		_, err = fx.svc.Favorite(ctx, nil, created.Item.Slug)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestItemList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("filters by tag", func(t *testing.T) {
		t.Parallel()
		fx := newItemFixture(t)
		seller := fx.seller(t, "jacob")
		_, err := fx.svc.Create(ctx, identityOf(seller), "Vintage Camera", "", "", []string{"photo"})
		require.NoError(t, err)
		_, err = fx.svc.Create(ctx, identityOf(seller), "Old Bicycle", "", "", []string{"transport"})
		require.NoError(t, err)

		views, total, err := fx.svc.List(ctx, nil, store.ItemFilter{Tag: "photo"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, views, 1)
		assert.Equal(t, "vintage-camera", views[0].Item.Slug)
	})

	t.Run("filters by seller", func(t *testing.T) {
		t.Parallel()
		fx := newItemFixture(t)
		jacob := fx.seller(t, "jacob")
		celeb := fx.seller(t, "celeb")
		_, err := fx.svc.Create(ctx, identityOf(jacob), "Vintage Camera", "", "", nil)
		require.NoError(t, err)
		_, err = fx.svc.Create(ctx, identityOf(celeb), "Signed Poster", "", "", nil)
		require.NoError(t, err)

		views, total, err := fx.svc.List(ctx, nil, store.ItemFilter{Seller: "celeb"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, views, 1)
		assert.Equal(t, "signed-poster", views[0].Item.Slug)
		assert.Equal(t, "celeb", views[0].Seller.Username)
	})

	t.Run("filters by favoriting user", func(t *testing.T) {
		t.Parallel()
		fx := newItemFixture(t)
		seller := fx.seller(t, "jacob")
		fan := fx.seller(t, "fan")
		liked, err := fx.svc.Create(ctx, identityOf(seller), "Vintage Camera", "", "", nil)
		require.NoError(t, err)
		_, err = fx.svc.Create(ctx, identityOf(seller), "Old Bicycle", "", "", nil)
		require.NoError(t, err)
		_, err = fx.svc.Favorite(ctx, identityOf(fan), liked.Item.Slug)
		require.NoError(t, err)

		views, total, err := fx.svc.List(ctx, nil, store.ItemFilter{FavoritedBy: "fan"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, views, 1)
		assert.Equal(t, "vintage-camera", views[0].Item.Slug)
	})

	t.Run("projects favorited flag for the viewer", func(t *testing.T) {
		t.Parallel()
		fx := newItemFixture(t)
		seller := fx.seller(t, "jacob")
		fan := fx.seller(t, "fan")
		created, err := fx.svc.Create(ctx, identityOf(seller), "Vintage Camera", "", "", nil)
		require.NoError(t, err)
		_, err = fx.svc.Favorite(ctx, identityOf(fan), created.Item.Slug)
		require.NoError(t, err)

		views, _, err := fx.svc.List(ctx, identityOf(fan), store.ItemFilter{})
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.True(t, views[0].Favorited)

		views, _, err = fx.svc.List(ctx, nil, store.ItemFilter{})
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.False(t, views[0].Favorited)
	})

	t.Run("pagination clamps and reports full total", func(t *testing.T) {
		t.Parallel()
		fx := newItemFixture(t)
		seller := fx.seller(t, "jacob")
		for _, title := range []string{"First Item", "Second Item", "Third Item"} {
			_, err := fx.svc.Create(ctx, identityOf(seller), title, "", "", nil)
			require.NoError(t, err)
		}

		views, total, err := fx.svc.List(ctx, nil, store.ItemFilter{Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, views, 2)

		views, total, err = fx.svc.List(ctx, nil, store.ItemFilter{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, views, 1)
	})
}

func TestItemFeed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("feed shows only followed sellers", func(t *testing.T) {
		t.Parallel()
		fx := newItemFixture(t)
		reader := fx.seller(t, "reader")
		followed := fx.seller(t, "followed")
		ignored := fx.seller(t, "ignored")

		_, err := fx.svc.Create(ctx, identityOf(followed), "Vintage Camera", "", "", nil)
		require.NoError(t, err)
		_, err = fx.svc.Create(ctx, identityOf(ignored), "Old Bicycle", "", "", nil)
		require.NoError(t, err)

		_, err = fx.userSvc.Follow(ctx, identityOf(reader), "followed")
		require.NoError(t, err)

		views, total, err := fx.svc.Feed(ctx, identityOf(reader), 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, views, 1)
		assert.Equal(t, "vintage-camera", views[0].Item.Slug)
		assert.True(t, views[0].Seller.Following)
	})

	t.Run("anonymous feed is unauthorized", func(t *testing.T) {
		t.Parallel()
		fx := newItemFixture(t)
		_, _, err := fx.svc.Feed(ctx, nil, 0, 0)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestItemTags(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	fx := newItemFixture(t)
	seller := fx.seller(t, "jacob")
	_, err := fx.svc.Create(ctx, identityOf(seller), "Vintage Camera", "", "", []string{"photo", "vintage"})
	require.NoError(t, err)
	_, err = fx.svc.Create(ctx, identityOf(seller), "Old Bicycle", "", "", []string{"transport", "vintage"})
	require.NoError(t, err)

	tags, err := fx.svc.Tags(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"photo", "vintage", "transport"}, tags)
}
