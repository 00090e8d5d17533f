package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/domain"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/events"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/store"
)

// maxSlugAttempts bounds slug regeneration under concurrent creation of
// colliding titles before giving up with ErrConflict.
const maxSlugAttempts = 5

// Default and maximum page sizes for listings.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ItemView is the projection of an item for a given viewer: the entity plus
// the viewer-dependent favorited flag and the seller's profile.
type ItemView struct {
	Item      *domain.Item
	Favorited bool
	Seller    domain.Profile
}

// ItemUpdate is a partial update of an item. Nil fields are left unchanged.
// A title change regenerates the slug.
type ItemUpdate struct {
	Title       *string
	Description *string
	Image       *string
	TagList     *[]string
}

// ItemService implements the catalog graph: item lifecycle, slug uniqueness,
// favorites, and listings.
type ItemService interface {
	// Create makes a new item owned by the caller and emits an item_created
	// event. Slug collisions are retried with a random suffix, bounded by
	// maxSlugAttempts.
	Create(ctx context.Context, caller *domain.Identity, title, description, image string, tagList []string) (*ItemView, error)

	// Get retrieves an item by slug, projected for the viewer.
	Get(ctx context.Context, viewer *domain.Identity, slug string) (*ItemView, error)

	// Update applies a partial update. Only the seller may update.
	Update(ctx context.Context, caller *domain.Identity, slug string, update ItemUpdate) (*ItemView, error)

	// Delete removes the item and all of its comments in one transaction.
	// Only the seller may delete.
	Delete(ctx context.Context, caller *domain.Identity, slug string) error

	// Favorite marks the item as favorited by the caller. Idempotent; the
	// membership edge and the counter move together atomically.
	Favorite(ctx context.Context, caller *domain.Identity, slug string) (*ItemView, error)

	// Unfavorite reverses Favorite. Idempotent.
	Unfavorite(ctx context.Context, caller *domain.Identity, slug string) (*ItemView, error)

	// List returns items matching the filter, newest first, with the total
	// match count.
	List(ctx context.Context, viewer *domain.Identity, filter store.ItemFilter) ([]*ItemView, int, error)

	// Feed returns items from sellers the caller follows, newest first.
	Feed(ctx context.Context, caller *domain.Identity, limit, offset int) ([]*ItemView, int, error)

	// Tags returns the distinct tags in the catalog.
	Tags(ctx context.Context) ([]string, error)
}

type itemService struct {
	items    store.ItemStore
	users    store.UserStore
	comments store.CommentStore
	emitter  events.Emitter
	logger   *slog.Logger

	// runTx executes fn inside a transaction. A field so tests can run
	// against fake stores without a live database.
	runTx func(ctx context.Context, fn store.TxFn) error
}

// NewItemService creates an ItemService. The database handle is used to open
// the transactions that keep favorites and deletions atomic.
func NewItemService(
	db *sql.DB,
	items store.ItemStore,
	users store.UserStore,
	comments store.CommentStore,
	emitter events.Emitter,
	logger *slog.Logger,
) (ItemService, error) {
	if db == nil {
		return nil, &ServiceError{Operation: "create_item_service", Message: "db cannot be nil"}
	}
	if items == nil || users == nil || comments == nil {
		return nil, &ServiceError{Operation: "create_item_service", Message: "stores cannot be nil"}
	}
	if emitter == nil {
		return nil, &ServiceError{Operation: "create_item_service", Message: "event emitter cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &itemService{
		items:    items,
		users:    users,
		comments: comments,
		emitter:  emitter,
		logger:   logger.With(slog.String("component", "item_service")),
		runTx: func(ctx context.Context, fn store.TxFn) error {
			return store.RunInTransaction(ctx, db, fn)
		},
	}, nil
}

// Create implements ItemService.Create
func (s *itemService) Create(ctx context.Context, caller *domain.Identity, title, description, image string, tagList []string) (*ItemView, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}

	item, err := domain.NewItem(caller.UserID, title, description, image, tagList)
	if err != nil {
		return nil, validationError(err)
	}

	baseSlug := item.Slug
	for attempt := 0; ; attempt++ {
		err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
			return s.items.WithTx(tx).Create(ctx, item)
		})
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrSlugExists) {
			return nil, mapStoreError(err)
		}
		if attempt == maxSlugAttempts-1 {
			s.logger.Warn("exhausted slug regeneration attempts",
				"base_slug", baseSlug,
				"attempts", maxSlugAttempts)
			return nil, fmt.Errorf("%w: could not allocate a unique slug for %q", ErrConflict, title)
		}
		item.Slug = baseSlug + "-" + domain.SlugSuffix()
	}

	// Fire and forget: a failed notification never rolls back creation.
	if event, evErr := events.NewItemCreatedEvent(item); evErr == nil {
		if emitErr := s.emitter.EmitEvent(ctx, event); emitErr != nil {
			s.logger.Warn("failed to emit item_created event",
				"error", emitErr,
				"slug", item.Slug)
		}
	}

	return s.view(ctx, caller, item)
}

// Get implements ItemService.Get
func (s *itemService) Get(ctx context.Context, viewer *domain.Identity, slug string) (*ItemView, error) {
	item, err := retryRead(ctx, func() (*domain.Item, error) {
		return s.items.GetBySlug(ctx, slug)
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return s.view(ctx, viewer, item)
}

// Update implements ItemService.Update
func (s *itemService) Update(ctx context.Context, caller *domain.Identity, slug string, update ItemUpdate) (*ItemView, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}

	item, err := s.items.GetBySlug(ctx, slug)
	if err != nil {
		return nil, mapStoreError(err)
	}

	// Items are mutated only by their seller.
	if !domain.CanMutate(caller, item.SellerID, false) {
		return nil, ErrForbidden
	}

	retitled := false
	if update.Title != nil && *update.Title != item.Title {
		item.Title = *update.Title
		item.Slug = domain.Slugify(item.Title)
		retitled = true
	}
	if update.Description != nil {
		item.Description = *update.Description
	}
	if update.Image != nil {
		item.Image = *update.Image
	}
	if update.TagList != nil {
		item.TagList = *update.TagList
	}

	if err := item.Validate(); err != nil {
		return nil, validationError(err)
	}

	baseSlug := item.Slug
	for attempt := 0; ; attempt++ {
		err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
			return s.items.WithTx(tx).Update(ctx, item)
		})
		if err == nil {
			break
		}
		if !retitled || !errors.Is(err, store.ErrSlugExists) {
			return nil, mapStoreError(err)
		}
		if attempt == maxSlugAttempts-1 {
			return nil, fmt.Errorf("%w: could not allocate a unique slug for %q", ErrConflict, item.Title)
		}
		item.Slug = baseSlug + "-" + domain.SlugSuffix()
	}

	return s.view(ctx, caller, item)
}

// Delete implements ItemService.Delete
func (s *itemService) Delete(ctx context.Context, caller *domain.Identity, slug string) error {
	if caller == nil {
		return ErrUnauthorized
	}

	item, err := s.items.GetBySlug(ctx, slug)
	if err != nil {
		return mapStoreError(err)
	}

	if !domain.CanMutate(caller, item.SellerID, false) {
		return ErrForbidden
	}

	// The item and its comments go together or not at all.
	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.comments.WithTx(tx).DeleteByItem(ctx, item.ID); err != nil {
			return err
		}
		return s.items.WithTx(tx).Delete(ctx, item.ID)
	})
	if err != nil {
		return mapStoreError(err)
	}

	return nil
}

// Favorite implements ItemService.Favorite
func (s *itemService) Favorite(ctx context.Context, caller *domain.Identity, slug string) (*ItemView, error) {
	return s.setFavorite(ctx, caller, slug, true)
}

// Unfavorite implements ItemService.Unfavorite
func (s *itemService) Unfavorite(ctx context.Context, caller *domain.Identity, slug string) (*ItemView, error) {
	return s.setFavorite(ctx, caller, slug, false)
}

// setFavorite applies the membership edge and the counter as one atomic
// unit. Redundant favorites and unfavorites are no-op successes: the edge
// insert/delete reports whether anything changed and the counter only moves
// when it did.
func (s *itemService) setFavorite(ctx context.Context, caller *domain.Identity, slug string, favorite bool) (*ItemView, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}

	item, err := s.items.GetBySlug(ctx, slug)
	if err != nil {
		return nil, mapStoreError(err)
	}

	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		items := s.items.WithTx(tx)

		var changed bool
		var txErr error
		if favorite {
			changed, txErr = items.AddFavorite(ctx, caller.UserID, item.ID)
		} else {
			changed, txErr = items.RemoveFavorite(ctx, caller.UserID, item.ID)
		}
		if txErr != nil {
			return txErr
		}
		if !changed {
			return nil
		}

		delta := 1
		if !favorite {
			delta = -1
		}
		return items.AdjustFavoritesCount(ctx, item.ID, delta)
	})
	if err != nil {
		return nil, mapStoreError(err)
	}

	// Re-read for the committed counter value.
	item, err = s.items.GetBySlug(ctx, slug)
	if err != nil {
		return nil, mapStoreError(err)
	}

	return s.view(ctx, caller, item)
}

// List implements ItemService.List
func (s *itemService) List(ctx context.Context, viewer *domain.Identity, filter store.ItemFilter) ([]*ItemView, int, error) {
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)

	type page struct {
		items []*domain.Item
		total int
	}
	result, err := retryRead(ctx, func() (page, error) {
		items, total, err := s.items.List(ctx, filter)
		return page{items, total}, err
	})
	if err != nil {
		return nil, 0, mapStoreError(err)
	}

	views, err := s.views(ctx, viewer, result.items)
	if err != nil {
		return nil, 0, err
	}
	return views, result.total, nil
}

// Feed implements ItemService.Feed
func (s *itemService) Feed(ctx context.Context, caller *domain.Identity, limit, offset int) ([]*ItemView, int, error) {
	if caller == nil {
		return nil, 0, ErrUnauthorized
	}
	limit, offset = normalizePage(limit, offset)

	items, total, err := s.items.Feed(ctx, caller.UserID, limit, offset)
	if err != nil {
		return nil, 0, mapStoreError(err)
	}

	views, err := s.views(ctx, caller, items)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// Tags implements ItemService.Tags
func (s *itemService) Tags(ctx context.Context) ([]string, error) {
	tags, err := retryRead(ctx, func() ([]string, error) {
		return s.items.Tags(ctx)
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return tags, nil
}

// view projects a single item for a viewer.
func (s *itemService) view(ctx context.Context, viewer *domain.Identity, item *domain.Item) (*ItemView, error) {
	views, err := s.views(ctx, viewer, []*domain.Item{item})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// views projects a batch of items for a viewer with three bulk lookups:
// sellers, follow edges, and favorite edges.
func (s *itemService) views(ctx context.Context, viewer *domain.Identity, items []*domain.Item) ([]*ItemView, error) {
	if len(items) == 0 {
		return []*ItemView{}, nil
	}

	sellerIDs := make([]uuid.UUID, 0, len(items))
	itemIDs := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		sellerIDs = append(sellerIDs, it.SellerID)
		itemIDs = append(itemIDs, it.ID)
	}

	sellers, err := s.users.FindByIDs(ctx, sellerIDs)
	if err != nil {
		return nil, mapStoreError(err)
	}

	followed := map[uuid.UUID]bool{}
	favorited := map[uuid.UUID]bool{}
	if viewer != nil {
		if followed, err = s.users.FollowedAmong(ctx, viewer.UserID, sellerIDs); err != nil {
			return nil, mapStoreError(err)
		}
		if favorited, err = s.items.FavoritedAmong(ctx, viewer.UserID, itemIDs); err != nil {
			return nil, mapStoreError(err)
		}
	}

	views := make([]*ItemView, 0, len(items))
	for _, it := range items {
		view := &ItemView{Item: it, Favorited: favorited[it.ID]}
		if seller, ok := sellers[it.SellerID]; ok {
			view.Seller = domain.NewProfile(seller, followed[it.SellerID])
		}
		views = append(views, view)
	}

	return views, nil
}

// normalizePage clamps pagination to sane bounds.
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
