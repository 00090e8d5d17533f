package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/domain"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/events"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/store"
)

// In-memory store fakes. WithTx returns the fake itself; service tests wire
// runTx to call the transaction body directly.

type fakeUserStore struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*domain.User
	follows map[[2]uuid.UUID]bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:   make(map[uuid.UUID]*domain.User),
		follows: make(map[[2]uuid.UUID]bool),
	}
}

func (f *fakeUserStore) Create(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == user.Username {
			return store.ErrUsernameExists
		}
		if u.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[uuid.UUID]*domain.User, len(ids))
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			clone := *u
			out[id] = &clone
		}
	}
	return out, nil
}

func (f *fakeUserStore) Update(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	for _, u := range f.users {
		if u.ID == user.ID {
			continue
		}
		if u.Username == user.Username {
			return store.ErrUsernameExists
		}
		if u.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserStore) Follow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[followeeID]; !ok {
		return store.ErrUserNotFound
	}
	f.follows[[2]uuid.UUID{followerID, followeeID}] = true
	return nil
}

func (f *fakeUserStore) Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.follows, [2]uuid.UUID{followerID, followeeID})
	return nil
}

func (f *fakeUserStore) IsFollowing(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.follows[[2]uuid.UUID{followerID, followeeID}], nil
}

func (f *fakeUserStore) FollowedAmong(ctx context.Context, followerID uuid.UUID, candidates []uuid.UUID) (map[uuid.UUID]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[uuid.UUID]bool, len(candidates))
	for _, c := range candidates {
		if f.follows[[2]uuid.UUID{followerID, c}] {
			out[c] = true
		}
	}
	return out, nil
}

func (f *fakeUserStore) WithTx(tx *sql.Tx) store.UserStore { return f }

type fakeItemStore struct {
	mu        sync.Mutex
	items     map[uuid.UUID]*domain.Item
	favorites map[[2]uuid.UUID]bool
	users     *fakeUserStore
}

func newFakeItemStore(users *fakeUserStore) *fakeItemStore {
	return &fakeItemStore{
		items:     make(map[uuid.UUID]*domain.Item),
		favorites: make(map[[2]uuid.UUID]bool),
		users:     users,
	}
}

func (f *fakeItemStore) Create(ctx context.Context, item *domain.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.Slug == item.Slug {
			return store.ErrSlugExists
		}
	}
	clone := *item
	f.items[item.ID] = &clone
	return nil
}

func (f *fakeItemStore) GetBySlug(ctx context.Context, slug string) (*domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.Slug == slug {
			clone := *it
			return &clone, nil
		}
	}
	return nil, store.ErrItemNotFound
}

func (f *fakeItemStore) Update(ctx context.Context, item *domain.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[item.ID]; !ok {
		return store.ErrItemNotFound
	}
	for _, it := range f.items {
		if it.ID != item.ID && it.Slug == item.Slug {
			return store.ErrSlugExists
		}
	}
	clone := *item
	f.items[item.ID] = &clone
	return nil
}

func (f *fakeItemStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return store.ErrItemNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeItemStore) List(ctx context.Context, filter store.ItemFilter) ([]*domain.Item, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*domain.Item
	for _, it := range f.items {
		if filter.Tag != "" && !containsTag(it.TagList, filter.Tag) {
			continue
		}
		if filter.Seller != "" {
			seller, ok := f.users.users[it.SellerID]
			if !ok || seller.Username != filter.Seller {
				continue
			}
		}
		if filter.FavoritedBy != "" {
			var favUser *domain.User
			for _, u := range f.users.users {
				if u.Username == filter.FavoritedBy {
					favUser = u
					break
				}
			}
			if favUser == nil || !f.favorites[[2]uuid.UUID{favUser.ID, it.ID}] {
				continue
			}
		}
		clone := *it
		matched = append(matched, &clone)
	}

	sortNewestFirst(matched)
	total := len(matched)
	return pageOf(matched, filter.Limit, filter.Offset), total, nil
}

func (f *fakeItemStore) Feed(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Item, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*domain.Item
	for _, it := range f.items {
		if f.users.follows[[2]uuid.UUID{userID, it.SellerID}] {
			clone := *it
			matched = append(matched, &clone)
		}
	}

	sortNewestFirst(matched)
	total := len(matched)
	return pageOf(matched, limit, offset), total, nil
}

func (f *fakeItemStore) AddFavorite(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]uuid.UUID{userID, itemID}
	if f.favorites[key] {
		return false, nil
	}
	f.favorites[key] = true
	return true, nil
}

func (f *fakeItemStore) RemoveFavorite(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]uuid.UUID{userID, itemID}
	if !f.favorites[key] {
		return false, nil
	}
	delete(f.favorites, key)
	return true, nil
}

func (f *fakeItemStore) AdjustFavoritesCount(ctx context.Context, itemID uuid.UUID, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[itemID]
	if !ok {
		return store.ErrItemNotFound
	}
	it.FavoritesCount += delta
	return nil
}

func (f *fakeItemStore) FavoritedAmong(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[uuid.UUID]bool, len(itemIDs))
	for _, id := range itemIDs {
		if f.favorites[[2]uuid.UUID{userID, id}] {
			out[id] = true
		}
	}
	return out, nil
}

func (f *fakeItemStore) Tags(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]struct{})
	var tags []string
	for _, it := range f.items {
		for _, tag := range it.TagList {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags, nil
}

func (f *fakeItemStore) WithTx(tx *sql.Tx) store.ItemStore { return f }

type fakeCommentStore struct {
	mu       sync.Mutex
	comments map[uuid.UUID]*domain.Comment
}

func newFakeCommentStore() *fakeCommentStore {
	return &fakeCommentStore{comments: make(map[uuid.UUID]*domain.Comment)}
}

func (f *fakeCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *comment
	f.comments[comment.ID] = &clone
	return nil
}

func (f *fakeCommentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return nil, store.ErrCommentNotFound
	}
	clone := *c
	return &clone, nil
}

func (f *fakeCommentStore) ListByItem(ctx context.Context, itemID uuid.UUID) ([]*domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Comment
	for _, c := range f.comments {
		if c.ItemID == itemID {
			clone := *c
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeCommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.comments[id]; !ok {
		return store.ErrCommentNotFound
	}
	delete(f.comments, id)
	return nil
}

func (f *fakeCommentStore) DeleteByItem(ctx context.Context, itemID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, c := range f.comments {
		if c.ItemID == itemID {
			delete(f.comments, id)
		}
	}
	return nil
}

func (f *fakeCommentStore) WithTx(tx *sql.Tx) store.CommentStore { return f }

// fakeEmitter records emitted events.
type fakeEmitter struct {
	mu     sync.Mutex
	events []*events.Event
	err    error
}

func (f *fakeEmitter) EmitEvent(ctx context.Context, event *events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

func (f *fakeEmitter) named(name string) []*events.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*events.Event
	for _, e := range f.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func sortNewestFirst(items []*domain.Item) {
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
}

func pageOf(items []*domain.Item, limit, offset int) []*domain.Item {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// newTestItemService builds an itemService over the fakes with a pass-through
// transaction runner.
func newTestItemService(items *fakeItemStore, users *fakeUserStore, comments *fakeCommentStore, emitter events.Emitter) *itemService {
	svc := &itemService{
		items:    items,
		users:    users,
		comments: comments,
		emitter:  emitter,
		logger:   testLogger(),
		runTx: func(ctx context.Context, fn store.TxFn) error {
			return fn(ctx, nil)
		},
	}
	return svc
}
