package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/domain"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/service"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/store"
)

// Function-field stubs for the service interfaces. Unset fields panic,
// which in a test points straight at the call the handler was not expected
// to make.

type stubUserService struct {
	registerFn      func(ctx context.Context, username, email, rawPassword string) (*domain.User, error)
	authenticateFn  func(ctx context.Context, email, rawPassword string) (*domain.User, error)
	getByIDFn       func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	updateProfileFn func(ctx context.Context, caller *domain.Identity, update service.ProfileUpdate) (*domain.User, error)
	getProfileFn    func(ctx context.Context, viewer *domain.Identity, username string) (domain.Profile, error)
	followFn        func(ctx context.Context, caller *domain.Identity, username string) (domain.Profile, error)
	unfollowFn      func(ctx context.Context, caller *domain.Identity, username string) (domain.Profile, error)
}

func (s *stubUserService) Register(ctx context.Context, username, email, rawPassword string) (*domain.User, error) {
	return s.registerFn(ctx, username, email, rawPassword)
}

func (s *stubUserService) Authenticate(ctx context.Context, email, rawPassword string) (*domain.User, error) {
	return s.authenticateFn(ctx, email, rawPassword)
}

func (s *stubUserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubUserService) UpdateProfile(ctx context.Context, caller *domain.Identity, update service.ProfileUpdate) (*domain.User, error) {
	return s.updateProfileFn(ctx, caller, update)
}

func (s *stubUserService) GetProfile(ctx context.Context, viewer *domain.Identity, username string) (domain.Profile, error) {
	return s.getProfileFn(ctx, viewer, username)
}

func (s *stubUserService) Follow(ctx context.Context, caller *domain.Identity, username string) (domain.Profile, error) {
	return s.followFn(ctx, caller, username)
}

func (s *stubUserService) Unfollow(ctx context.Context, caller *domain.Identity, username string) (domain.Profile, error) {
	return s.unfollowFn(ctx, caller, username)
}

func (s *stubUserService) IsFollowing(ctx context.Context, followerID, targetID uuid.UUID) (bool, error) {
	return false, nil
}

type stubItemService struct {
	createFn     func(ctx context.Context, caller *domain.Identity, title, description, image string, tagList []string) (*service.ItemView, error)
	getFn        func(ctx context.Context, viewer *domain.Identity, slug string) (*service.ItemView, error)
	updateFn     func(ctx context.Context, caller *domain.Identity, slug string, update service.ItemUpdate) (*service.ItemView, error)
	deleteFn     func(ctx context.Context, caller *domain.Identity, slug string) error
	favoriteFn   func(ctx context.Context, caller *domain.Identity, slug string) (*service.ItemView, error)
	unfavoriteFn func(ctx context.Context, caller *domain.Identity, slug string) (*service.ItemView, error)
	listFn       func(ctx context.Context, viewer *domain.Identity, filter store.ItemFilter) ([]*service.ItemView, int, error)
	feedFn       func(ctx context.Context, caller *domain.Identity, limit, offset int) ([]*service.ItemView, int, error)
	tagsFn       func(ctx context.Context) ([]string, error)
}

func (s *stubItemService) Create(ctx context.Context, caller *domain.Identity, title, description, image string, tagList []string) (*service.ItemView, error) {
	return s.createFn(ctx, caller, title, description, image, tagList)
}

func (s *stubItemService) Get(ctx context.Context, viewer *domain.Identity, slug string) (*service.ItemView, error) {
	return s.getFn(ctx, viewer, slug)
}

func (s *stubItemService) Update(ctx context.Context, caller *domain.Identity, slug string, update service.ItemUpdate) (*service.ItemView, error) {
	return s.updateFn(ctx, caller, slug, update)
}

func (s *stubItemService) Delete(ctx context.Context, caller *domain.Identity, slug string) error {
	return s.deleteFn(ctx, caller, slug)
}

func (s *stubItemService) Favorite(ctx context.Context, caller *domain.Identity, slug string) (*service.ItemView, error) {
	return s.favoriteFn(ctx, caller, slug)
}

func (s *stubItemService) Unfavorite(ctx context.Context, caller *domain.Identity, slug string) (*service.ItemView, error) {
	return s.unfavoriteFn(ctx, caller, slug)
}

func (s *stubItemService) List(ctx context.Context, viewer *domain.Identity, filter store.ItemFilter) ([]*service.ItemView, int, error) {
	return s.listFn(ctx, viewer, filter)
}

func (s *stubItemService) Feed(ctx context.Context, caller *domain.Identity, limit, offset int) ([]*service.ItemView, int, error) {
	return s.feedFn(ctx, caller, limit, offset)
}

func (s *stubItemService) Tags(ctx context.Context) ([]string, error) {
	return s.tagsFn(ctx)
}

type stubCommentService struct {
	addFn    func(ctx context.Context, caller *domain.Identity, slug, body string) (*service.CommentView, error)
	listFn   func(ctx context.Context, viewer *domain.Identity, slug string) ([]*service.CommentView, error)
	deleteFn func(ctx context.Context, caller *domain.Identity, slug string, commentID uuid.UUID) error
}

func (s *stubCommentService) Add(ctx context.Context, caller *domain.Identity, slug, body string) (*service.CommentView, error) {
	return s.addFn(ctx, caller, slug, body)
}

func (s *stubCommentService) List(ctx context.Context, viewer *domain.Identity, slug string) ([]*service.CommentView, error) {
	return s.listFn(ctx, viewer, slug)
}

func (s *stubCommentService) Delete(ctx context.Context, caller *domain.Identity, slug string, commentID uuid.UUID) error {
	return s.deleteFn(ctx, caller, slug, commentID)
}

func (s *stubCommentService) DeleteForModeration(ctx context.Context, slug string, commentID uuid.UUID) error {
	return nil
}
