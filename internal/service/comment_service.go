package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/domain"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/store"
)

// CommentView is a comment together with its author's profile, projected
// for a given viewer.
type CommentView struct {
	Comment *domain.Comment
	Author  domain.Profile
}

// CommentService implements the discussion graph: comments attached to items.
type CommentService interface {
	// Add attaches a comment authored by the caller to the item with the
	// given slug.
	Add(ctx context.Context, caller *domain.Identity, slug, body string) (*CommentView, error)

	// List returns all comments on an item, oldest first.
	List(ctx context.Context, viewer *domain.Identity, slug string) ([]*CommentView, error)

	// Delete removes a comment. Only the author may delete it.
	Delete(ctx context.Context, caller *domain.Identity, slug string, commentID uuid.UUID) error

	// DeleteForModeration removes a comment without an ownership check. It
	// exists for operator tooling and must never be reachable from the
	// public surface.
	DeleteForModeration(ctx context.Context, slug string, commentID uuid.UUID) error
}

type commentService struct {
	comments store.CommentStore
	items    store.ItemStore
	users    store.UserStore
	logger   *slog.Logger
}

// NewCommentService creates a CommentService.
func NewCommentService(
	comments store.CommentStore,
	items store.ItemStore,
	users store.UserStore,
	logger *slog.Logger,
) (CommentService, error) {
	if comments == nil || items == nil || users == nil {
		return nil, &ServiceError{Operation: "create_comment_service", Message: "stores cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &commentService{
		comments: comments,
		items:    items,
		users:    users,
		logger:   logger.With(slog.String("component", "comment_service")),
	}, nil
}

// Add implements CommentService.Add
func (s *commentService) Add(ctx context.Context, caller *domain.Identity, slug, body string) (*CommentView, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}

	item, err := s.items.GetBySlug(ctx, slug)
	if err != nil {
		return nil, mapStoreError(err)
	}

	comment, err := domain.NewComment(caller.UserID, item.ID, body)
	if err != nil {
		return nil, validationError(err)
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, mapStoreError(err)
	}

	author, err := s.users.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	// The author never follows themselves.
	return &CommentView{Comment: comment, Author: domain.NewProfile(author, false)}, nil
}

// List implements CommentService.List
func (s *commentService) List(ctx context.Context, viewer *domain.Identity, slug string) ([]*CommentView, error) {
	item, err := retryRead(ctx, func() (*domain.Item, error) {
		return s.items.GetBySlug(ctx, slug)
	})
	if err != nil {
		return nil, mapStoreError(err)
	}

	comments, err := s.comments.ListByItem(ctx, item.ID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if len(comments) == 0 {
		return []*CommentView{}, nil
	}

	authorIDs := make([]uuid.UUID, 0, len(comments))
	for _, c := range comments {
		authorIDs = append(authorIDs, c.AuthorID)
	}

	authors, err := s.users.FindByIDs(ctx, authorIDs)
	if err != nil {
		return nil, mapStoreError(err)
	}

	followed := map[uuid.UUID]bool{}
	if viewer != nil {
		if followed, err = s.users.FollowedAmong(ctx, viewer.UserID, authorIDs); err != nil {
			return nil, mapStoreError(err)
		}
	}

	views := make([]*CommentView, 0, len(comments))
	for _, c := range comments {
		view := &CommentView{Comment: c}
		if author, ok := authors[c.AuthorID]; ok {
			view.Author = domain.NewProfile(author, followed[c.AuthorID])
		}
		views = append(views, view)
	}

	return views, nil
}

// Delete implements CommentService.Delete
func (s *commentService) Delete(ctx context.Context, caller *domain.Identity, slug string, commentID uuid.UUID) error {
	if caller == nil {
		return ErrUnauthorized
	}

	item, err := s.items.GetBySlug(ctx, slug)
	if err != nil {
		return mapStoreError(err)
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return mapStoreError(err)
	}
	if comment.ItemID != item.ID {
		return ErrNotFound
	}

	if !domain.CanMutate(caller, comment.AuthorID, false) {
		return ErrForbidden
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return mapStoreError(err)
	}
	return nil
}

// DeleteForModeration implements CommentService.DeleteForModeration
func (s *commentService) DeleteForModeration(ctx context.Context, slug string, commentID uuid.UUID) error {
	item, err := s.items.GetBySlug(ctx, slug)
	if err != nil {
		return mapStoreError(err)
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return mapStoreError(err)
	}
	if comment.ItemID != item.ID {
		return ErrNotFound
	}

	s.logger.Info("comment removed by moderation",
		"comment_id", commentID,
		"item_slug", slug)

	return mapStoreError(s.comments.Delete(ctx, commentID))
}
