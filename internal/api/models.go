package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/domain"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/service"
)

// Wire format for the marketplace API. Request and response bodies use the
// single-key envelope convention: {"user": ...}, {"item": ...}, and so on.

// RegisterRequest defines the payload for user registration.
type RegisterRequest struct {
	User struct {
		Username string `json:"username" validate:"required,min=1,max=64"`
		Email    string `json:"email"    validate:"required,email"`
		Password string `json:"password" validate:"required,min=8,max=72"`
	} `json:"user" validate:"required"`
}

// LoginRequest defines the payload for user login.
type LoginRequest struct {
	User struct {
		Email    string `json:"email"    validate:"required,email"`
		Password string `json:"password" validate:"required,min=1"`
	} `json:"user" validate:"required"`
}

// UpdateUserRequest defines the payload for profile updates. Absent fields
// are left unchanged.
type UpdateUserRequest struct {
	User struct {
		Username *string `json:"username,omitempty" validate:"omitempty,min=1,max=64"`
		Email    *string `json:"email,omitempty" validate:"omitempty,email"`
		Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
		Bio      *string `json:"bio,omitempty"`
		Image    *string `json:"image,omitempty"`
	} `json:"user" validate:"required"`
}

// UserPayload is the wire representation of the authenticated user.
type UserPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Bio      string `json:"bio"`
	Image    string `json:"image"`
	Token    string `json:"token,omitempty"`
}

// UserResponse wraps a UserPayload in its envelope.
type UserResponse struct {
	User UserPayload `json:"user"`
}

// NewUserResponse builds the canonical user envelope.
func NewUserResponse(u *domain.User, token string) UserResponse {
	return UserResponse{User: UserPayload{
		Username: u.Username,
		Email:    u.Email,
		Bio:      u.Bio,
		Image:    u.Image,
		Token:    token,
	}}
}

// ProfileResponse wraps a profile in its envelope.
type ProfileResponse struct {
	Profile ProfilePayload `json:"profile"`
}

// ProfilePayload is the wire representation of a public profile.
type ProfilePayload struct {
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	Image     string `json:"image"`
	Following bool   `json:"following"`
}

// NewProfileResponse builds the profile envelope.
func NewProfileResponse(p domain.Profile) ProfileResponse {
	return ProfileResponse{Profile: newProfilePayload(p)}
}

func newProfilePayload(p domain.Profile) ProfilePayload {
	return ProfilePayload{
		Username:  p.Username,
		Bio:       p.Bio,
		Image:     p.Image,
		Following: p.Following,
	}
}

// CreateItemRequest defines the payload for item creation.
type CreateItemRequest struct {
	Item struct {
		Title       string   `json:"title" validate:"required,min=1,max=255"`
		Description string   `json:"description"`
		Image       string   `json:"image"`
		TagList     []string `json:"tagList"`
	} `json:"item" validate:"required"`
}

// UpdateItemRequest defines the payload for item updates. Absent fields are
// left unchanged.
type UpdateItemRequest struct {
	Item struct {
		Title       *string   `json:"title,omitempty"`
		Description *string   `json:"description,omitempty"`
		Image       *string   `json:"image,omitempty"`
		TagList     *[]string `json:"tagList,omitempty"`
	} `json:"item" validate:"required"`
}

// ItemPayload is the wire representation of an item for a viewer.
type ItemPayload struct {
	Slug           string         `json:"slug"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Image          string         `json:"image"`
	TagList        []string       `json:"tagList"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	Favorited      bool           `json:"favorited"`
	FavoritesCount int            `json:"favoritesCount"`
	Seller         ProfilePayload `json:"seller"`
}

// ItemResponse wraps a single item in its envelope.
type ItemResponse struct {
	Item ItemPayload `json:"item"`
}

// ItemsResponse wraps an item page together with the total match count.
type ItemsResponse struct {
	Items      []ItemPayload `json:"items"`
	ItemsCount int           `json:"itemsCount"`
}

// NewItemPayload builds the wire form of an item view.
func NewItemPayload(view *service.ItemView) ItemPayload {
	tagList := view.Item.TagList
	if tagList == nil {
		tagList = []string{}
	}
	return ItemPayload{
		Slug:           view.Item.Slug,
		Title:          view.Item.Title,
		Description:    view.Item.Description,
		Image:          view.Item.Image,
		TagList:        tagList,
		CreatedAt:      view.Item.CreatedAt,
		UpdatedAt:      view.Item.UpdatedAt,
		Favorited:      view.Favorited,
		FavoritesCount: view.Item.FavoritesCount,
		Seller:         newProfilePayload(view.Seller),
	}
}

// NewItemsResponse builds the item page envelope.
func NewItemsResponse(views []*service.ItemView, total int) ItemsResponse {
	items := make([]ItemPayload, 0, len(views))
	for _, v := range views {
		items = append(items, NewItemPayload(v))
	}
	return ItemsResponse{Items: items, ItemsCount: total}
}

// AddCommentRequest defines the payload for adding a comment.
type AddCommentRequest struct {
	Comment struct {
		Body string `json:"body" validate:"required,min=1"`
	} `json:"comment" validate:"required"`
}

// CommentPayload is the wire representation of a comment.
type CommentPayload struct {
	ID        uuid.UUID      `json:"id"`
	Body      string         `json:"body"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Author    ProfilePayload `json:"author"`
}

// CommentResponse wraps a single comment in its envelope.
type CommentResponse struct {
	Comment CommentPayload `json:"comment"`
}

// CommentsResponse wraps a comment list in its envelope.
type CommentsResponse struct {
	Comments []CommentPayload `json:"comments"`
}

// NewCommentPayload builds the wire form of a comment view.
func NewCommentPayload(view *service.CommentView) CommentPayload {
	return CommentPayload{
		ID:        view.Comment.ID,
		Body:      view.Comment.Body,
		CreatedAt: view.Comment.CreatedAt,
		UpdatedAt: view.Comment.UpdatedAt,
		Author:    newProfilePayload(view.Author),
	}
}

// NewCommentsResponse builds the comment list envelope.
func NewCommentsResponse(views []*service.CommentView) CommentsResponse {
	comments := make([]CommentPayload, 0, len(views))
	for _, v := range views {
		comments = append(comments, NewCommentPayload(v))
	}
	return CommentsResponse{Comments: comments}
}

// TagsResponse wraps the distinct tag list.
type TagsResponse struct {
	Tags []string `json:"tags"`
}
