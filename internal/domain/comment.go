package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyCommentID = errors.New("comment ID cannot be empty")
	ErrEmptyBody      = errors.New("comment body cannot be empty")
	ErrEmptyItemRef   = errors.New("comment item reference cannot be empty")
	ErrEmptyAuthorRef = errors.New("comment author reference cannot be empty")
)

// Comment is a discussion entry attached to an item. Comments are immutable
// once created; the only permitted mutation is deletion by the author.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	ItemID    uuid.UUID `json:"item_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewComment creates a Comment against an existing item.
func NewComment(authorID, itemID uuid.UUID, body string) (*Comment, error) {
	now := time.Now().UTC()
	comment := &Comment{
		ID:        uuid.New(),
		ItemID:    itemID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := comment.Validate(); err != nil {
		return nil, err
	}

	return comment, nil
}

// Validate checks the comment's invariant fields.
func (c *Comment) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCommentID
	}
	if c.ItemID == uuid.Nil {
		return ErrEmptyItemRef
	}
	if c.AuthorID == uuid.Nil {
		return ErrEmptyAuthorRef
	}
	if c.Body == "" {
		return ErrEmptyBody
	}
	return nil
}
