package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/domain"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/platform/logger"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/store"
)

// PostgresCommentStore implements store.CommentStore using PostgreSQL.
type PostgresCommentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCommentStore creates a PostgreSQL implementation of CommentStore.
// It accepts a database connection or transaction managed by the caller.
// If logger is nil, the slog default is used.
func NewPostgresCommentStore(db store.DBTX, logger *slog.Logger) *PostgresCommentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCommentStore{
		db:     db,
		logger: logger.With(slog.String("component", "comment_store")),
	}
}

// Ensure PostgresCommentStore implements store.CommentStore
var _ store.CommentStore = (*PostgresCommentStore)(nil)

// WithTx implements store.CommentStore.WithTx
func (s *PostgresCommentStore) WithTx(tx *sql.Tx) store.CommentStore {
	return &PostgresCommentStore{db: tx, logger: s.logger}
}

// Create implements store.CommentStore.Create
func (s *PostgresCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := comment.Validate(); err != nil {
		log.Warn("comment validation failed during create",
			slog.String("error", err.Error()),
			slog.String("comment_id", comment.ID.String()))
		return err
	}

	query := `
		INSERT INTO comments (id, item_id, author_id, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		comment.ID,
		comment.ItemID,
		comment.AuthorID,
		comment.Body,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		mapped := mapError(err)
		if errors.Is(mapped, store.ErrInvalidEntity) {
			log.Warn("foreign key violation during comment creation",
				slog.String("comment_id", comment.ID.String()),
				slog.String("item_id", comment.ItemID.String()))
			return mapped
		}
		log.Error("failed to create comment",
			slog.String("comment_id", comment.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create comment: %w", mapped)
	}

	return nil
}

// GetByID implements store.CommentStore.GetByID
func (s *PostgresCommentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, item_id, author_id, body, created_at, updated_at
		FROM comments
		WHERE id = $1
	`
	var c domain.Comment
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.ItemID, &c.AuthorID, &c.Body, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCommentNotFound
		}
		log.Error("failed to get comment",
			slog.String("comment_id", id.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	return &c, nil
}

// ListByItem implements store.CommentStore.ListByItem
func (s *PostgresCommentStore) ListByItem(ctx context.Context, itemID uuid.UUID) ([]*domain.Comment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, item_id, author_id, body, created_at, updated_at
		FROM comments
		WHERE item_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, itemID)
	if err != nil {
		log.Error("failed to list comments",
			slog.String("item_id", itemID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var comments []*domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.ItemID, &c.AuthorID, &c.Body, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}

	return comments, nil
}

// Delete implements store.CommentStore.Delete
func (s *PostgresCommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete comment",
			slog.String("comment_id", id.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrCommentNotFound
	}

	return nil
}

// DeleteByItem implements store.CommentStore.DeleteByItem
func (s *PostgresCommentStore) DeleteByItem(ctx context.Context, itemID uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE item_id = $1`, itemID); err != nil {
		return fmt.Errorf("failed to delete item comments: %w", err)
	}
	return nil
}
