package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/domain"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/platform/logger"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/store"
)

// PostgresItemStore implements store.ItemStore using PostgreSQL.
type PostgresItemStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresItemStore creates a PostgreSQL implementation of ItemStore.
// It accepts a database connection or transaction managed by the caller.
// If logger is nil, the slog default is used.
func NewPostgresItemStore(db store.DBTX, logger *slog.Logger) *PostgresItemStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresItemStore{
		db:     db,
		logger: logger.With(slog.String("component", "item_store")),
	}
}

// Ensure PostgresItemStore implements store.ItemStore
var _ store.ItemStore = (*PostgresItemStore)(nil)

// WithTx implements store.ItemStore.WithTx
func (s *PostgresItemStore) WithTx(tx *sql.Tx) store.ItemStore {
	return &PostgresItemStore{db: tx, logger: s.logger}
}

// Create implements store.ItemStore.Create
func (s *PostgresItemStore) Create(ctx context.Context, item *domain.Item) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		log.Warn("item validation failed during create",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return err
	}

	query := `
		INSERT INTO items (id, slug, title, description, image, seller_id, favorites_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		item.ID,
		item.Slug,
		item.Title,
		item.Description,
		item.Image,
		item.SellerID,
		item.FavoritesCount,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		mapped := mapError(err)
		if errors.Is(mapped, store.ErrSlugExists) {
			log.Debug("slug collision on item create",
				slog.String("slug", item.Slug))
			return mapped
		}
		log.Error("failed to create item",
			slog.String("item_id", item.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create item: %w", mapped)
	}

	if err := s.replaceTags(ctx, item.ID, item.TagList); err != nil {
		return err
	}

	return nil
}

// GetBySlug implements store.ItemStore.GetBySlug
func (s *PostgresItemStore) GetBySlug(ctx context.Context, slug string) (*domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, slug, title, description, image, seller_id, favorites_count, created_at, updated_at
		FROM items
		WHERE slug = $1
	`
	var it domain.Item
	var description, image sql.NullString
	err := s.db.QueryRowContext(ctx, query, slug).Scan(
		&it.ID,
		&it.Slug,
		&it.Title,
		&description,
		&image,
		&it.SellerID,
		&it.FavoritesCount,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrItemNotFound
		}
		log.Error("failed to get item by slug",
			slog.String("slug", slug),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	it.Description = description.String
	it.Image = image.String

	tags, err := s.tagsFor(ctx, []uuid.UUID{it.ID})
	if err != nil {
		return nil, err
	}
	it.TagList = tags[it.ID]

	return &it, nil
}

// Update implements store.ItemStore.Update
func (s *PostgresItemStore) Update(ctx context.Context, item *domain.Item) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		log.Warn("item validation failed during update",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return err
	}

	item.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE items
		SET slug = $1, title = $2, description = $3, image = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := s.db.ExecContext(ctx, query,
		item.Slug,
		item.Title,
		item.Description,
		item.Image,
		item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		mapped := mapError(err)
		if errors.Is(mapped, store.ErrSlugExists) {
			return mapped
		}
		log.Error("failed to update item",
			slog.String("item_id", item.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to update item: %w", mapped)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrItemNotFound
	}

	return s.replaceTags(ctx, item.ID, item.TagList)
}

// Delete implements store.ItemStore.Delete
func (s *PostgresItemStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete item",
			slog.String("item_id", id.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrItemNotFound
	}

	return nil
}

// List implements store.ItemStore.List
func (s *PostgresItemStore) List(ctx context.Context, filter store.ItemFilter) ([]*domain.Item, int, error) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Tag != "" {
		conds = append(conds, `EXISTS (SELECT 1 FROM item_tags t WHERE t.item_id = i.id AND t.tag = `+arg(filter.Tag)+`)`)
	}
	if filter.Seller != "" {
		conds = append(conds, `i.seller_id = (SELECT id FROM users WHERE username = `+arg(filter.Seller)+`)`)
	}
	if filter.FavoritedBy != "" {
		conds = append(conds, `EXISTS (
			SELECT 1 FROM user_favorites f
			JOIN users fu ON fu.id = f.user_id
			WHERE f.item_id = i.id AND fu.username = `+arg(filter.FavoritedBy)+`)`)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	return s.listItems(ctx, where, args, filter.Limit, filter.Offset)
}

// Feed implements store.ItemStore.Feed
func (s *PostgresItemStore) Feed(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Item, int, error) {
	where := ` WHERE i.seller_id IN (SELECT followee_id FROM user_follows WHERE follower_id = $1)`
	return s.listItems(ctx, where, []any{userID}, limit, offset)
}

// listItems runs the shared count + page queries for List and Feed.
func (s *PostgresItemStore) listItems(ctx context.Context, where string, args []any, limit, offset int) ([]*domain.Item, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var total int
	countQuery := `SELECT COUNT(*) FROM items i` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count items", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to count items: %w", err)
	}

	pageArgs := append(append([]any{}, args...), limit, offset)
	query := `
		SELECT i.id, i.slug, i.title, i.description, i.image, i.seller_id, i.favorites_count, i.created_at, i.updated_at
		FROM items i` + where + `
		ORDER BY i.created_at DESC
		LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)

	rows, err := s.db.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		log.Error("failed to list items", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to list items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []*domain.Item
	var ids []uuid.UUID
	for rows.Next() {
		var it domain.Item
		var description, image sql.NullString
		if err := rows.Scan(
			&it.ID, &it.Slug, &it.Title, &description, &image,
			&it.SellerID, &it.FavoritesCount, &it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan item: %w", err)
		}
		it.Description = description.String
		it.Image = image.String
		items = append(items, &it)
		ids = append(ids, it.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate items: %w", err)
	}

	tags, err := s.tagsFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, it := range items {
		it.TagList = tags[it.ID]
	}

	return items, total, nil
}

// AddFavorite implements store.ItemStore.AddFavorite
func (s *PostgresItemStore) AddFavorite(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	query := `
		INSERT INTO user_favorites (user_id, item_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, item_id) DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query, userID, itemID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to add favorite: %w", mapError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// RemoveFavorite implements store.ItemStore.RemoveFavorite
func (s *PostgresItemStore) RemoveFavorite(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	query := `DELETE FROM user_favorites WHERE user_id = $1 AND item_id = $2`
	result, err := s.db.ExecContext(ctx, query, userID, itemID)
	if err != nil {
		return false, fmt.Errorf("failed to remove favorite: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// AdjustFavoritesCount implements store.ItemStore.AdjustFavoritesCount
func (s *PostgresItemStore) AdjustFavoritesCount(ctx context.Context, itemID uuid.UUID, delta int) error {
	query := `UPDATE items SET favorites_count = favorites_count + $1 WHERE id = $2`
	result, err := s.db.ExecContext(ctx, query, delta, itemID)
	if err != nil {
		return fmt.Errorf("failed to adjust favorites count: %w", mapError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrItemNotFound
	}
	return nil
}

// FavoritedAmong implements store.ItemStore.FavoritedAmong
func (s *PostgresItemStore) FavoritedAmong(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool, len(itemIDs))
	if len(itemIDs) == 0 {
		return result, nil
	}
	for _, id := range itemIDs {
		result[id] = false
	}

	query := `SELECT item_id FROM user_favorites WHERE user_id = $1 AND item_id = ANY($2)`
	rows, err := s.db.QueryContext(ctx, query, userID, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan item ID: %w", err)
		}
		result[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate favorites: %w", err)
	}

	return result, nil
}

// Tags implements store.ItemStore.Tags
func (s *PostgresItemStore) Tags(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT tag FROM item_tags ORDER BY tag`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}

	return tags, nil
}

// replaceTags rewrites the item's tag list preserving the given order.
func (s *PostgresItemStore) replaceTags(ctx context.Context, itemID uuid.UUID, tags []string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM item_tags WHERE item_id = $1`, itemID); err != nil {
		return fmt.Errorf("failed to clear item tags: %w", err)
	}

	for pos, tag := range tags {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO item_tags (item_id, position, tag) VALUES ($1, $2, $3)`,
			itemID, pos, tag)
		if err != nil {
			return fmt.Errorf("failed to insert item tag: %w", mapError(err))
		}
	}

	return nil
}

// tagsFor loads ordered tag lists for the given items in a single query.
func (s *PostgresItemStore) tagsFor(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	result := make(map[uuid.UUID][]string, len(itemIDs))
	if len(itemIDs) == 0 {
		return result, nil
	}

	query := `SELECT item_id, tag FROM item_tags WHERE item_id = ANY($1) ORDER BY item_id, position`
	rows, err := s.db.QueryContext(ctx, query, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load item tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id uuid.UUID
		var tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return nil, fmt.Errorf("failed to scan item tag: %w", err)
		}
		result[id] = append(result[id], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate item tags: %w", err)
	}

	return result, nil
}
