package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/domain"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/platform/logger"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/store"
)

// PostgresUserStore implements store.UserStore using PostgreSQL.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a PostgreSQL implementation of UserStore.
// It accepts a database connection or transaction managed by the caller.
// If logger is nil, the slog default is used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx, logger: s.logger}
}

const userColumns = `id, username, email, password_hash, password_salt, bio, image, role, created_at, updated_at`

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}

	query := `
		INSERT INTO users (id, username, email, password_hash, password_salt, bio, image, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.PasswordSalt,
		user.Bio,
		user.Image,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		mapped := mapError(err)
		if store.IsDuplicateError(mapped) {
			log.Debug("duplicate user on create",
				slog.String("user_id", user.ID.String()),
				slog.String("error", err.Error()))
			return mapped
		}
		log.Error("failed to create user",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create user: %w", mapped)
	}

	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.getUser(ctx, query, id)
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.getUser(ctx, query, email)
}

// GetByUsername implements store.UserStore.GetByUsername
func (s *PostgresUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return s.getUser(ctx, query, username)
}

func (s *PostgresUserStore) getUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var u domain.User
	var bio, image sql.NullString
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.PasswordSalt,
		&bio,
		&image,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.Bio = bio.String
	u.Image = image.String

	return &u, nil
}

// FindByIDs implements store.UserStore.FindByIDs
func (s *PostgresUserStore) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error) {
	result := make(map[uuid.UUID]*domain.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`
	rows, err := s.db.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query users by IDs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var u domain.User
		var bio, image sql.NullString
		if err := rows.Scan(
			&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.PasswordSalt,
			&bio, &image, &u.Role, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.Bio = bio.String
		u.Image = image.String
		user := u
		result[u.ID] = &user
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return result, nil
}

// Update implements store.UserStore.Update
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during update",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}

	user.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET username = $1, email = $2, password_hash = $3, password_salt = $4,
		    bio = $5, image = $6, role = $7, updated_at = $8
		WHERE id = $9
	`
	result, err := s.db.ExecContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.PasswordSalt,
		user.Bio,
		user.Image,
		user.Role,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		mapped := mapError(err)
		if store.IsDuplicateError(mapped) {
			return mapped
		}
		log.Error("failed to update user",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to update user: %w", mapped)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrUserNotFound
	}

	return nil
}

// Follow implements store.UserStore.Follow
func (s *PostgresUserStore) Follow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO user_follows (follower_id, followee_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query, followerID, followeeID, time.Now().UTC())
	if err != nil {
		mapped := mapError(err)
		if errors.Is(mapped, store.ErrInvalidEntity) {
			// One side of the edge is gone.
			return store.ErrUserNotFound
		}
		log.Error("failed to add follow edge",
			slog.String("follower_id", followerID.String()),
			slog.String("followee_id", followeeID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to add follow edge: %w", mapped)
	}

	return nil
}

// Unfollow implements store.UserStore.Unfollow
func (s *PostgresUserStore) Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM user_follows WHERE follower_id = $1 AND followee_id = $2`
	if _, err := s.db.ExecContext(ctx, query, followerID, followeeID); err != nil {
		log.Error("failed to remove follow edge",
			slog.String("follower_id", followerID.String()),
			slog.String("followee_id", followeeID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to remove follow edge: %w", err)
	}

	return nil
}

// IsFollowing implements store.UserStore.IsFollowing
func (s *PostgresUserStore) IsFollowing(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM user_follows WHERE follower_id = $1 AND followee_id = $2)`

	var following bool
	if err := s.db.QueryRowContext(ctx, query, followerID, followeeID).Scan(&following); err != nil {
		return false, fmt.Errorf("failed to check follow edge: %w", err)
	}
	return following, nil
}

// FollowedAmong implements store.UserStore.FollowedAmong
func (s *PostgresUserStore) FollowedAmong(ctx context.Context, followerID uuid.UUID, candidates []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool, len(candidates))
	if len(candidates) == 0 {
		return result, nil
	}
	for _, id := range candidates {
		result[id] = false
	}

	query := `SELECT followee_id FROM user_follows WHERE follower_id = $1 AND followee_id = ANY($2)`
	rows, err := s.db.QueryContext(ctx, query, followerID, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to query followed users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan followee ID: %w", err)
		}
		result[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate followed users: %w", err)
	}

	return result, nil
}
