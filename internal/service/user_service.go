package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/domain"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/events"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/service/auth"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/store"
)

// ProfileUpdate is a partial update of a user's own profile. Nil fields are
// left unchanged.
type ProfileUpdate struct {
	Username *string
	Email    *string
	Bio      *string
	Image    *string
	Password *string
}

// UserService implements the identity graph: registration, authentication,
// profile management, and the follows relation.
type UserService interface {
	// Register creates a user from credentials. Returns ErrValidation for
	// format violations and ErrConflict when username or email is taken.
	// Emits a user_created event on success.
	Register(ctx context.Context, username, email, rawPassword string) (*domain.User, error)

	// Authenticate verifies email and password. Returns ErrUnauthorized on
	// unknown email or password mismatch, without revealing which.
	Authenticate(ctx context.Context, email, rawPassword string) (*domain.User, error)

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// UpdateProfile applies a partial update to the caller's own profile.
	// Uniqueness is re-validated when username or email changes.
	UpdateProfile(ctx context.Context, caller *domain.Identity, update ProfileUpdate) (*domain.User, error)

	// GetProfile projects the named user for the viewer.
	GetProfile(ctx context.Context, viewer *domain.Identity, username string) (domain.Profile, error)

	// Follow adds the named user to the caller's following set. Idempotent;
	// self-follow is rejected with ErrValidation.
	Follow(ctx context.Context, caller *domain.Identity, username string) (domain.Profile, error)

	// Unfollow removes the named user from the caller's following set.
	// Idempotent.
	Unfollow(ctx context.Context, caller *domain.Identity, username string) (domain.Profile, error)

	// IsFollowing reports whether follower follows target.
	IsFollowing(ctx context.Context, followerID, targetID uuid.UUID) (bool, error)
}

type userService struct {
	users       store.UserStore
	credentials auth.CredentialStore
	emitter     events.Emitter
	logger      *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(
	users store.UserStore,
	credentials auth.CredentialStore,
	emitter events.Emitter,
	logger *slog.Logger,
) (UserService, error) {
	if users == nil {
		return nil, &ServiceError{Operation: "create_user_service", Message: "users store cannot be nil"}
	}
	if credentials == nil {
		return nil, &ServiceError{Operation: "create_user_service", Message: "credential store cannot be nil"}
	}
	if emitter == nil {
		return nil, &ServiceError{Operation: "create_user_service", Message: "event emitter cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		users:       users,
		credentials: credentials,
		emitter:     emitter,
		logger:      logger.With(slog.String("component", "user_service")),
	}, nil
}

// Register implements UserService.Register
func (s *userService) Register(ctx context.Context, username, email, rawPassword string) (*domain.User, error) {
	if err := domain.ValidatePassword(rawPassword); err != nil {
		return nil, validationError(err)
	}

	user, err := domain.NewUser(username, email)
	if err != nil {
		return nil, validationError(err)
	}

	hash, salt, err := s.credentials.Set(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	user.PasswordHash = hash
	user.PasswordSalt = salt

	if err := s.users.Create(ctx, user); err != nil {
		return nil, mapStoreError(err)
	}

	// Fire and forget: a failed notification never rolls back registration.
	if event, err := events.NewUserCreatedEvent(user.Username); err == nil {
		if err := s.emitter.EmitEvent(ctx, event); err != nil {
			s.logger.Warn("failed to emit user_created event",
				"error", err,
				"username", user.Username)
		}
	}

	return user, nil
}

// Authenticate implements UserService.Authenticate
func (s *userService) Authenticate(ctx context.Context, email, rawPassword string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			// Same opaque error as a password mismatch.
			return nil, ErrUnauthorized
		}
		return nil, mapStoreError(err)
	}

	if err := s.credentials.Verify(rawPassword, user.PasswordHash, user.PasswordSalt); err != nil {
		return nil, ErrUnauthorized
	}

	return user, nil
}

// GetByID implements UserService.GetByID
func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := retryRead(ctx, func() (*domain.User, error) {
		return s.users.GetByID(ctx, id)
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return user, nil
}

// UpdateProfile implements UserService.UpdateProfile
func (s *userService) UpdateProfile(ctx context.Context, caller *domain.Identity, update ProfileUpdate) (*domain.User, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	// Profile updates are strictly self-service; no admin override.
	if !domain.CanMutate(caller, user.ID, false) {
		return nil, ErrForbidden
	}

	if update.Username != nil {
		user.Username = *update.Username
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if update.Image != nil {
		user.Image = *update.Image
	}
	if update.Password != nil {
		if err := domain.ValidatePassword(*update.Password); err != nil {
			return nil, validationError(err)
		}
		hash, salt, err := s.credentials.Set(*update.Password)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		user.PasswordHash = hash
		user.PasswordSalt = salt
	}

	if err := user.Validate(); err != nil {
		return nil, validationError(err)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapStoreError(err)
	}

	return user, nil
}

// GetProfile implements UserService.GetProfile
func (s *userService) GetProfile(ctx context.Context, viewer *domain.Identity, username string) (domain.Profile, error) {
	target, err := retryRead(ctx, func() (*domain.User, error) {
		return s.users.GetByUsername(ctx, username)
	})
	if err != nil {
		return domain.Profile{}, mapStoreError(err)
	}

	following := false
	if viewer != nil {
		following, err = s.users.IsFollowing(ctx, viewer.UserID, target.ID)
		if err != nil {
			return domain.Profile{}, mapStoreError(err)
		}
	}

	return domain.NewProfile(target, following), nil
}

// Follow implements UserService.Follow
func (s *userService) Follow(ctx context.Context, caller *domain.Identity, username string) (domain.Profile, error) {
	target, err := s.followTarget(ctx, caller, username)
	if err != nil {
		return domain.Profile{}, err
	}

	if err := s.users.Follow(ctx, caller.UserID, target.ID); err != nil {
		return domain.Profile{}, mapStoreError(err)
	}

	return domain.NewProfile(target, true), nil
}

// Unfollow implements UserService.Unfollow
func (s *userService) Unfollow(ctx context.Context, caller *domain.Identity, username string) (domain.Profile, error) {
	target, err := s.followTarget(ctx, caller, username)
	if err != nil {
		return domain.Profile{}, err
	}

	if err := s.users.Unfollow(ctx, caller.UserID, target.ID); err != nil {
		return domain.Profile{}, mapStoreError(err)
	}

	return domain.NewProfile(target, false), nil
}

// followTarget resolves and validates the other side of a follow mutation.
func (s *userService) followTarget(ctx context.Context, caller *domain.Identity, username string) (*domain.User, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}

	target, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, mapStoreError(err)
	}

	if target.ID == caller.UserID {
		return nil, validationError(errors.New("cannot follow yourself"))
	}

	return target, nil
}

// IsFollowing implements UserService.IsFollowing
func (s *userService) IsFollowing(ctx context.Context, followerID, targetID uuid.UUID) (bool, error) {
	following, err := retryRead(ctx, func() (bool, error) {
		return s.users.IsFollowing(ctx, followerID, targetID)
	})
	if err != nil {
		return false, mapStoreError(err)
	}
	return following, nil
}
