package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyUserID      = errors.New("user ID cannot be empty")
	ErrEmptyUsername    = errors.New("username cannot be empty")
	ErrInvalidUsername  = errors.New("username must contain only letters and digits")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong  = errors.New("password must be at most 72 characters long")
	ErrInvalidRole      = errors.New("role must be either user or admin")
)

// Role describes the authorization level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a registered marketplace user.
// PasswordHash and PasswordSalt are managed exclusively by the credential
// store; the favorites and follows relations are managed by the user service
// and live in their own tables.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	PasswordSalt []byte    `json:"-"`
	Bio          string    `json:"bio,omitempty"`
	Image        string    `json:"image,omitempty"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser creates a User with a fresh ID and the default role.
// The caller is responsible for deriving the credential hash and salt before
// the user is stored.
func NewUser(username, email string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		Role:      RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks the user's invariant fields. Credential material is not
// validated here; an empty hash simply means the credential store has not run
// yet.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.Username == "" {
		return ErrEmptyUsername
	}
	if !validUsername(u.Username) {
		return ErrInvalidUsername
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !validEmail(u.Email) {
		return ErrInvalidEmail
	}
	if u.Role != RoleUser && u.Role != RoleAdmin {
		return ErrInvalidRole
	}
	return nil
}

// ValidatePassword checks the raw password against the length policy.
// The upper bound keeps hashing cost bounded.
func ValidatePassword(raw string) error {
	if len(raw) < 8 {
		return ErrPasswordTooShort
	}
	if len(raw) > 72 {
		return ErrPasswordTooLong
	}
	return nil
}

// validUsername accepts ASCII letters and digits only. Usernames are
// case-sensitive; uniqueness is enforced by the store.
func validUsername(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// validEmail performs a structural check: exactly one @, a non-empty local
// part, and a domain containing an interior dot.
func validEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	if at <= 0 || at != strings.LastIndexByte(s, '@') {
		return false
	}
	dom := s[at+1:]
	dot := strings.IndexByte(dom, '.')
	return dot > 0 && dot < len(dom)-1
}
