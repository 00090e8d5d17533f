package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// saltLength is the size of the per-user random salt in bytes.
	saltLength = 16

	// hashLength is the PBKDF2 output size in bytes (512 bits).
	hashLength = 64

	// minIterations is the floor for the configurable iteration count.
	minIterations = 10000
)

// CredentialStore owns password hashing and verification. Raw passwords pass
// through it and are never stored or logged.
type CredentialStore interface {
	// Set derives a fresh salt and hash for the raw password.
	Set(rawPassword string) (hash, salt []byte, err error)

	// Verify recomputes the hash with the stored salt and compares in
	// constant time. Returns ErrInvalidCredential on mismatch.
	Verify(rawPassword string, hash, salt []byte) error
}

// PBKDF2CredentialStore implements CredentialStore with PBKDF2-SHA512.
type PBKDF2CredentialStore struct {
	iterations int
}

// Ensure PBKDF2CredentialStore implements CredentialStore
var _ CredentialStore = (*PBKDF2CredentialStore)(nil)

// NewPBKDF2CredentialStore creates a credential store with the given
// iteration count. Counts below 10000 are rejected.
func NewPBKDF2CredentialStore(iterations int) (*PBKDF2CredentialStore, error) {
	if iterations < minIterations {
		return nil, fmt.Errorf("hash iterations must be at least %d, got %d", minIterations, iterations)
	}
	return &PBKDF2CredentialStore{iterations: iterations}, nil
}

// Set implements CredentialStore.Set
func (s *PBKDF2CredentialStore) Set(rawPassword string) ([]byte, []byte, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := pbkdf2.Key([]byte(rawPassword), salt, s.iterations, hashLength, sha512.New)
	return hash, salt, nil
}

// Verify implements CredentialStore.Verify
func (s *PBKDF2CredentialStore) Verify(rawPassword string, hash, salt []byte) error {
	if len(hash) == 0 || len(salt) == 0 {
		return ErrInvalidCredential
	}

	computed := pbkdf2.Key([]byte(rawPassword), salt, s.iterations, hashLength, sha512.New)
	if subtle.ConstantTimeCompare(computed, hash) != 1 {
		return ErrInvalidCredential
	}
	return nil
}
