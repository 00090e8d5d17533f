package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token is malformed or its signature does
	// not verify.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token is past its validity window.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrMissingToken indicates a token was expected but not provided.
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrInvalidCredential indicates a password did not match the stored
	// credential. Callers surface this as an authentication failure without
	// detail.
	ErrInvalidCredential = errors.New("invalid credential")
)
