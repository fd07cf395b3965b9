package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token structure is malformed or the
	// signature doesn't match.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has passed its expiry.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrMissingToken indicates a token was expected but not provided.
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrInvalidCredentials indicates a failed login. The same error is used
	// for an unknown email and a wrong password so responses never reveal
	// which one failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
