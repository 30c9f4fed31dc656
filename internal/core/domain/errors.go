package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested value does not exist or has expired
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrMalformedState indicates an authorization state token could not be decoded
	ErrMalformedState = errors.New("malformed state")

	// ErrCorruptValue indicates a persisted value exists but cannot be read back
	// (undecryptable, or not the encoding it was written with)
	ErrCorruptValue = errors.New("corrupt value")
)
