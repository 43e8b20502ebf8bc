// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across gateway/session/service layers.
var (
	// ErrUnauthorized indicates a 401-class response from the gateway.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials indicates a rejected email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionExpired indicates the stored session is no longer accepted by the gateway.
	ErrSessionExpired = errors.New("session expired")

	// ErrNotInitialized indicates an operation that requires a resolved session.
	ErrNotInitialized = errors.New("session not initialized")

	// ErrValidation indicates input rejected before any network call.
	ErrValidation = errors.New("validation failed")

	// ErrNetwork indicates a transport failure with no server response.
	ErrNetwork = errors.New("network unavailable")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")
)
