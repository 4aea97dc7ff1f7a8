// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict indicates optimistic concurrency failure (base version mismatch).
	ErrVersionConflict = errors.New("version conflict")

	// ErrUnauthorized indicates failed authentication.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller's role is below the required minimum.
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrExpired indicates a link code past its expiry.
	ErrExpired = errors.New("expired")

	// ErrAlreadyUsed indicates a single-use link code that was already redeemed.
	ErrAlreadyUsed = errors.New("already used")

	// ErrAlreadyResolved indicates a conflict that is no longer pending.
	ErrAlreadyResolved = errors.New("already resolved")

	// ErrValidation indicates malformed or out-of-range input.
	ErrValidation = errors.New("validation")
)
