// Package limiter throttles repeated login failures per account and client.
package limiter

import (
	"context"
	"crypto/sha256"
	"time"
)

// Limiter gates login attempts with a sliding failure window and lockout.
type Limiter interface {
	// Allow reports whether a login attempt may proceed and, when blocked,
	// how long until the next attempt is accepted.
	Allow(ctx context.Context, username string, clientHash []byte) (bool, time.Duration, error)
	// Success clears accumulated failures after a good login.
	Success(ctx context.Context, username string, clientHash []byte) error
	// Failure records a bad attempt. Returns true with the lockout duration
	// when this attempt tripped the threshold.
	Failure(ctx context.Context, username string, clientHash []byte) (bool, time.Duration, error)
}

// HashClient derives a stable opaque key from a client address so raw IPs
// are never stored.
func HashClient(addr string) []byte {
	h := sha256.Sum256([]byte(addr))
	return h[:]
}
