package limiter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config bundles the tuning knobs for the Postgres limiter.
type Config struct {
	// Window is how far apart two failures may be and still count together.
	Window time.Duration
	// MaxFails is the failure count that triggers a lockout.
	MaxFails int
	// BlockFor is the lockout duration once MaxFails is reached.
	BlockFor time.Duration
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PG keeps per-(username, client) failure state in the auth_limiter table so
// lockouts survive restarts and apply across replicas.
type PG struct {
	q   querier
	cfg Config
}

// NewPG constructs the limiter over a live pool.
func NewPG(pool *pgxpool.Pool, cfg Config) *PG { return &PG{q: pool, cfg: cfg} }

// NewPGWithQuerier constructs the limiter over any querier, used in tests.
func NewPGWithQuerier(q querier, cfg Config) *PG { return &PG{q: q, cfg: cfg} }

// Allow checks whether the (username, client) pair is under an active block.
func (l *PG) Allow(ctx context.Context, username string, clientHash []byte) (bool, time.Duration, error) {
	const q = `SELECT blocked_until FROM auth_limiter WHERE username=$1 AND ip_hash=$2`
	var blockedUntil time.Time
	err := l.q.QueryRow(ctx, q, username, clientHash).Scan(&blockedUntil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return true, 0, nil
		}
		return false, 0, err
	}
	if rem := time.Until(blockedUntil); rem > 0 {
		return false, rem, nil
	}
	return true, 0, nil
}

// Success resets the failure counter.
func (l *PG) Success(ctx context.Context, username string, clientHash []byte) error {
	const q = `
INSERT INTO auth_limiter (username, ip_hash, fail_count, blocked_until, updated_at)
VALUES ($1,$2,0,'epoch',now())
ON CONFLICT (username, ip_hash)
DO UPDATE SET fail_count=0, blocked_until='epoch', updated_at=now()`
	_, err := l.q.Exec(ctx, q, username, clientHash)
	return err
}

// Failure bumps the counter, restarting it when the previous failure fell
// outside the window, and sets blocked_until in the same statement once the
// threshold is hit.
func (l *PG) Failure(ctx context.Context, username string, clientHash []byte) (bool, time.Duration, error) {
	const q = `
INSERT INTO auth_limiter (username, ip_hash, fail_count, blocked_until, updated_at)
VALUES ($1,$2,1,'epoch',now())
ON CONFLICT (username, ip_hash) DO UPDATE
SET
  fail_count = CASE WHEN EXCLUDED.updated_at - auth_limiter.updated_at > $3::interval
               THEN 1 ELSE auth_limiter.fail_count + 1 END,
  blocked_until = CASE WHEN (CASE WHEN EXCLUDED.updated_at - auth_limiter.updated_at > $3::interval
               THEN 1 ELSE auth_limiter.fail_count + 1 END) >= $4
               THEN now() + $5::interval ELSE auth_limiter.blocked_until END,
  updated_at = now()
RETURNING fail_count`
	var fails int
	if err := l.q.QueryRow(ctx, q, username, clientHash, l.cfg.Window, l.cfg.MaxFails, l.cfg.BlockFor).Scan(&fails); err != nil {
		return false, 0, err
	}
	if fails >= l.cfg.MaxFails {
		return true, l.cfg.BlockFor, nil
	}
	return false, 0, nil
}

var _ Limiter = (*PG)(nil)
