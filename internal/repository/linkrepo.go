package repository

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/specboard/syncd/internal/model"
)

// LinkCodeRepository manages single-use join codes.
type LinkCodeRepository interface {
	// Insert stores a freshly generated code. Returns ErrAlreadyExists when
	// the code collides with an existing row.
	Insert(ctx context.Context, lc *model.LinkCode) error

	// Exists reports whether a code row exists, used or not.
	Exists(ctx context.Context, code string) (bool, error)

	// ListActive returns unexpired, unused codes for a project, newest first.
	ListActive(ctx context.Context, projectID uuid.UUID) ([]model.LinkCode, error)

	// Redeem atomically validates the code, adds the user as an EDIT member,
	// and marks the code used. Already-member redemptions succeed without
	// mutating anything. The row lock on the code guarantees two concurrent
	// redemptions cannot both succeed.
	Redeem(ctx context.Context, code string, userID uuid.UUID) (model.RedeemResult, error)

	// DeleteExpired removes codes whose expiry is before cutoff and returns
	// the number of rows deleted.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
