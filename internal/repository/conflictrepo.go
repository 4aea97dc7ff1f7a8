package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/specboard/syncd/internal/model"
)

// ConflictRepository provides access to pending and resolved sync conflicts.
type ConflictRepository interface {
	// Get returns a conflict by id.
	Get(ctx context.Context, conflictID uuid.UUID) (*model.SyncConflict, error)

	// ListPending returns unresolved conflicts for a project, optionally
	// filtered to feature ids, newest first.
	ListPending(ctx context.Context, projectID uuid.UUID, featureIDs []string) ([]model.SyncConflict, error)

	// CountPending returns the number of unresolved conflicts.
	CountPending(ctx context.Context, projectID uuid.UUID, featureIDs []string) (int, error)

	// Resolve applies the resolution content as a clean write based on the
	// current stored version and marks the conflict resolved, all in one
	// transaction. Returns the updated document and the resolved conflict.
	Resolve(ctx context.Context, conflictID, userID uuid.UUID, content string) (*model.SyncedDocument, *model.SyncConflict, error)
}
