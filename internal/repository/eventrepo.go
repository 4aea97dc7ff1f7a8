package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/specboard/syncd/internal/model"
)

// EventRepository is the append-only sync audit log.
type EventRepository interface {
	// Insert appends one event. Events are immutable.
	Insert(ctx context.Context, e *model.SyncEvent) error

	// ListByProject returns events newest first with limit/offset paging.
	ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]model.SyncEvent, error)

	// Latest returns the most recent event for a user in a project, or
	// ErrNotFound when the user has never synced.
	Latest(ctx context.Context, projectID, userID uuid.UUID) (*model.SyncEvent, error)
}
