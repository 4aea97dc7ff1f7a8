package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/specboard/syncd/internal/errs"
	"github.com/specboard/syncd/internal/model"
	"github.com/specboard/syncd/internal/repository"
)

// EventRepo implements the append-only sync event log using PostgreSQL.
type EventRepo struct{ db *DB }

// NewEventRepo constructs an event repository.
func NewEventRepo(db *DB) *EventRepo { return &EventRepo{db: db} }

// Insert appends one event, filling ID and CreatedAt.
func (r *EventRepo) Insert(ctx context.Context, e *model.SyncEvent) error {
	id, err := newID()
	if err != nil {
		return err
	}
	e.ID = id
	e.CreatedAt = time.Now().UTC()
	const q = `
INSERT INTO sync_events (id, project_id, user_id, event_type, features_affected, created_at)
VALUES ($1,$2,$3,$4,$5,$6)`
	_, err = r.db.Pool.Exec(ctx, q, e.ID, e.ProjectID, e.UserID, e.EventType, e.FeaturesAffected, e.CreatedAt)
	return err
}

// ListByProject returns events newest first with limit/offset paging.
func (r *EventRepo) ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]model.SyncEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, user_id, event_type, features_affected, created_at
FROM sync_events WHERE project_id=$1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.db.Pool.Query(ctx, q, projectID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SyncEvent
	for rows.Next() {
		e := model.SyncEvent{ProjectID: projectID}
		if err = rows.Scan(&e.ID, &e.UserID, &e.EventType, &e.FeaturesAffected, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Latest returns the most recent event for a user in a project.
func (r *EventRepo) Latest(ctx context.Context, projectID, userID uuid.UUID) (*model.SyncEvent, error) {
	const q = `
SELECT id, event_type, features_affected, created_at
FROM sync_events WHERE project_id=$1 AND user_id=$2
ORDER BY created_at DESC
LIMIT 1`
	e := model.SyncEvent{ProjectID: projectID, UserID: userID}
	err := r.db.Pool.QueryRow(ctx, q, projectID, userID).Scan(&e.ID, &e.EventType, &e.FeaturesAffected, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

var _ repository.EventRepository = (*EventRepo)(nil)
