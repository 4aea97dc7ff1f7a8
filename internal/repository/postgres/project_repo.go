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

// ProjectRepo implements ProjectRepository using PostgreSQL.
type ProjectRepo struct{ db *DB }

// NewProjectRepo constructs a project repository.
func NewProjectRepo(db *DB) *ProjectRepo { return &ProjectRepo{db: db} }

// Create inserts a new project, filling ID and timestamps.
func (r *ProjectRepo) Create(ctx context.Context, p *model.Project) error {
	id, err := newID()
	if err != nil {
		return err
	}
	p.ID = id
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	const q = `
INSERT INTO cloud_projects (id, name, description, owner_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)`
	_, err = r.db.Pool.Exec(ctx, q, p.ID, p.Name, p.Description, p.OwnerID, p.CreatedAt, p.UpdatedAt)
	return err
}

// Get returns a project by id.
func (r *ProjectRepo) Get(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	const q = `
SELECT id, name, description, owner_id, created_at, updated_at
FROM cloud_projects WHERE id=$1`
	var p model.Project
	err := r.db.Pool.QueryRow(ctx, q, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListForUser returns projects the user owns or belongs to, newest first.
func (r *ProjectRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Project, error) {
	const q = `
SELECT DISTINCT p.id, p.name, p.description, p.owner_id, p.created_at, p.updated_at
FROM cloud_projects p
LEFT JOIN project_members m ON m.project_id = p.id
WHERE p.owner_id=$1 OR m.user_id=$1
ORDER BY p.created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Project
	for rows.Next() {
		var p model.Project
		if err = rows.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes a project; dependent rows go with it via ON DELETE CASCADE.
func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM cloud_projects WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

var _ repository.ProjectRepository = (*ProjectRepo)(nil)
