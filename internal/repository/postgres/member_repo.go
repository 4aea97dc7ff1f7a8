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

// MemberRepo implements MemberRepository using PostgreSQL.
type MemberRepo struct{ db *DB }

// NewMemberRepo constructs a member repository.
func NewMemberRepo(db *DB) *MemberRepo { return &MemberRepo{db: db} }

// Get returns the membership row for (project, user).
func (r *MemberRepo) Get(ctx context.Context, projectID, userID uuid.UUID) (*model.ProjectMember, error) {
	const q = `
SELECT id, role, joined_at, last_sync_at
FROM project_members WHERE project_id=$1 AND user_id=$2`
	m := model.ProjectMember{ProjectID: projectID, UserID: userID}
	var role string
	err := r.db.Pool.QueryRow(ctx, q, projectID, userID).Scan(&m.ID, &role, &m.JoinedAt, &m.LastSyncAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	m.Role = model.ParseRole(role)
	return &m, nil
}

// List returns all members with directory info, oldest first.
func (r *MemberRepo) List(ctx context.Context, projectID uuid.UUID) ([]model.MemberInfo, error) {
	const q = `
SELECT m.id, m.user_id, m.role, m.joined_at, m.last_sync_at, u.username, u.display_name
FROM project_members m
JOIN users u ON u.id = m.user_id
WHERE m.project_id=$1
ORDER BY m.joined_at ASC`
	rows, err := r.db.Pool.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MemberInfo
	for rows.Next() {
		mi := model.MemberInfo{ProjectMember: model.ProjectMember{ProjectID: projectID}}
		var role string
		if err = rows.Scan(&mi.ID, &mi.UserID, &role, &mi.JoinedAt, &mi.LastSyncAt, &mi.Username, &mi.DisplayName); err != nil {
			return nil, err
		}
		mi.Role = model.ParseRole(role)
		out = append(out, mi)
	}
	return out, rows.Err()
}

// UpdateRole changes a member's role.
func (r *MemberRepo) UpdateRole(ctx context.Context, projectID, userID uuid.UUID, role model.Role) error {
	const q = `UPDATE project_members SET role=$3 WHERE project_id=$1 AND user_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, projectID, userID, role.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Remove deletes a membership row.
func (r *MemberRepo) Remove(ctx context.Context, projectID, userID uuid.UUID) error {
	const q = `DELETE FROM project_members WHERE project_id=$1 AND user_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, projectID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// TouchLastSync sets lastSyncAt to now; no-op for owners without a row.
func (r *MemberRepo) TouchLastSync(ctx context.Context, projectID, userID uuid.UUID) error {
	const q = `UPDATE project_members SET last_sync_at=$3 WHERE project_id=$1 AND user_id=$2`
	_, err := r.db.Pool.Exec(ctx, q, projectID, userID, time.Now().UTC())
	return err
}

// Count returns the number of membership rows.
func (r *MemberRepo) Count(ctx context.Context, projectID uuid.UUID) (int, error) {
	const q = `SELECT COUNT(*) FROM project_members WHERE project_id=$1`
	var n int
	if err := r.db.Pool.QueryRow(ctx, q, projectID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CountAdmins returns the number of explicit ADMIN members.
func (r *MemberRepo) CountAdmins(ctx context.Context, projectID uuid.UUID) (int, error) {
	const q = `SELECT COUNT(*) FROM project_members WHERE project_id=$1 AND role='ADMIN'`
	var n int
	if err := r.db.Pool.QueryRow(ctx, q, projectID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

var _ repository.MemberRepository = (*MemberRepo)(nil)
