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

// LinkRepo implements LinkCodeRepository using PostgreSQL.
type LinkRepo struct{ db *DB }

// NewLinkRepo constructs a link code repository.
func NewLinkRepo(db *DB) *LinkRepo { return &LinkRepo{db: db} }

// Insert stores a freshly generated code.
func (r *LinkRepo) Insert(ctx context.Context, lc *model.LinkCode) error {
	id, err := newID()
	if err != nil {
		return err
	}
	lc.ID = id
	lc.CreatedAt = time.Now().UTC()
	const q = `
INSERT INTO link_codes (id, project_id, code, expires_at, created_at)
VALUES ($1,$2,$3,$4,$5)`
	if _, err = r.db.Pool.Exec(ctx, q, lc.ID, lc.ProjectID, lc.Code, lc.ExpiresAt, lc.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return errs.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Exists reports whether a code row exists.
func (r *LinkRepo) Exists(ctx context.Context, code string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM link_codes WHERE code=$1)`
	var ok bool
	if err := r.db.Pool.QueryRow(ctx, q, code).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// ListActive returns unexpired, unused codes for a project, newest first.
func (r *LinkRepo) ListActive(ctx context.Context, projectID uuid.UUID) ([]model.LinkCode, error) {
	const q = `
SELECT id, code, expires_at, created_at
FROM link_codes
WHERE project_id=$1 AND used_at IS NULL AND expires_at > $2
ORDER BY created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, projectID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.LinkCode
	for rows.Next() {
		lc := model.LinkCode{ProjectID: projectID}
		if err = rows.Scan(&lc.ID, &lc.Code, &lc.ExpiresAt, &lc.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, lc)
	}
	return out, rows.Err()
}

// Redeem validates the code and joins the user in one transaction. The FOR
// UPDATE lock on the code row is what makes the code single-use under
// concurrent redemption: the second transaction blocks, then sees used_at.
func (r *LinkRepo) Redeem(ctx context.Context, code string, userID uuid.UUID) (res model.RedeemResult, err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return model.RedeemResult{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const selCode = `
SELECT id, project_id, expires_at, used_at
FROM link_codes WHERE code=$1 FOR UPDATE`
	var (
		codeID    uuid.UUID
		projectID uuid.UUID
		expiresAt time.Time
		usedAt    *time.Time
	)
	if err = tx.QueryRow(ctx, selCode, code).Scan(&codeID, &projectID, &expiresAt, &usedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.RedeemResult{}, errs.ErrNotFound
		}
		return model.RedeemResult{}, err
	}
	now := time.Now().UTC()
	if expiresAt.Before(now) {
		return model.RedeemResult{}, errs.ErrExpired
	}
	if usedAt != nil {
		return model.RedeemResult{}, errs.ErrAlreadyUsed
	}

	const selProject = `
SELECT id, name, description, owner_id, created_at, updated_at
FROM cloud_projects WHERE id=$1`
	var p model.Project
	if err = tx.QueryRow(ctx, selProject, projectID).Scan(
		&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return model.RedeemResult{}, err
	}

	if p.OwnerID == userID {
		return model.RedeemResult{Project: p, AlreadyMember: true}, nil
	}
	const selMember = `SELECT EXISTS (SELECT 1 FROM project_members WHERE project_id=$1 AND user_id=$2)`
	var isMember bool
	if err = tx.QueryRow(ctx, selMember, projectID, userID).Scan(&isMember); err != nil {
		return model.RedeemResult{}, err
	}
	if isMember {
		return model.RedeemResult{Project: p, AlreadyMember: true}, nil
	}

	var memberID uuid.UUID
	if memberID, err = newID(); err != nil {
		return model.RedeemResult{}, err
	}
	const insMember = `
INSERT INTO project_members (id, project_id, user_id, role, joined_at)
VALUES ($1,$2,$3,'EDIT',$4)`
	if _, err = tx.Exec(ctx, insMember, memberID, projectID, userID, now); err != nil {
		return model.RedeemResult{}, err
	}
	const markUsed = `UPDATE link_codes SET used_at=$2 WHERE id=$1`
	if _, err = tx.Exec(ctx, markUsed, codeID, now); err != nil {
		return model.RedeemResult{}, err
	}
	return model.RedeemResult{Project: p}, nil
}

// DeleteExpired removes codes past the cutoff.
func (r *LinkRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM link_codes WHERE expires_at < $1`
	tag, err := r.db.Pool.Exec(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ repository.LinkCodeRepository = (*LinkRepo)(nil)
