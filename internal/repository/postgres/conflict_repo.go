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
	"github.com/specboard/syncd/internal/textdiff"
)

// ConflictRepo implements ConflictRepository using PostgreSQL.
type ConflictRepo struct{ db *DB }

// NewConflictRepo constructs a conflict repository.
func NewConflictRepo(db *DB) *ConflictRepo { return &ConflictRepo{db: db} }

const selConflictCols = `
id, project_id, document_id, feature_id, file_type,
local_content, local_checksum, local_base_ver,
remote_content, remote_checksum, remote_version,
detected_at, resolved_at, resolved_by`

func scanConflict(row pgx.Row) (*model.SyncConflict, error) {
	var c model.SyncConflict
	var resolvedBy *uuid.UUID
	err := row.Scan(
		&c.ID, &c.ProjectID, &c.DocumentID, &c.FeatureID, &c.FileType,
		&c.LocalContent, &c.LocalChecksum, &c.LocalBaseVer,
		&c.RemoteContent, &c.RemoteChecksum, &c.RemoteVersion,
		&c.DetectedAt, &c.ResolvedAt, &resolvedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	if resolvedBy != nil {
		c.ResolvedBy = *resolvedBy
	}
	return &c, nil
}

// Get returns a conflict by id.
func (r *ConflictRepo) Get(ctx context.Context, conflictID uuid.UUID) (*model.SyncConflict, error) {
	q := `SELECT ` + selConflictCols + ` FROM sync_conflicts WHERE id=$1`
	return scanConflict(r.db.Pool.QueryRow(ctx, q, conflictID))
}

// ListPending returns unresolved conflicts for a project, newest first.
func (r *ConflictRepo) ListPending(ctx context.Context, projectID uuid.UUID, featureIDs []string) ([]model.SyncConflict, error) {
	q := `SELECT ` + selConflictCols + `
FROM sync_conflicts
WHERE project_id=$1 AND resolved_at IS NULL AND ($2::text[] IS NULL OR feature_id = ANY($2))
ORDER BY detected_at DESC`
	var filter any
	if len(featureIDs) > 0 {
		filter = featureIDs
	}
	rows, err := r.db.Pool.Query(ctx, q, projectID, filter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SyncConflict
	for rows.Next() {
		c, err := scanConflict(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// CountPending returns the number of unresolved conflicts.
func (r *ConflictRepo) CountPending(ctx context.Context, projectID uuid.UUID, featureIDs []string) (int, error) {
	const q = `
SELECT COUNT(*) FROM sync_conflicts
WHERE project_id=$1 AND resolved_at IS NULL AND ($2::text[] IS NULL OR feature_id = ANY($2))`
	var filter any
	if len(featureIDs) > 0 {
		filter = featureIDs
	}
	var n int
	if err := r.db.Pool.QueryRow(ctx, q, projectID, filter).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Resolve writes the resolution content as a clean update based on the
// current stored version and marks the conflict resolved, in one transaction.
// Locking order is conflict row first, then document row, matching Apply's
// document lock so a concurrent push serializes against the same identity.
func (r *ConflictRepo) Resolve(
	ctx context.Context, conflictID, userID uuid.UUID, content string,
) (doc *model.SyncedDocument, rec *model.SyncConflict, err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, err
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

	selConfl := `SELECT ` + selConflictCols + ` FROM sync_conflicts WHERE id=$1 FOR UPDATE`
	rec, err = scanConflict(tx.QueryRow(ctx, selConfl, conflictID))
	if err != nil {
		return nil, nil, err
	}
	if rec.ResolvedAt != nil {
		return nil, nil, errs.ErrAlreadyResolved
	}

	const selDoc = `
SELECT feature_id, feature_name, file_type, version, created_at
FROM synced_documents WHERE id=$1 FOR UPDATE`
	d := model.SyncedDocument{ID: rec.DocumentID, ProjectID: rec.ProjectID}
	if err = tx.QueryRow(ctx, selDoc, rec.DocumentID).Scan(
		&d.FeatureID, &d.FeatureName, &d.FileType, &d.Version, &d.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, errs.ErrNotFound
		}
		return nil, nil, err
	}

	now := time.Now().UTC()
	sum := textdiff.Fingerprint(content)
	d.Content = content
	d.Checksum = sum
	d.Version++
	d.LastModifiedBy = userID
	d.UpdatedAt = now

	if _, err = tx.Exec(ctx, updDoc, d.ID, content, sum, d.Version, d.FeatureName, userID, now); err != nil {
		return nil, nil, err
	}
	var verID uuid.UUID
	if verID, err = newID(); err != nil {
		return nil, nil, err
	}
	if _, err = tx.Exec(ctx, insVersion, verID, d.ID, d.Version, content, sum, userID, now); err != nil {
		return nil, nil, err
	}

	const updConfl = `UPDATE sync_conflicts SET resolved_at=$2, resolved_by=$3 WHERE id=$1`
	if _, err = tx.Exec(ctx, updConfl, conflictID, now, userID); err != nil {
		return nil, nil, err
	}
	rec.ResolvedAt = &now
	rec.ResolvedBy = userID
	return &d, rec, nil
}

var _ repository.ConflictRepository = (*ConflictRepo)(nil)
