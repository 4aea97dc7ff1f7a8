package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/specboard/syncd/internal/conflict"
	"github.com/specboard/syncd/internal/errs"
	"github.com/specboard/syncd/internal/model"
	"github.com/specboard/syncd/internal/repository"
	"github.com/specboard/syncd/internal/textdiff"
)

// DocumentRepo implements DocumentRepository using PostgreSQL.
type DocumentRepo struct{ db *DB }

// NewDocumentRepo constructs a document repository.
func NewDocumentRepo(db *DB) *DocumentRepo { return &DocumentRepo{db: db} }

const selDocForUpdate = `
SELECT id, feature_name, content, checksum, version, last_modified_by, created_at, updated_at
FROM synced_documents
WHERE project_id=$1 AND feature_id=$2 AND file_type=$3 FOR UPDATE`

const insDoc = `
INSERT INTO synced_documents (id, project_id, feature_id, feature_name, file_type, content, checksum, version, last_modified_by, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$10)`

const updDoc = `
UPDATE synced_documents SET content=$2, checksum=$3, version=$4, feature_name=$5, last_modified_by=$6, updated_at=$7
WHERE id=$1`

const insVersion = `
INSERT INTO document_versions (id, document_id, version, content, checksum, modified_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`

const insConflict = `
INSERT INTO sync_conflicts (id, project_id, document_id, feature_id, file_type, local_content, local_checksum, local_base_ver, remote_content, remote_checksum, remote_version, detected_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (document_id) WHERE resolved_at IS NULL DO NOTHING`

const selPendingConflict = `
SELECT id, local_content, local_checksum, local_base_ver, remote_content, remote_checksum, remote_version, detected_at
FROM sync_conflicts
WHERE document_id=$1 AND resolved_at IS NULL`

// Apply classifies one write inside a transaction locked on the document
// identity, so two concurrent pushes to the same identity cannot both be
// told "clean" for the same base version.
func (r *DocumentRepo) Apply(
	ctx context.Context, projectID, userID uuid.UUID, w model.WriteRequest,
) (res repository.ApplyResult, err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return repository.ApplyResult{}, err
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

	var stored *model.SyncedDocument
	doc := model.SyncedDocument{ProjectID: projectID, FeatureID: w.FeatureID, FileType: w.FileType}
	scanErr := tx.QueryRow(ctx, selDocForUpdate, projectID, w.FeatureID, w.FileType).Scan(
		&doc.ID, &doc.FeatureName, &doc.Content, &doc.Checksum, &doc.Version,
		&doc.LastModifiedBy, &doc.CreatedAt, &doc.UpdatedAt,
	)
	switch {
	case scanErr == nil:
		stored = &doc
	case errors.Is(scanErr, pgx.ErrNoRows):
	default:
		return repository.ApplyResult{}, scanErr
	}

	outcome := conflict.Classify(conflict.Incoming{BaseVersion: w.BaseVersion, Content: w.Content}, stored)
	now := time.Now().UTC()

	switch outcome {
	case conflict.NoOp:
		res = repository.ApplyResult{Outcome: conflict.NoOp, Document: stored}

	case conflict.Clean:
		sum := textdiff.Fingerprint(w.Content)
		applied := model.SyncedDocument{
			ProjectID:      projectID,
			FeatureID:      w.FeatureID,
			FeatureName:    w.FeatureName,
			FileType:       w.FileType,
			Content:        w.Content,
			Checksum:       sum,
			Version:        1,
			LastModifiedBy: userID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if stored == nil {
			if applied.ID, err = newID(); err != nil {
				return repository.ApplyResult{}, err
			}
			if _, err = tx.Exec(ctx, insDoc,
				applied.ID, projectID, w.FeatureID, w.FeatureName, w.FileType,
				w.Content, sum, applied.Version, userID, now,
			); err != nil {
				return repository.ApplyResult{}, err
			}
		} else {
			applied.ID = stored.ID
			applied.Version = stored.Version + 1
			applied.CreatedAt = stored.CreatedAt
			if applied.FeatureName == "" {
				applied.FeatureName = stored.FeatureName
			}
			if _, err = tx.Exec(ctx, updDoc,
				applied.ID, w.Content, sum, applied.Version, applied.FeatureName, userID, now,
			); err != nil {
				return repository.ApplyResult{}, err
			}
		}
		var verID uuid.UUID
		if verID, err = newID(); err != nil {
			return repository.ApplyResult{}, err
		}
		if _, err = tx.Exec(ctx, insVersion, verID, applied.ID, applied.Version, w.Content, sum, userID, now); err != nil {
			return repository.ApplyResult{}, err
		}
		res = repository.ApplyResult{Outcome: conflict.Clean, Document: &applied}

	case conflict.Conflict:
		var cID uuid.UUID
		if cID, err = newID(); err != nil {
			return repository.ApplyResult{}, err
		}
		if _, err = tx.Exec(ctx, insConflict,
			cID, projectID, stored.ID, w.FeatureID, w.FileType,
			w.Content, textdiff.Fingerprint(w.Content), w.BaseVersion,
			stored.Content, stored.Checksum, stored.Version, now,
		); err != nil {
			return repository.ApplyResult{}, err
		}
		// Read back whichever pending row won: ours, or one detected earlier.
		rec := model.SyncConflict{
			ProjectID:  projectID,
			DocumentID: stored.ID,
			FeatureID:  w.FeatureID,
			FileType:   w.FileType,
		}
		if err = tx.QueryRow(ctx, selPendingConflict, stored.ID).Scan(
			&rec.ID, &rec.LocalContent, &rec.LocalChecksum, &rec.LocalBaseVer,
			&rec.RemoteContent, &rec.RemoteChecksum, &rec.RemoteVersion, &rec.DetectedAt,
		); err != nil {
			return repository.ApplyResult{}, err
		}
		res = repository.ApplyResult{Outcome: conflict.Conflict, Document: stored, Conflict: &rec}
	}
	return res, nil
}

// ListByProject returns documents ordered by creation time so callers can
// group by feature in first-seen order.
func (r *DocumentRepo) ListByProject(ctx context.Context, projectID uuid.UUID, featureIDs []string) ([]model.SyncedDocument, error) {
	const q = `
SELECT id, feature_id, feature_name, file_type, content, checksum, version, last_modified_by, created_at, updated_at
FROM synced_documents
WHERE project_id=$1 AND ($2::text[] IS NULL OR feature_id = ANY($2))
ORDER BY created_at ASC, feature_id ASC, file_type ASC`
	var filter any
	if len(featureIDs) > 0 {
		filter = featureIDs
	}
	rows, err := r.db.Pool.Query(ctx, q, projectID, filter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SyncedDocument
	for rows.Next() {
		d := model.SyncedDocument{ProjectID: projectID}
		if err = rows.Scan(
			&d.ID, &d.FeatureID, &d.FeatureName, &d.FileType, &d.Content,
			&d.Checksum, &d.Version, &d.LastModifiedBy, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Get returns a single document by id.
func (r *DocumentRepo) Get(ctx context.Context, projectID, documentID uuid.UUID) (*model.SyncedDocument, error) {
	const q = `
SELECT id, feature_id, feature_name, file_type, content, checksum, version, last_modified_by, created_at, updated_at
FROM synced_documents WHERE project_id=$1 AND id=$2`
	d := model.SyncedDocument{ProjectID: projectID}
	err := r.db.Pool.QueryRow(ctx, q, projectID, documentID).Scan(
		&d.ID, &d.FeatureID, &d.FeatureName, &d.FileType, &d.Content,
		&d.Checksum, &d.Version, &d.LastModifiedBy, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// ListVersions returns history rows for a document, newest first.
func (r *DocumentRepo) ListVersions(ctx context.Context, documentID uuid.UUID) ([]model.DocumentVersion, error) {
	const q = `
SELECT id, version, content, checksum, modified_by, created_at
FROM document_versions WHERE document_id=$1
ORDER BY version DESC`
	rows, err := r.db.Pool.Query(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DocumentVersion
	for rows.Next() {
		v := model.DocumentVersion{DocumentID: documentID}
		if err = rows.Scan(&v.ID, &v.Version, &v.Content, &v.Checksum, &v.ModifiedBy, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Stats returns document/feature counters and the latest update time.
func (r *DocumentRepo) Stats(ctx context.Context, projectID uuid.UUID) (int, int, *time.Time, error) {
	const q = `
SELECT COUNT(*), COUNT(DISTINCT feature_id), MAX(updated_at)
FROM synced_documents WHERE project_id=$1`
	var docs, features int
	var last *time.Time
	if err := r.db.Pool.QueryRow(ctx, q, projectID).Scan(&docs, &features, &last); err != nil {
		return 0, 0, nil, err
	}
	return docs, features, last, nil
}

var _ repository.DocumentRepository = (*DocumentRepo)(nil)
