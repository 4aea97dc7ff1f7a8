// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/specboard/syncd/internal/conflict"
	"github.com/specboard/syncd/internal/model"
)

// ApplyResult reports one document write attempt. Document holds the state
// after a clean write, or the current stored row on NoOp/Conflict. Conflict
// is the pending conflict record when Outcome is conflict.Conflict.
type ApplyResult struct {
	Outcome  conflict.Outcome
	Document *model.SyncedDocument
	Conflict *model.SyncConflict
}

// DocumentRepository provides versioned access to synchronized documents.
type DocumentRepository interface {
	// Apply classifies and applies one write inside a transaction keyed by
	// the (project, feature, fileType) identity. A clean write bumps the
	// version, refreshes the checksum, and records a history row. A conflict
	// persists a pending SyncConflict without touching the document.
	Apply(ctx context.Context, projectID, userID uuid.UUID, w model.WriteRequest) (ApplyResult, error)

	// ListByProject returns documents for a project ordered by creation time,
	// optionally filtered to the given feature ids.
	ListByProject(ctx context.Context, projectID uuid.UUID, featureIDs []string) ([]model.SyncedDocument, error)

	// Get returns a single document by id.
	Get(ctx context.Context, projectID, documentID uuid.UUID) (*model.SyncedDocument, error)

	// ListVersions returns the history rows for a document, newest first.
	ListVersions(ctx context.Context, documentID uuid.UUID) ([]model.DocumentVersion, error)

	// Stats returns document/feature counters and the latest update time.
	Stats(ctx context.Context, projectID uuid.UUID) (docs, features int, lastUpdated *time.Time, err error)
}
