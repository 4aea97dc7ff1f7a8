package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/specboard/syncd/internal/model"
)

// ProjectRepository manages cloud projects.
type ProjectRepository interface {
	// Create inserts a new project owned by p.OwnerID.
	Create(ctx context.Context, p *model.Project) error

	// Get returns a project by id.
	Get(ctx context.Context, id uuid.UUID) (*model.Project, error)

	// ListForUser returns projects the user owns or is a member of.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Project, error)

	// Delete removes a project and, via cascading constraints, its documents,
	// versions, conflicts, events, members, and link codes.
	Delete(ctx context.Context, id uuid.UUID) error
}
