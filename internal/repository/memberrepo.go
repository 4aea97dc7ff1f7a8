package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/specboard/syncd/internal/model"
)

// MemberRepository manages project membership rows. The project owner has no
// row here; ownership lives on the project itself.
type MemberRepository interface {
	// Get returns the membership row for (project, user).
	Get(ctx context.Context, projectID, userID uuid.UUID) (*model.ProjectMember, error)

	// List returns all members of a project with directory info, oldest first.
	List(ctx context.Context, projectID uuid.UUID) ([]model.MemberInfo, error)

	// UpdateRole changes a member's role.
	UpdateRole(ctx context.Context, projectID, userID uuid.UUID, role model.Role) error

	// Remove deletes a membership row.
	Remove(ctx context.Context, projectID, userID uuid.UUID) error

	// TouchLastSync sets lastSyncAt to now. No-op when the user has no
	// membership row (project owner).
	TouchLastSync(ctx context.Context, projectID, userID uuid.UUID) error

	// Count returns the number of membership rows for a project.
	Count(ctx context.Context, projectID uuid.UUID) (int, error)

	// CountAdmins returns the number of explicit ADMIN members.
	CountAdmins(ctx context.Context, projectID uuid.UUID) (int, error)
}
