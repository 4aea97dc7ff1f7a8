package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/specboard/syncd/internal/errs"
	"github.com/specboard/syncd/internal/model"
	"github.com/specboard/syncd/internal/repository"
)

// ProjectService manages cloud project lifecycle.
type ProjectService interface {
	// Create makes a new project owned by the caller.
	Create(ctx context.Context, ownerID uuid.UUID, name, description string) (*model.Project, error)
	// Get returns a project the caller can at least view.
	Get(ctx context.Context, projectID, userID uuid.UUID) (*model.Project, error)
	// List returns projects the caller owns or belongs to.
	List(ctx context.Context, userID uuid.UUID) ([]model.Project, error)
	// Delete removes a project with everything in it. Owner only.
	Delete(ctx context.Context, projectID, userID uuid.UUID) error
}

type ProjectServiceImpl struct {
	access   AccessService
	projects repository.ProjectRepository
}

// NewProjectService constructs the project service.
func NewProjectService(access AccessService, projects repository.ProjectRepository) *ProjectServiceImpl {
	return &ProjectServiceImpl{access: access, projects: projects}
}

// Create validates the name and inserts the project.
func (s *ProjectServiceImpl) Create(ctx context.Context, ownerID uuid.UUID, name, description string) (*model.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty project name", errs.ErrValidation)
	}
	if len(name) > 200 {
		return nil, fmt.Errorf("%w: project name too long", errs.ErrValidation)
	}
	p := &model.Project{Name: name, Description: description, OwnerID: ownerID}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get requires VIEW.
func (s *ProjectServiceImpl) Get(ctx context.Context, projectID, userID uuid.UUID) (*model.Project, error) {
	if _, err := s.access.Authorize(ctx, projectID, userID, model.RoleView); err != nil {
		return nil, err
	}
	return s.projects.Get(ctx, projectID)
}

// List never authorizes per project; the query itself is scoped to the user.
func (s *ProjectServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]model.Project, error) {
	return s.projects.ListForUser(ctx, userID)
}

// Delete is owner-only; explicit ADMIN members cannot drop the project.
func (s *ProjectServiceImpl) Delete(ctx context.Context, projectID, userID uuid.UUID) error {
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if p.OwnerID != userID {
		return errs.ErrForbidden
	}
	return s.projects.Delete(ctx, projectID)
}

var _ ProjectService = (*ProjectServiceImpl)(nil)
