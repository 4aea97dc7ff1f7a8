// Package service contains application services over the repositories.
package service

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"

	"github.com/specboard/syncd/internal/errs"
	"github.com/specboard/syncd/internal/model"
	"github.com/specboard/syncd/internal/repository"
)

// AccessService answers "may this user act on this project at this level".
type AccessService interface {
	// Authorize returns the caller's effective role when it is at least min,
	// ErrForbidden when it is lower or absent, ErrNotFound when the project
	// does not exist.
	Authorize(ctx context.Context, projectID, userID uuid.UUID, min model.Role) (model.Role, error)
}

type AccessServiceImpl struct {
	projects repository.ProjectRepository
	members  repository.MemberRepository
}

// NewAccessService constructs the access gate.
func NewAccessService(projects repository.ProjectRepository, members repository.MemberRepository) *AccessServiceImpl {
	return &AccessServiceImpl{projects: projects, members: members}
}

// Authorize resolves the effective role. The project owner is an implicit
// ADMIN and never has a membership row.
func (s *AccessServiceImpl) Authorize(ctx context.Context, projectID, userID uuid.UUID, min model.Role) (model.Role, error) {
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return 0, err
	}
	if p.OwnerID == userID {
		return model.RoleAdmin, nil
	}
	m, err := s.members.Get(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return 0, errs.ErrForbidden
		}
		return 0, err
	}
	if m.Role < min {
		return 0, errs.ErrForbidden
	}
	return m.Role, nil
}

var _ AccessService = (*AccessServiceImpl)(nil)
