package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/specboard/syncd/internal/errs"
	"github.com/specboard/syncd/internal/model"
	"github.com/specboard/syncd/internal/repository"
)

// MemberService manages project membership and roles.
type MemberService interface {
	// List returns members with directory info. Requires VIEW.
	List(ctx context.Context, projectID, userID uuid.UUID) ([]model.MemberInfo, error)
	// Get returns one member with directory info. Requires VIEW.
	Get(ctx context.Context, projectID, userID, targetID uuid.UUID) (*model.MemberInfo, error)
	// UpdateRole changes another member's role. Requires ADMIN.
	UpdateRole(ctx context.Context, projectID, requesterID, targetID uuid.UUID, role model.Role) error
	// Remove deletes a membership. ADMIN removes anyone but the owner;
	// non-admins may only remove themselves (leave).
	Remove(ctx context.Context, projectID, requesterID, targetID uuid.UUID) error
}

type MemberServiceImpl struct {
	access   AccessService
	projects repository.ProjectRepository
	members  repository.MemberRepository
}

// NewMemberService constructs the membership service.
func NewMemberService(access AccessService, projects repository.ProjectRepository, members repository.MemberRepository) *MemberServiceImpl {
	return &MemberServiceImpl{access: access, projects: projects, members: members}
}

// List requires VIEW on the project.
func (s *MemberServiceImpl) List(ctx context.Context, projectID, userID uuid.UUID) ([]model.MemberInfo, error) {
	if _, err := s.access.Authorize(ctx, projectID, userID, model.RoleView); err != nil {
		return nil, err
	}
	return s.members.List(ctx, projectID)
}

// Get requires VIEW. The owner has no membership row, so asking for the
// owner yields ErrNotFound like any other non-member.
func (s *MemberServiceImpl) Get(ctx context.Context, projectID, userID, targetID uuid.UUID) (*model.MemberInfo, error) {
	if _, err := s.access.Authorize(ctx, projectID, userID, model.RoleView); err != nil {
		return nil, err
	}
	list, err := s.members.List(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].UserID == targetID {
			return &list[i], nil
		}
	}
	return nil, errs.ErrNotFound
}

// UpdateRole enforces the role change rules: requester must hold ADMIN,
// cannot change their own role, cannot touch the owner's implicit ADMIN, and
// cannot demote the last explicit ADMIN below ADMIN.
func (s *MemberServiceImpl) UpdateRole(ctx context.Context, projectID, requesterID, targetID uuid.UUID, role model.Role) error {
	if role < model.RoleView || role > model.RoleAdmin {
		return fmt.Errorf("%w: unknown role", errs.ErrValidation)
	}
	if _, err := s.access.Authorize(ctx, projectID, requesterID, model.RoleAdmin); err != nil {
		return err
	}
	if requesterID == targetID {
		return fmt.Errorf("%w: cannot change own role", errs.ErrValidation)
	}
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if p.OwnerID == targetID {
		return fmt.Errorf("%w: owner role is implicit", errs.ErrValidation)
	}
	cur, err := s.members.Get(ctx, projectID, targetID)
	if err != nil {
		return err
	}
	if cur.Role == model.RoleAdmin && role < model.RoleAdmin {
		admins, err := s.members.CountAdmins(ctx, projectID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return fmt.Errorf("%w: cannot demote the last admin", errs.ErrValidation)
		}
	}
	return s.members.UpdateRole(ctx, projectID, targetID, role)
}

// Remove lets members leave and admins evict. The owner cannot be removed.
func (s *MemberServiceImpl) Remove(ctx context.Context, projectID, requesterID, targetID uuid.UUID) error {
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if p.OwnerID == targetID {
		return fmt.Errorf("%w: cannot remove the project owner", errs.ErrValidation)
	}
	if requesterID != targetID {
		if _, err := s.access.Authorize(ctx, projectID, requesterID, model.RoleAdmin); err != nil {
			return err
		}
	} else {
		// Leaving still requires being a member at all.
		if _, err := s.access.Authorize(ctx, projectID, requesterID, model.RoleView); err != nil {
			return err
		}
	}
	return s.members.Remove(ctx, projectID, targetID)
}

var _ MemberService = (*MemberServiceImpl)(nil)
