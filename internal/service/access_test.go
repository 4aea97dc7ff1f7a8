package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid/v5"

	"github.com/specboard/syncd/internal/errs"
	"github.com/specboard/syncd/internal/model"
)

func TestAccess_OwnerIsAdmin(t *testing.T) {
	t.Parallel()
	owner := uuid.Must(uuid.NewV4())
	pid := uuid.Must(uuid.NewV4())
	projects := &fakeProjectRepo{getOut: &model.Project{ID: pid, OwnerID: owner}}
	members := &fakeMemberRepo{getErr: errs.ErrNotFound}
	s := NewAccessService(projects, members)

	role, err := s.Authorize(context.Background(), pid, owner, model.RoleAdmin)
	if err != nil || role != model.RoleAdmin {
		t.Fatalf("owner: role=%v err=%v", role, err)
	}
}

func TestAccess_MemberRoleOrder(t *testing.T) {
	t.Parallel()
	pid := uuid.Must(uuid.NewV4())
	user := uuid.Must(uuid.NewV4())
	projects := &fakeProjectRepo{getOut: &model.Project{ID: pid, OwnerID: uuid.Must(uuid.NewV4())}}
	members := &fakeMemberRepo{getOut: &model.ProjectMember{UserID: user, Role: model.RoleEdit}}
	s := NewAccessService(projects, members)
	ctx := context.Background()

	if role, err := s.Authorize(ctx, pid, user, model.RoleView); err != nil || role != model.RoleEdit {
		t.Fatalf("EDIT covers VIEW: role=%v err=%v", role, err)
	}
	if _, err := s.Authorize(ctx, pid, user, model.RoleAdmin); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("EDIT below ADMIN: %v", err)
	}
}

func TestAccess_NonMemberForbidden(t *testing.T) {
	t.Parallel()
	pid := uuid.Must(uuid.NewV4())
	projects := &fakeProjectRepo{getOut: &model.Project{ID: pid, OwnerID: uuid.Must(uuid.NewV4())}}
	members := &fakeMemberRepo{getErr: errs.ErrNotFound}
	s := NewAccessService(projects, members)

	_, err := s.Authorize(context.Background(), pid, uuid.Must(uuid.NewV4()), model.RoleView)
	if !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("want forbidden, got %v", err)
	}
}

func TestAccess_MissingProject(t *testing.T) {
	t.Parallel()
	s := NewAccessService(&fakeProjectRepo{getErr: errs.ErrNotFound}, &fakeMemberRepo{})

	_, err := s.Authorize(context.Background(), uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4()), model.RoleView)
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}
