package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/specboard/syncd/internal/model"
	"github.com/specboard/syncd/internal/repository"
)

type fakeAccess struct {
	role    model.Role
	err     error
	lastMin model.Role
	calls   int
}

func (f *fakeAccess) Authorize(_ context.Context, _, _ uuid.UUID, min model.Role) (model.Role, error) {
	f.lastMin = min
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	if f.role == 0 {
		return model.RoleAdmin, nil
	}
	return f.role, nil
}

type fakeDocRepo struct {
	applyFn    func(w model.WriteRequest) (repository.ApplyResult, error)
	applyCalls []model.WriteRequest

	listOut []model.SyncedDocument
	listErr error

	getOut *model.SyncedDocument
	getErr error

	versionsOut []model.DocumentVersion
	versionsErr error

	statsDocs     int
	statsFeatures int
	statsLast     *time.Time
	statsErr      error
}

var _ repository.DocumentRepository = (*fakeDocRepo)(nil)

func (f *fakeDocRepo) Apply(_ context.Context, _, _ uuid.UUID, w model.WriteRequest) (repository.ApplyResult, error) {
	f.applyCalls = append(f.applyCalls, w)
	return f.applyFn(w)
}
func (f *fakeDocRepo) ListByProject(_ context.Context, _ uuid.UUID, _ []string) ([]model.SyncedDocument, error) {
	return f.listOut, f.listErr
}
func (f *fakeDocRepo) Get(_ context.Context, _, _ uuid.UUID) (*model.SyncedDocument, error) {
	return f.getOut, f.getErr
}
func (f *fakeDocRepo) ListVersions(_ context.Context, _ uuid.UUID) ([]model.DocumentVersion, error) {
	return f.versionsOut, f.versionsErr
}
func (f *fakeDocRepo) Stats(_ context.Context, _ uuid.UUID) (int, int, *time.Time, error) {
	return f.statsDocs, f.statsFeatures, f.statsLast, f.statsErr
}

type fakeConflictRepo struct {
	getOut *model.SyncConflict
	getErr error

	pendingOut []model.SyncConflict
	pendingErr error

	countOut int
	countErr error

	resolveDoc *model.SyncedDocument
	resolveRec *model.SyncConflict
	resolveErr error

	resolveContent string
}

var _ repository.ConflictRepository = (*fakeConflictRepo)(nil)

func (f *fakeConflictRepo) Get(_ context.Context, _ uuid.UUID) (*model.SyncConflict, error) {
	return f.getOut, f.getErr
}
func (f *fakeConflictRepo) ListPending(_ context.Context, _ uuid.UUID, _ []string) ([]model.SyncConflict, error) {
	return f.pendingOut, f.pendingErr
}
func (f *fakeConflictRepo) CountPending(_ context.Context, _ uuid.UUID, _ []string) (int, error) {
	return f.countOut, f.countErr
}
func (f *fakeConflictRepo) Resolve(_ context.Context, _, _ uuid.UUID, content string) (*model.SyncedDocument, *model.SyncConflict, error) {
	f.resolveContent = content
	return f.resolveDoc, f.resolveRec, f.resolveErr
}

type fakeEventRepo struct {
	inserted  []model.SyncEvent
	insertErr error

	listOut []model.SyncEvent
	listErr error

	latestOut *model.SyncEvent
	latestErr error
}

var _ repository.EventRepository = (*fakeEventRepo)(nil)

func (f *fakeEventRepo) Insert(_ context.Context, e *model.SyncEvent) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, *e)
	return nil
}
func (f *fakeEventRepo) ListByProject(_ context.Context, _ uuid.UUID, _, _ int) ([]model.SyncEvent, error) {
	return f.listOut, f.listErr
}
func (f *fakeEventRepo) Latest(_ context.Context, _, _ uuid.UUID) (*model.SyncEvent, error) {
	return f.latestOut, f.latestErr
}

type fakeMemberRepo struct {
	getOut *model.ProjectMember
	getErr error

	listOut []model.MemberInfo
	listErr error

	updatedRole  *model.Role
	updateErr    error
	removedUser  *uuid.UUID
	removeErr    error
	touched      int
	touchErr     error
	countOut     int
	countErr     error
	adminsOut    int
	adminsErr    error
}

var _ repository.MemberRepository = (*fakeMemberRepo)(nil)

func (f *fakeMemberRepo) Get(_ context.Context, _, _ uuid.UUID) (*model.ProjectMember, error) {
	return f.getOut, f.getErr
}
func (f *fakeMemberRepo) List(_ context.Context, _ uuid.UUID) ([]model.MemberInfo, error) {
	return f.listOut, f.listErr
}
func (f *fakeMemberRepo) UpdateRole(_ context.Context, _, _ uuid.UUID, role model.Role) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updatedRole = &role
	return nil
}
func (f *fakeMemberRepo) Remove(_ context.Context, _, userID uuid.UUID) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removedUser = &userID
	return nil
}
func (f *fakeMemberRepo) TouchLastSync(_ context.Context, _, _ uuid.UUID) error {
	f.touched++
	return f.touchErr
}
func (f *fakeMemberRepo) Count(_ context.Context, _ uuid.UUID) (int, error) {
	return f.countOut, f.countErr
}
func (f *fakeMemberRepo) CountAdmins(_ context.Context, _ uuid.UUID) (int, error) {
	return f.adminsOut, f.adminsErr
}

type fakeProjectRepo struct {
	created   *model.Project
	createErr error

	getOut *model.Project
	getErr error

	listOut []model.Project
	listErr error

	deletedID *uuid.UUID
	deleteErr error
}

var _ repository.ProjectRepository = (*fakeProjectRepo)(nil)

func (f *fakeProjectRepo) Create(_ context.Context, p *model.Project) error {
	if f.createErr != nil {
		return f.createErr
	}
	p.ID = uuid.Must(uuid.NewV4())
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	f.created = p
	return nil
}
func (f *fakeProjectRepo) Get(_ context.Context, _ uuid.UUID) (*model.Project, error) {
	return f.getOut, f.getErr
}
func (f *fakeProjectRepo) ListForUser(_ context.Context, _ uuid.UUID) ([]model.Project, error) {
	return f.listOut, f.listErr
}
func (f *fakeProjectRepo) Delete(_ context.Context, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedID = &id
	return nil
}

type fakeLinkRepo struct {
	inserted  []model.LinkCode
	insertErr []error // consumed per call, nil after exhaustion

	existsOut bool
	existsErr error

	activeOut []model.LinkCode
	activeErr error

	redeemOut  model.RedeemResult
	redeemErr  error
	redeemCode string

	deletedN  int64
	deleteErr error
}

var _ repository.LinkCodeRepository = (*fakeLinkRepo)(nil)

func (f *fakeLinkRepo) Insert(_ context.Context, lc *model.LinkCode) error {
	var err error
	if len(f.insertErr) > 0 {
		err = f.insertErr[0]
		f.insertErr = f.insertErr[1:]
	}
	if err != nil {
		return err
	}
	lc.ID = uuid.Must(uuid.NewV4())
	lc.CreatedAt = time.Now().UTC()
	f.inserted = append(f.inserted, *lc)
	return nil
}
func (f *fakeLinkRepo) Exists(_ context.Context, _ string) (bool, error) {
	return f.existsOut, f.existsErr
}
func (f *fakeLinkRepo) ListActive(_ context.Context, _ uuid.UUID) ([]model.LinkCode, error) {
	return f.activeOut, f.activeErr
}
func (f *fakeLinkRepo) Redeem(_ context.Context, code string, _ uuid.UUID) (model.RedeemResult, error) {
	f.redeemCode = code
	return f.redeemOut, f.redeemErr
}
func (f *fakeLinkRepo) DeleteExpired(_ context.Context, _ time.Time) (int64, error) {
	return f.deletedN, f.deleteErr
}

type fakeUserRepo struct {
	created   *model.User
	createErr error

	byID    *model.User
	byIDErr error

	byName    *model.User
	byNameErr error
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	u.ID = uuid.Must(uuid.NewV4())
	u.CreatedAt = time.Now().UTC()
	f.created = u
	return nil
}
func (f *fakeUserRepo) GetByID(_ context.Context, _ uuid.UUID) (*model.User, error) {
	return f.byID, f.byIDErr
}
func (f *fakeUserRepo) GetByUsername(_ context.Context, _ string) (*model.User, error) {
	return f.byName, f.byNameErr
}
