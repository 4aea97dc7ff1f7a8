package httpapi

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/specboard/syncd/internal/model"
	"github.com/specboard/syncd/internal/service"
)

type fakeAuthService struct {
	registerID  uuid.UUID
	registerErr error
	tokens      model.Tokens
	user        model.User
	loginErr    error
	lastClient  string
}

var _ service.AuthService = (*fakeAuthService)(nil)

func (f *fakeAuthService) Register(_ context.Context, _, _, _ string) (uuid.UUID, error) {
	return f.registerID, f.registerErr
}

func (f *fakeAuthService) Login(_ context.Context, _, _, clientAddr string) (model.Tokens, model.User, error) {
	f.lastClient = clientAddr
	return f.tokens, f.user, f.loginErr
}

type fakeProjectService struct {
	createOut *model.Project
	createErr error
	getOut    *model.Project
	getErr    error
	listOut   []model.Project
	deleteErr error
	deletedID uuid.UUID
}

var _ service.ProjectService = (*fakeProjectService)(nil)

func (f *fakeProjectService) Create(_ context.Context, ownerID uuid.UUID, name, description string) (*model.Project, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return &model.Project{ID: uuid.Must(uuid.NewV4()), OwnerID: ownerID, Name: name, Description: description}, nil
}

func (f *fakeProjectService) Get(_ context.Context, _, _ uuid.UUID) (*model.Project, error) {
	return f.getOut, f.getErr
}

func (f *fakeProjectService) List(_ context.Context, _ uuid.UUID) ([]model.Project, error) {
	return f.listOut, nil
}

func (f *fakeProjectService) Delete(_ context.Context, projectID, _ uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedID = projectID
	return nil
}

type fakeMemberService struct {
	listOut   []model.MemberInfo
	listErr   error
	getOut    *model.MemberInfo
	getErr    error
	updateErr error
	lastRole  model.Role
	removeErr error
	removed   uuid.UUID
}

var _ service.MemberService = (*fakeMemberService)(nil)

func (f *fakeMemberService) List(_ context.Context, _, _ uuid.UUID) ([]model.MemberInfo, error) {
	return f.listOut, f.listErr
}

func (f *fakeMemberService) Get(_ context.Context, _, _, _ uuid.UUID) (*model.MemberInfo, error) {
	return f.getOut, f.getErr
}

func (f *fakeMemberService) UpdateRole(_ context.Context, _, _, _ uuid.UUID, role model.Role) error {
	f.lastRole = role
	return f.updateErr
}

func (f *fakeMemberService) Remove(_ context.Context, _, _, targetID uuid.UUID) error {
	f.removed = targetID
	return f.removeErr
}

type fakeLinkService struct {
	genOut    *model.LinkCode
	genErr    error
	lastHours int
	listOut   []model.LinkCode
	redeemOut model.RedeemResult
	redeemErr error
	lastCode  string
}

var _ service.LinkService = (*fakeLinkService)(nil)

func (f *fakeLinkService) Generate(_ context.Context, _, _ uuid.UUID, hours int) (*model.LinkCode, error) {
	f.lastHours = hours
	return f.genOut, f.genErr
}

func (f *fakeLinkService) ListActive(_ context.Context, _, _ uuid.UUID) ([]model.LinkCode, error) {
	return f.listOut, nil
}

func (f *fakeLinkService) Redeem(_ context.Context, code string, _ uuid.UUID) (model.RedeemResult, error) {
	f.lastCode = code
	return f.redeemOut, f.redeemErr
}

func (f *fakeLinkService) CleanupExpired(_ context.Context) (int64, error) {
	return 0, nil
}

type fakeSyncService struct {
	pushOut    model.PushResult
	pushErr    error
	lastWrites []model.WriteRequest
	pullOut    model.PullResult
	pullErr    error
	lastFilter []string
	listOut    []service.ConflictView
	getOut     *service.ConflictView
	getErr     error
	resolveOut *model.SyncedDocument
	resolveErr error
	historyOut []model.DocumentVersion
	historyErr error
	statusOut  *model.SyncStatus
	statusErr  error
	events     []model.SyncEvent
	lastLimit  int
	lastOffset int
}

var _ service.SyncService = (*fakeSyncService)(nil)

func (f *fakeSyncService) Push(_ context.Context, _, _ uuid.UUID, writes []model.WriteRequest) (model.PushResult, error) {
	f.lastWrites = writes
	return f.pushOut, f.pushErr
}

func (f *fakeSyncService) Pull(_ context.Context, _, _ uuid.UUID, featureIDs []string) (model.PullResult, error) {
	f.lastFilter = featureIDs
	return f.pullOut, f.pullErr
}

func (f *fakeSyncService) ListConflicts(_ context.Context, _, _ uuid.UUID, featureIDs []string) ([]service.ConflictView, error) {
	f.lastFilter = featureIDs
	return f.listOut, nil
}

func (f *fakeSyncService) GetConflict(_ context.Context, _, _ uuid.UUID, _ uuid.UUID) (*service.ConflictView, error) {
	return f.getOut, f.getErr
}

func (f *fakeSyncService) Resolve(_ context.Context, _, _, _ uuid.UUID, _ string) (*model.SyncedDocument, error) {
	return f.resolveOut, f.resolveErr
}

func (f *fakeSyncService) History(_ context.Context, _, _, _ uuid.UUID) ([]model.DocumentVersion, error) {
	return f.historyOut, f.historyErr
}

func (f *fakeSyncService) Status(_ context.Context, _, _ uuid.UUID) (*model.SyncStatus, error) {
	return f.statusOut, f.statusErr
}

func (f *fakeSyncService) Activity(_ context.Context, _, _ uuid.UUID, limit, offset int) ([]model.SyncEvent, error) {
	f.lastLimit, f.lastOffset = limit, offset
	return f.events, nil
}
