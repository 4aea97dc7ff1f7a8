package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/specboard/syncd/internal/conflict"
	"github.com/specboard/syncd/internal/errs"
	"github.com/specboard/syncd/internal/model"
	"github.com/specboard/syncd/internal/repository"
	"github.com/specboard/syncd/internal/textdiff"
)

// ConflictView is a pending conflict together with the structured diff
// between the stored content and the writer's content.
type ConflictView struct {
	Conflict model.SyncConflict
	Diff     textdiff.Result
	Summary  string
}

// SyncService coordinates document pushes, pulls, and conflict resolution.
type SyncService interface {
	// Push applies a batch of writes. Each document is classified and applied
	// independently; one failing write never aborts the rest of the batch.
	Push(ctx context.Context, projectID, userID uuid.UUID, writes []model.WriteRequest) (model.PushResult, error)
	// Pull returns the project's documents grouped by feature plus the
	// pending conflict summary.
	Pull(ctx context.Context, projectID, userID uuid.UUID, featureIDs []string) (model.PullResult, error)
	// ListConflicts returns pending conflicts with diffs.
	ListConflicts(ctx context.Context, projectID, userID uuid.UUID, featureIDs []string) ([]ConflictView, error)
	// GetConflict returns one conflict with its diff.
	GetConflict(ctx context.Context, projectID, userID uuid.UUID, conflictID uuid.UUID) (*ConflictView, error)
	// Resolve applies the chosen content as the next version and closes the
	// conflict.
	Resolve(ctx context.Context, projectID, userID, conflictID uuid.UUID, content string) (*model.SyncedDocument, error)
	// History returns the version rows of one document, newest first.
	History(ctx context.Context, projectID, userID, documentID uuid.UUID) ([]model.DocumentVersion, error)
	// Status aggregates counters and the caller's last sync activity.
	Status(ctx context.Context, projectID, userID uuid.UUID) (*model.SyncStatus, error)
	// Activity returns the project's event log, newest first.
	Activity(ctx context.Context, projectID, userID uuid.UUID, limit, offset int) ([]model.SyncEvent, error)
}

type SyncServiceImpl struct {
	access    AccessService
	docs      repository.DocumentRepository
	conflicts repository.ConflictRepository
	events    repository.EventRepository
	members   repository.MemberRepository
	projects  repository.ProjectRepository
	maxBatch  int
	log       *zap.Logger
}

// NewSyncService constructs the coordinator. maxBatch caps one Push call;
// values <= 0 fall back to 100.
func NewSyncService(
	access AccessService,
	docs repository.DocumentRepository,
	conflicts repository.ConflictRepository,
	events repository.EventRepository,
	members repository.MemberRepository,
	projects repository.ProjectRepository,
	maxBatch int,
	log *zap.Logger,
) *SyncServiceImpl {
	if maxBatch <= 0 {
		maxBatch = 100
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SyncServiceImpl{
		access: access, docs: docs, conflicts: conflicts,
		events: events, members: members, projects: projects,
		maxBatch: maxBatch, log: log,
	}
}

func validateWrite(i int, w model.WriteRequest) error {
	if w.FeatureID == "" {
		return fmt.Errorf("%w: document[%d] empty feature id", errs.ErrValidation, i)
	}
	if !model.ValidFileType(w.FileType) {
		return fmt.Errorf("%w: document[%d] unknown file type %q", errs.ErrValidation, i, w.FileType)
	}
	if w.BaseVersion < 0 {
		return fmt.Errorf("%w: document[%d] negative base version", errs.ErrValidation, i)
	}
	return nil
}

// Push authorizes at EDIT, applies each write independently, records one
// event for the batch, and touches the caller's last sync time.
func (s *SyncServiceImpl) Push(ctx context.Context, projectID, userID uuid.UUID, writes []model.WriteRequest) (model.PushResult, error) {
	if _, err := s.access.Authorize(ctx, projectID, userID, model.RoleEdit); err != nil {
		return model.PushResult{}, err
	}
	if len(writes) == 0 {
		return model.PushResult{}, fmt.Errorf("%w: empty document batch", errs.ErrValidation)
	}
	if len(writes) > s.maxBatch {
		return model.PushResult{}, fmt.Errorf("%w: batch too large (%d > %d)", errs.ErrValidation, len(writes), s.maxBatch)
	}
	for i := range writes {
		if err := validateWrite(i, writes[i]); err != nil {
			return model.PushResult{}, err
		}
	}

	var res model.PushResult
	affected := map[string]bool{}
	for i := range writes {
		w := writes[i]
		applied, err := s.docs.Apply(ctx, projectID, userID, w)
		if err != nil {
			s.log.Warn("push write failed",
				zap.String("feature_id", w.FeatureID),
				zap.String("file_type", w.FileType),
				zap.Error(err))
			res.Errors = append(res.Errors, fmt.Sprintf("%s/%s: %v", w.FeatureID, w.FileType, err))
			continue
		}
		switch applied.Outcome {
		case conflict.Clean:
			res.AppliedCount++
			affected[w.FeatureID] = true
		case conflict.Conflict:
			res.Conflicts = append(res.Conflicts, *applied.Conflict)
			affected[w.FeatureID] = true
		case conflict.NoOp:
			// idempotent repeat, nothing to record
		}
	}

	if evType := pushEventType(res); evType != "" {
		s.recordEvent(ctx, projectID, userID, evType, keysSorted(affected))
	}
	if err := s.members.TouchLastSync(ctx, projectID, userID); err != nil {
		s.log.Warn("touch last sync failed", zap.Error(err))
	}
	return res, nil
}

// pushEventType picks the audit event for a batch: any conflict wins over
// applied writes, an all-noop batch records nothing.
func pushEventType(res model.PushResult) string {
	if len(res.Conflicts) > 0 {
		return model.EventConflictDetected
	}
	if res.AppliedCount > 0 {
		return model.EventPush
	}
	return ""
}

// Pull authorizes at VIEW and returns documents grouped by feature in the
// order features were first created.
func (s *SyncServiceImpl) Pull(ctx context.Context, projectID, userID uuid.UUID, featureIDs []string) (model.PullResult, error) {
	if _, err := s.access.Authorize(ctx, projectID, userID, model.RoleView); err != nil {
		return model.PullResult{}, err
	}
	docs, err := s.docs.ListByProject(ctx, projectID, featureIDs)
	if err != nil {
		return model.PullResult{}, err
	}

	var features []model.FeatureDocuments
	index := map[string]int{}
	for _, d := range docs {
		i, ok := index[d.FeatureID]
		if !ok {
			i = len(features)
			index[d.FeatureID] = i
			features = append(features, model.FeatureDocuments{
				FeatureID:   d.FeatureID,
				FeatureName: d.FeatureName,
			})
		}
		features[i].Files = append(features[i].Files, d)
	}

	pending, err := s.conflicts.CountPending(ctx, projectID, featureIDs)
	if err != nil {
		return model.PullResult{}, err
	}

	s.recordEvent(ctx, projectID, userID, model.EventPull, featureKeys(features))
	if err := s.members.TouchLastSync(ctx, projectID, userID); err != nil {
		s.log.Warn("touch last sync failed", zap.Error(err))
	}
	return model.PullResult{
		Features:      features,
		HasConflicts:  pending > 0,
		ConflictCount: pending,
	}, nil
}

// ListConflicts authorizes at VIEW and attaches a diff to each pending
// conflict, remote (stored) side as the base.
func (s *SyncServiceImpl) ListConflicts(ctx context.Context, projectID, userID uuid.UUID, featureIDs []string) ([]ConflictView, error) {
	if _, err := s.access.Authorize(ctx, projectID, userID, model.RoleView); err != nil {
		return nil, err
	}
	pending, err := s.conflicts.ListPending(ctx, projectID, featureIDs)
	if err != nil {
		return nil, err
	}
	out := make([]ConflictView, 0, len(pending))
	for _, c := range pending {
		out = append(out, newConflictView(c))
	}
	return out, nil
}

// GetConflict authorizes at VIEW and returns one conflict with its diff.
func (s *SyncServiceImpl) GetConflict(ctx context.Context, projectID, userID uuid.UUID, conflictID uuid.UUID) (*ConflictView, error) {
	if _, err := s.access.Authorize(ctx, projectID, userID, model.RoleView); err != nil {
		return nil, err
	}
	c, err := s.conflicts.Get(ctx, conflictID)
	if err != nil {
		return nil, err
	}
	if c.ProjectID != projectID {
		return nil, errs.ErrNotFound
	}
	v := newConflictView(*c)
	return &v, nil
}

func newConflictView(c model.SyncConflict) ConflictView {
	d := textdiff.Diff(c.RemoteContent, c.LocalContent)
	return ConflictView{Conflict: c, Diff: d, Summary: textdiff.Summarize(d)}
}

// Resolve authorizes at EDIT, verifies the conflict belongs to the project,
// and applies the chosen content as the next version.
func (s *SyncServiceImpl) Resolve(ctx context.Context, projectID, userID, conflictID uuid.UUID, content string) (*model.SyncedDocument, error) {
	if _, err := s.access.Authorize(ctx, projectID, userID, model.RoleEdit); err != nil {
		return nil, err
	}
	c, err := s.conflicts.Get(ctx, conflictID)
	if err != nil {
		return nil, err
	}
	if c.ProjectID != projectID {
		return nil, errs.ErrNotFound
	}
	doc, rec, err := s.conflicts.Resolve(ctx, conflictID, userID, content)
	if err != nil {
		return nil, err
	}
	s.recordEvent(ctx, projectID, userID, model.EventConflictResolved, []string{rec.FeatureID})
	return doc, nil
}

// History authorizes at VIEW and checks the document belongs to the project
// before exposing version rows.
func (s *SyncServiceImpl) History(ctx context.Context, projectID, userID, documentID uuid.UUID) ([]model.DocumentVersion, error) {
	if _, err := s.access.Authorize(ctx, projectID, userID, model.RoleView); err != nil {
		return nil, err
	}
	if _, err := s.docs.Get(ctx, projectID, documentID); err != nil {
		return nil, err
	}
	return s.docs.ListVersions(ctx, documentID)
}

// Status authorizes at VIEW and aggregates counters for dashboard polling.
func (s *SyncServiceImpl) Status(ctx context.Context, projectID, userID uuid.UUID) (*model.SyncStatus, error) {
	role, err := s.access.Authorize(ctx, projectID, userID, model.RoleView)
	if err != nil {
		return nil, err
	}
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	docs, features, lastDoc, err := s.docs.Stats(ctx, projectID)
	if err != nil {
		return nil, err
	}
	pending, err := s.conflicts.CountPending(ctx, projectID, nil)
	if err != nil {
		return nil, err
	}
	memberRows, err := s.members.Count(ctx, projectID)
	if err != nil {
		return nil, err
	}

	st := &model.SyncStatus{
		ProjectID:   projectID,
		ProjectName: p.Name,
		Role:        role,
		Stats: model.ProjectStats{
			TotalDocuments:   docs,
			TotalFeatures:    features,
			TotalMembers:     memberRows + 1, // owner has no membership row
			PendingConflicts: pending,
		},
		LastDocUpdate: lastDoc,
	}
	if m, err := s.members.Get(ctx, projectID, userID); err == nil {
		st.LastSyncAt = m.LastSyncAt
	}
	if ev, err := s.events.Latest(ctx, projectID, userID); err == nil {
		st.LastSyncEvent = ev
	}
	return st, nil
}

// Activity authorizes at VIEW and pages through the event log.
func (s *SyncServiceImpl) Activity(ctx context.Context, projectID, userID uuid.UUID, limit, offset int) ([]model.SyncEvent, error) {
	if _, err := s.access.Authorize(ctx, projectID, userID, model.RoleView); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	return s.events.ListByProject(ctx, projectID, limit, offset)
}

// recordEvent appends to the audit log. Logging must not fail the sync, so
// errors are reported and dropped.
func (s *SyncServiceImpl) recordEvent(ctx context.Context, projectID, userID uuid.UUID, evType string, features []string) {
	e := &model.SyncEvent{
		ProjectID:        projectID,
		UserID:           userID,
		EventType:        evType,
		FeaturesAffected: features,
	}
	if err := s.events.Insert(ctx, e); err != nil {
		s.log.Warn("record sync event failed",
			zap.String("event_type", evType),
			zap.Error(err))
	}
}

func keysSorted(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func featureKeys(features []model.FeatureDocuments) []string {
	out := make([]string, 0, len(features))
	for _, f := range features {
		out = append(out, f.FeatureID)
	}
	return out
}

var _ SyncService = (*SyncServiceImpl)(nil)
