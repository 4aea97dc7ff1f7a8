// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Role is a project membership level. Comparison uses the numeric order,
// so minimum-role checks are plain >=.
type Role int

const (
	RoleView Role = iota + 1
	RoleEdit
	RoleAdmin
)

// ParseRole maps the wire representation to a Role. Unknown strings yield 0.
func ParseRole(s string) Role {
	switch s {
	case "VIEW":
		return RoleView
	case "EDIT":
		return RoleEdit
	case "ADMIN":
		return RoleAdmin
	}
	return 0
}

func (r Role) String() string {
	switch r {
	case RoleView:
		return "VIEW"
	case RoleEdit:
		return "EDIT"
	case RoleAdmin:
		return "ADMIN"
	}
	return "UNKNOWN"
}

// File types synchronized per feature.
const (
	FileTypeSpec  = "spec"
	FileTypePlan  = "plan"
	FileTypeTasks = "tasks"
)

// ValidFileType reports whether t is one of the synchronized file types.
func ValidFileType(t string) bool {
	return t == FileTypeSpec || t == FileTypePlan || t == FileTypeTasks
}

// SyncedDocument is one versioned markdown file, unique per
// (project, feature, file type). Version starts at 1 and strictly increases
// on every accepted write; Checksum is always the fingerprint of Content at
// that version.
type SyncedDocument struct {
	ID             uuid.UUID
	ProjectID      uuid.UUID
	FeatureID      string
	FeatureName    string
	FileType       string
	Content        string
	Checksum       string
	Version        int64
	LastModifiedBy uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// WriteRequest is a client change intent with optimistic concurrency base
// version. BaseVersion 0 means "I have never seen this document".
type WriteRequest struct {
	FeatureID   string
	FeatureName string
	FileType    string
	BaseVersion int64
	Content     string
}

// DocumentVersion is an immutable history row written alongside every
// accepted document write.
type DocumentVersion struct {
	ID         uuid.UUID
	DocumentID uuid.UUID
	Version    int64
	Content    string
	Checksum   string
	ModifiedBy uuid.UUID
	CreatedAt  time.Time
}

// Sync event types (append-only audit log).
const (
	EventPush             = "PUSH"
	EventPull             = "PULL"
	EventConflictDetected = "CONFLICT_DETECTED"
	EventConflictResolved = "CONFLICT_RESOLVED"
)

// SyncEvent records one coordinator invocation that changed or inspected
// state. Never updated or deleted.
type SyncEvent struct {
	ID               uuid.UUID
	ProjectID        uuid.UUID
	UserID           uuid.UUID
	EventType        string
	FeaturesAffected []string
	CreatedAt        time.Time
}

// SyncConflict is a divergence between a writer's content and the stored
// document. ResolvedAt is nil while the conflict is pending.
type SyncConflict struct {
	ID             uuid.UUID
	ProjectID      uuid.UUID
	DocumentID     uuid.UUID
	FeatureID      string
	FileType       string
	LocalContent   string
	LocalChecksum  string
	LocalBaseVer   int64
	RemoteContent  string
	RemoteChecksum string
	RemoteVersion  int64
	DetectedAt     time.Time
	ResolvedAt     *time.Time
	ResolvedBy     uuid.UUID
}

// Project is a shared cloud project. The owner is an implicit ADMIN and has
// no project_members row.
type Project struct {
	ID          uuid.UUID
	Name        string
	Description string
	OwnerID     uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProjectMember binds a user to a project with a role. Unique per
// (project, user).
type ProjectMember struct {
	ID         uuid.UUID
	ProjectID  uuid.UUID
	UserID     uuid.UUID
	Role       Role
	JoinedAt   time.Time
	LastSyncAt *time.Time
}

// MemberInfo is a membership row joined with directory info for display.
type MemberInfo struct {
	ProjectMember
	Username    string
	DisplayName string
}

// LinkCode is a single-use, time-boxed join code. Invalid once UsedAt is set
// or ExpiresAt passes.
type LinkCode struct {
	ID        uuid.UUID
	ProjectID uuid.UUID
	Code      string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// RedeemResult reports the outcome of a successful link code redemption.
type RedeemResult struct {
	Project       Project
	AlreadyMember bool
}

// User is an account in the user directory.
type User struct {
	ID          uuid.UUID
	Username    string
	DisplayName string
	PwdHash     []byte
	SaltAuth    []byte
	CreatedAt   time.Time
}

// Tokens collects issued access tokens.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time
}

// FeatureDocuments groups a feature's synchronized files for Pull responses.
type FeatureDocuments struct {
	FeatureID   string
	FeatureName string
	Files       []SyncedDocument
}

// PushResult summarizes one Push batch. Partial application is expected:
// AppliedCount counts clean writes, Conflicts lists identities that diverged,
// Errors lists per-identity store failures that did not abort the batch.
type PushResult struct {
	AppliedCount int
	Conflicts    []SyncConflict
	Errors       []string
}

// PullResult is the read-side snapshot of a project's documents plus the
// pending conflict summary.
type PullResult struct {
	Features      []FeatureDocuments
	HasConflicts  bool
	ConflictCount int
}

// ProjectStats aggregates counters for the status endpoint.
type ProjectStats struct {
	TotalDocuments   int
	TotalFeatures    int
	TotalMembers     int
	PendingConflicts int
}

// SyncStatus is the poll target for dashboard clients.
type SyncStatus struct {
	ProjectID     uuid.UUID
	ProjectName   string
	Role          Role
	LastSyncAt    *time.Time
	Stats         ProjectStats
	LastDocUpdate *time.Time
	LastSyncEvent *SyncEvent
}
