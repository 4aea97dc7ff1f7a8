package httpapi

import (
	"time"

	"github.com/specboard/syncd/internal/model"
	"github.com/specboard/syncd/internal/service"
	"github.com/specboard/syncd/internal/textdiff"
)

type documentJSON struct {
	ID             string    `json:"id"`
	FeatureID      string    `json:"featureId"`
	FeatureName    string    `json:"featureName"`
	FileType       string    `json:"fileType"`
	Content        string    `json:"content"`
	Checksum       string    `json:"checksum"`
	Version        int64     `json:"version"`
	LastModifiedBy string    `json:"lastModifiedBy"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toDocumentJSON(d model.SyncedDocument) documentJSON {
	return documentJSON{
		ID:             d.ID.String(),
		FeatureID:      d.FeatureID,
		FeatureName:    d.FeatureName,
		FileType:       d.FileType,
		Content:        d.Content,
		Checksum:       d.Checksum,
		Version:        d.Version,
		LastModifiedBy: d.LastModifiedBy.String(),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type conflictJSON struct {
	ID             string           `json:"id"`
	DocumentID     string           `json:"documentId"`
	FeatureID      string           `json:"featureId"`
	FileType       string           `json:"fileType"`
	LocalContent   string           `json:"localContent"`
	LocalChecksum  string           `json:"localChecksum"`
	LocalBaseVer   int64            `json:"localBaseVersion"`
	RemoteContent  string           `json:"remoteContent"`
	RemoteChecksum string           `json:"remoteChecksum"`
	RemoteVersion  int64            `json:"remoteVersion"`
	DetectedAt     time.Time        `json:"detectedAt"`
	Diff           *textdiff.Result `json:"diff,omitempty"`
	Summary        string           `json:"summary,omitempty"`
}

func toConflictJSON(c model.SyncConflict) conflictJSON {
	return conflictJSON{
		ID:             c.ID.String(),
		DocumentID:     c.DocumentID.String(),
		FeatureID:      c.FeatureID,
		FileType:       c.FileType,
		LocalContent:   c.LocalContent,
		LocalChecksum:  c.LocalChecksum,
		LocalBaseVer:   c.LocalBaseVer,
		RemoteContent:  c.RemoteContent,
		RemoteChecksum: c.RemoteChecksum,
		RemoteVersion:  c.RemoteVersion,
		DetectedAt:     c.DetectedAt,
	}
}

func toConflictViewJSON(v service.ConflictView) conflictJSON {
	out := toConflictJSON(v.Conflict)
	diff := v.Diff
	out.Diff = &diff
	out.Summary = v.Summary
	return out
}

type featureJSON struct {
	FeatureID   string         `json:"featureId"`
	FeatureName string         `json:"featureName"`
	Files       []documentJSON `json:"files"`
}

func toFeatureJSON(f model.FeatureDocuments) featureJSON {
	files := make([]documentJSON, 0, len(f.Files))
	for _, d := range f.Files {
		files = append(files, toDocumentJSON(d))
	}
	return featureJSON{FeatureID: f.FeatureID, FeatureName: f.FeatureName, Files: files}
}

type projectJSON struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toProjectJSON(p model.Project) projectJSON {
	return projectJSON{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.OwnerID.String(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type memberJSON struct {
	UserID      string     `json:"userId"`
	Username    string     `json:"username"`
	DisplayName string     `json:"displayName"`
	Role        string     `json:"role"`
	JoinedAt    time.Time  `json:"joinedAt"`
	LastSyncAt  *time.Time `json:"lastSyncAt,omitempty"`
}

func toMemberJSON(m model.MemberInfo) memberJSON {
	return memberJSON{
		UserID:      m.UserID.String(),
		Username:    m.Username,
		DisplayName: m.DisplayName,
		Role:        m.Role.String(),
		JoinedAt:    m.JoinedAt,
		LastSyncAt:  m.LastSyncAt,
	}
}

type linkCodeJSON struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func toLinkCodeJSON(lc model.LinkCode) linkCodeJSON {
	return linkCodeJSON{Code: lc.Code, ExpiresAt: lc.ExpiresAt, CreatedAt: lc.CreatedAt}
}

type eventJSON struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	EventType        string    `json:"eventType"`
	FeaturesAffected []string  `json:"featuresAffected"`
	CreatedAt        time.Time `json:"createdAt"`
}

func toEventJSON(e model.SyncEvent) eventJSON {
	return eventJSON{
		ID:               e.ID.String(),
		UserID:           e.UserID.String(),
		EventType:        e.EventType,
		FeaturesAffected: e.FeaturesAffected,
		CreatedAt:        e.CreatedAt,
	}
}

type versionJSON struct {
	Version    int64     `json:"version"`
	Content    string    `json:"content"`
	Checksum   string    `json:"checksum"`
	ModifiedBy string    `json:"modifiedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toVersionJSON(v model.DocumentVersion) versionJSON {
	return versionJSON{
		Version:    v.Version,
		Content:    v.Content,
		Checksum:   v.Checksum,
		ModifiedBy: v.ModifiedBy.String(),
		CreatedAt:  v.CreatedAt,
	}
}
