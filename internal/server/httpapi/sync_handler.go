package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/specboard/syncd/internal/model"
	"github.com/specboard/syncd/internal/service"
)

type SyncHandler struct {
	sync service.SyncService
}

func NewSyncHandler(sync service.SyncService) *SyncHandler {
	return &SyncHandler{sync: sync}
}

type pushWrite struct {
	FeatureID   string `json:"featureId"`
	FeatureName string `json:"featureName"`
	FileType    string `json:"fileType"`
	BaseVersion int64  `json:"baseVersion"`
	Content     string `json:"content"`
}

type pushResponse struct {
	AppliedCount  int            `json:"appliedCount"`
	Conflicts     []conflictJSON `json:"conflicts"`
	Errors        []string       `json:"errors"`
	HasConflicts  bool           `json:"hasConflicts"`
	ConflictCount int            `json:"conflictCount"`
}

func (h *SyncHandler) Push(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	var docs []pushWrite
	if err := c.ShouldBindJSON(&docs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	writes := make([]model.WriteRequest, 0, len(docs))
	for _, w := range docs {
		writes = append(writes, model.WriteRequest{
			FeatureID:   w.FeatureID,
			FeatureName: w.FeatureName,
			FileType:    w.FileType,
			BaseVersion: w.BaseVersion,
			Content:     w.Content,
		})
	}
	res, err := h.sync.Push(c.Request.Context(), projectID, UserID(c), writes)
	if err != nil {
		writeError(c, err)
		return
	}
	conflicts := make([]conflictJSON, 0, len(res.Conflicts))
	for _, cf := range res.Conflicts {
		conflicts = append(conflicts, toConflictJSON(cf))
	}
	errsOut := res.Errors
	if errsOut == nil {
		errsOut = []string{}
	}
	c.JSON(http.StatusOK, pushResponse{
		AppliedCount:  res.AppliedCount,
		Conflicts:     conflicts,
		Errors:        errsOut,
		HasConflicts:  len(conflicts) > 0,
		ConflictCount: len(conflicts),
	})
}

// featureFilter reads the optional featureIds query parameter, a
// comma-separated list. An absent or empty parameter means no filter.
func featureFilter(c *gin.Context) []string {
	raw := strings.TrimSpace(c.Query("featureIds"))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

type pullResponse struct {
	Features      []featureJSON `json:"features"`
	HasConflicts  bool          `json:"hasConflicts"`
	ConflictCount int           `json:"conflictCount"`
}

func (h *SyncHandler) Pull(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	res, err := h.sync.Pull(c.Request.Context(), projectID, UserID(c), featureFilter(c))
	if err != nil {
		writeError(c, err)
		return
	}
	features := make([]featureJSON, 0, len(res.Features))
	for _, f := range res.Features {
		features = append(features, toFeatureJSON(f))
	}
	c.JSON(http.StatusOK, pullResponse{
		Features:      features,
		HasConflicts:  res.HasConflicts,
		ConflictCount: res.ConflictCount,
	})
}

func (h *SyncHandler) ListConflicts(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	views, err := h.sync.ListConflicts(c.Request.Context(), projectID, UserID(c), featureFilter(c))
	if err != nil {
		writeError(c, err)
		return
	}
	items := make([]conflictJSON, 0, len(views))
	for _, v := range views {
		items = append(items, toConflictViewJSON(v))
	}
	c.JSON(http.StatusOK, gin.H{"conflicts": items})
}

func (h *SyncHandler) GetConflict(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	conflictID, ok := pathUUID(c, "conflictId")
	if !ok {
		return
	}
	view, err := h.sync.GetConflict(c.Request.Context(), projectID, UserID(c), conflictID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toConflictViewJSON(*view))
}

type resolveRequest struct {
	Content string `json:"content"`
}

func (h *SyncHandler) ResolveConflict(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	conflictID, ok := pathUUID(c, "conflictId")
	if !ok {
		return
	}
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	doc, err := h.sync.Resolve(c.Request.Context(), projectID, UserID(c), conflictID, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDocumentJSON(*doc))
}

type statusResponse struct {
	ProjectID        string     `json:"projectId"`
	ProjectName      string     `json:"projectName"`
	Role             string     `json:"role"`
	LastSyncAt       *time.Time `json:"lastSyncAt,omitempty"`
	TotalDocuments   int        `json:"totalDocuments"`
	TotalFeatures    int        `json:"totalFeatures"`
	TotalMembers     int        `json:"totalMembers"`
	PendingConflicts int        `json:"pendingConflicts"`
	LastDocUpdate    *time.Time `json:"lastDocumentUpdate,omitempty"`
	LastSyncEvent    *eventJSON `json:"lastSyncEvent,omitempty"`
}

func (h *SyncHandler) Status(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	st, err := h.sync.Status(c.Request.Context(), projectID, UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	out := statusResponse{
		ProjectID:        st.ProjectID.String(),
		ProjectName:      st.ProjectName,
		Role:             st.Role.String(),
		LastSyncAt:       st.LastSyncAt,
		TotalDocuments:   st.Stats.TotalDocuments,
		TotalFeatures:    st.Stats.TotalFeatures,
		TotalMembers:     st.Stats.TotalMembers,
		PendingConflicts: st.Stats.PendingConflicts,
		LastDocUpdate:    st.LastDocUpdate,
	}
	if st.LastSyncEvent != nil {
		ev := toEventJSON(*st.LastSyncEvent)
		out.LastSyncEvent = &ev
	}
	c.JSON(http.StatusOK, out)
}

// maxActivityLimit caps the activity page size regardless of the query value.
const maxActivityLimit = 100

func (h *SyncHandler) Activity(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	limit := queryInt(c, "limit", 50)
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	offset := queryInt(c, "offset", 0)
	events, err := h.sync.Activity(c.Request.Context(), projectID, UserID(c), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	items := make([]eventJSON, 0, len(events))
	for _, e := range events {
		items = append(items, toEventJSON(e))
	}
	c.JSON(http.StatusOK, gin.H{"events": items})
}

func (h *SyncHandler) DocumentVersions(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	documentID, ok := pathUUID(c, "documentId")
	if !ok {
		return
	}
	versions, err := h.sync.History(c.Request.Context(), projectID, UserID(c), documentID)
	if err != nil {
		writeError(c, err)
		return
	}
	items := make([]versionJSON, 0, len(versions))
	for _, v := range versions {
		items = append(items, toVersionJSON(v))
	}
	c.JSON(http.StatusOK, gin.H{"versions": items})
}

func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
