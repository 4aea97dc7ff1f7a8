package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"

	"github.com/specboard/syncd/internal/model"
	"github.com/specboard/syncd/internal/service"
)

type ProjectHandler struct {
	projects service.ProjectService
	members  service.MemberService
	links    service.LinkService
}

func NewProjectHandler(projects service.ProjectService, members service.MemberService, links service.LinkService) *ProjectHandler {
	return &ProjectHandler{projects: projects, members: members, links: links}
}

// pathUUID parses a uuid path parameter; an unparseable value behaves like a
// missing resource.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.FromString(c.Param(name))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return uuid.Nil, false
	}
	return id, true
}

type createProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	p, err := h.projects.Create(c.Request.Context(), UserID(c), req.Name, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProjectJSON(*p))
}

func (h *ProjectHandler) List(c *gin.Context) {
	out, err := h.projects.List(c.Request.Context(), UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	items := make([]projectJSON, 0, len(out))
	for _, p := range out {
		items = append(items, toProjectJSON(p))
	}
	c.JSON(http.StatusOK, gin.H{"projects": items})
}

func (h *ProjectHandler) Get(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	p, err := h.projects.Get(c.Request.Context(), projectID, UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProjectJSON(*p))
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	if err := h.projects.Delete(c.Request.Context(), projectID, UserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProjectHandler) ListMembers(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	out, err := h.members.List(c.Request.Context(), projectID, UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	items := make([]memberJSON, 0, len(out))
	for _, m := range out {
		items = append(items, toMemberJSON(m))
	}
	c.JSON(http.StatusOK, gin.H{"members": items})
}

func (h *ProjectHandler) GetMember(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	targetID, ok := pathUUID(c, "userId")
	if !ok {
		return
	}
	m, err := h.members.Get(c.Request.Context(), projectID, UserID(c), targetID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMemberJSON(*m))
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *ProjectHandler) UpdateMemberRole(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	targetID, ok := pathUUID(c, "userId")
	if !ok {
		return
	}
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	role := model.ParseRole(req.Role)
	if err := h.members.UpdateRole(c.Request.Context(), projectID, UserID(c), targetID, role); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	targetID, ok := pathUUID(c, "userId")
	if !ok {
		return
	}
	if err := h.members.Remove(c.Request.Context(), projectID, UserID(c), targetID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type createLinkRequest struct {
	ExpiresInHours int `json:"expiresInHours"`
}

func (h *ProjectHandler) CreateLink(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	var req createLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	lc, err := h.links.Generate(c.Request.Context(), projectID, UserID(c), req.ExpiresInHours)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toLinkCodeJSON(*lc))
}

func (h *ProjectHandler) ListLinks(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	out, err := h.links.ListActive(c.Request.Context(), projectID, UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	items := make([]linkCodeJSON, 0, len(out))
	for _, lc := range out {
		items = append(items, toLinkCodeJSON(lc))
	}
	c.JSON(http.StatusOK, gin.H{"links": items})
}

type redeemResponse struct {
	Project       projectJSON `json:"project"`
	AlreadyMember bool        `json:"alreadyMember"`
}

func (h *ProjectHandler) RedeemLink(c *gin.Context) {
	res, err := h.links.Redeem(c.Request.Context(), c.Param("code"), UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, redeemResponse{
		Project:       toProjectJSON(res.Project),
		AlreadyMember: res.AlreadyMember,
	})
}
