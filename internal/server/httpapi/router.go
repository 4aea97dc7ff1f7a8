package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/specboard/syncd/internal/service"
)

// Deps carries everything the router needs.
type Deps struct {
	Auth     service.AuthService
	Projects service.ProjectService
	Members  service.MemberService
	Links    service.LinkService
	Sync     service.SyncService
	SignKey  []byte
	Log      *zap.Logger
}

// NewRouter wires all endpoints. Everything under /api/v1 except register
// and login requires a Bearer token.
func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(d.Log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authH := NewAuthHandler(d.Auth)
	projectH := NewProjectHandler(d.Projects, d.Members, d.Links)
	syncH := NewSyncHandler(d.Sync)

	api := r.Group("/api/v1")

	api.POST("/auth/register", authH.Register)
	api.POST("/auth/login", authH.Login)

	authed := api.Group("", Auth(d.SignKey))

	projects := authed.Group("/cloud-projects")
	{
		projects.POST("", projectH.Create)
		projects.GET("", projectH.List)
		projects.GET("/:projectId", projectH.Get)
		projects.DELETE("/:projectId", projectH.Delete)

		projects.GET("/:projectId/members", projectH.ListMembers)
		projects.GET("/:projectId/members/:userId", projectH.GetMember)
		projects.PATCH("/:projectId/members/:userId", projectH.UpdateMemberRole)
		projects.DELETE("/:projectId/members/:userId", projectH.RemoveMember)

		projects.POST("/:projectId/links", projectH.CreateLink)
		projects.GET("/:projectId/links", projectH.ListLinks)
	}

	authed.POST("/links/:code/redeem", projectH.RedeemLink)

	sync := authed.Group("/sync/:projectId")
	{
		sync.POST("/push", syncH.Push)
		sync.GET("/features", syncH.Pull)
		sync.GET("/conflicts", syncH.ListConflicts)
		sync.GET("/conflicts/:conflictId", syncH.GetConflict)
		sync.POST("/conflicts/:conflictId/resolve", syncH.ResolveConflict)
		sync.GET("/status", syncH.Status)
		sync.GET("/activity", syncH.Activity)
		sync.GET("/documents/:documentId/versions", syncH.DocumentVersions)
	}

	return r
}
