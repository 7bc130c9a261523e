// Package router sets up all HTTP routes for the API.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Shimizu-Technology/paperhub-api/internal/handlers"
	"github.com/Shimizu-Technology/paperhub-api/internal/middleware"
)

// Setup creates and configures the Gin router with all routes.
func Setup(h *handlers.Handler, rateLimiter *middleware.RateLimiter, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(h.Config.AllowedOrigins))

	// --- Public Routes (no auth required) ---
	r.GET("/api/v1/health", h.HealthCheck)

	// API Documentation
	r.GET("/api/docs", h.ServeSwaggerUI)
	r.GET("/api/docs/openapi.yaml", h.ServeOpenAPISpec)
	r.GET("/api/docs/openapi.json", h.ServeOpenAPIJSON)

	// --- Auth Routes: public ---
	r.POST("/api/v1/auth/register", h.Register)
	r.POST("/api/v1/auth/login", h.Login)

	// --- JWT-protected routes ---
	api := r.Group("/api/v1")
	api.Use(middleware.JWTAuth(h.Store, h.Config.JWTSecret))
	{
		api.GET("/auth/me", h.GetMe)
		api.POST("/auth/refresh", h.RefreshToken)
		api.PUT("/auth/profile", h.UpdateProfile)

		// Extraction calls the model, so each one counts against the
		// caller's hourly budget
		limited := api.Group("")
		limited.Use(rateLimiter.RateLimit())
		{
			limited.POST("/extract", h.ExtractPaper)
			limited.POST("/extractions", h.CreateExtractionJob)
			limited.POST("/drafts/parse", h.ParseDraft)
		}
		api.GET("/extractions/:id", h.GetExtractionJob)
		api.POST("/extractions/:id/draft", h.DraftFromJob)

		// Draft editor
		api.POST("/drafts/open/:paperId", h.OpenDraft)
		api.GET("/drafts/current", h.GetDraft)
		api.DELETE("/drafts/current", h.DiscardDraft)
		api.PUT("/drafts/current/selection", h.SelectQuestion)
		api.PATCH("/drafts/current/metadata", h.UpdateDraftMetadata)
		api.PUT("/drafts/current/questions/:q/text", h.UpdateQuestionText)
		api.PUT("/drafts/current/questions/:q/sub_questions/:s/text", h.UpdateSubQuestionText)
		api.POST("/drafts/current/save", h.SaveDraft)

		// Papers (static segments must be registered alongside :id)
		api.GET("/papers/mine", h.ListMyPapers)
		api.GET("/papers/published", h.ListPublishedPapers)
		api.GET("/papers/search", h.SearchPapers)
		api.GET("/papers/:id", h.GetPaper)
		api.DELETE("/papers/:id", h.DeletePaper)
		api.GET("/papers/:id/workspace", h.PaperWorkspaceStatus)
		api.GET("/papers/:id/export", h.ExportPaper)

		// Workspace
		api.GET("/workspace", h.GetWorkspace)
		api.POST("/workspace", h.AdoptPaper)
		api.GET("/workspace/:id", h.GetAnswer)
		api.PUT("/workspace/:id", h.UpdateAnswer)
		api.DELETE("/workspace/:id", h.RemoveFromWorkspace)
		api.PUT("/workspace/:id/answers/:q", h.SetQuestionAnswer)
		api.PUT("/workspace/:id/answers/:q/sub_questions/:s", h.SetSubAnswer)

		// Universities: read for everyone, write for admins
		api.GET("/universities", h.ListUniversities)
		admin := api.Group("/universities")
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("", h.CreateUniversity)
			admin.PATCH("/:id", h.RenameUniversity)
			admin.DELETE("/:id", h.DeleteUniversity)
			admin.POST("/:id/courses", h.AddCourse)
			admin.DELETE("/:id/courses/:index", h.RemoveCourse)
		}

		// Live list updates (Server-Sent Events)
		api.GET("/live/:feed", h.StreamFeed)
	}

	return r
}
