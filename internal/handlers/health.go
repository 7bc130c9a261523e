// Package handlers contains HTTP handler functions for the API.
//
// Go Pattern: Handlers in Gin receive a *gin.Context which provides:
// - Request data (params, query, body, headers)
// - Response methods (JSON, String, Status)
// - Middleware data (c.Get/c.Set)
//
// Handlers stay thin: they bind the request, call one service and map the
// result (or error) to a response. Business rules live in internal/services.
package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Shimizu-Technology/paperhub-api/internal/config"
	"github.com/Shimizu-Technology/paperhub-api/internal/live"
	"github.com/Shimizu-Technology/paperhub-api/internal/models"
	"github.com/Shimizu-Technology/paperhub-api/internal/services/draft"
	"github.com/Shimizu-Technology/paperhub-api/internal/services/extraction"
	"github.com/Shimizu-Technology/paperhub-api/internal/services/worker"
	"github.com/Shimizu-Technology/paperhub-api/internal/services/workspace"
	"github.com/Shimizu-Technology/paperhub-api/internal/store"
)

// Version is reported by the health check.
const Version = "1.0.0"

// Handler holds shared dependencies for all HTTP handlers.
// Go Pattern: Dependency injection via struct fields. Instead of global
// variables or service locators, we pass dependencies explicitly.
// This makes testing easy: build a Handler around the memory store and a
// fake extraction backend.
type Handler struct {
	Store     store.Store
	Gateway   *extraction.Gateway
	Drafts    *draft.Sessions
	Workspace *workspace.Service
	Worker    *worker.Pool
	Hub       live.Hub
	Config    *config.Config
	Log       zerolog.Logger

	// Heartbeat is the keep-alive interval of the live feeds.
	Heartbeat time.Duration

	closing   chan struct{}
	closeOnce sync.Once
}

// NewHandler creates a new handler with all dependencies.
func NewHandler(s store.Store, gw *extraction.Gateway, drafts *draft.Sessions, ws *workspace.Service, wp *worker.Pool, hub live.Hub, cfg *config.Config, log zerolog.Logger) *Handler {
	return &Handler{
		Store:     s,
		Gateway:   gw,
		Drafts:    drafts,
		Workspace: ws,
		Worker:    wp,
		Hub:       hub,
		Config:    cfg,
		Log:       log,
		Heartbeat: 25 * time.Second,
		closing:   make(chan struct{}),
	}
}

// CloseStreams ends every open live feed. http.Server.Shutdown waits for
// active requests, and an event stream never finishes on its own.
func (h *Handler) CloseStreams() {
	h.closeOnce.Do(func() { close(h.closing) })
}

// HealthCheck returns the API health status.
// GET /api/v1/health
func (h *Handler) HealthCheck(c *gin.Context) {
	// Check store connectivity
	dbStatus := "healthy"
	status := "ok"
	if err := h.Store.HealthCheck(c.Request.Context()); err != nil {
		dbStatus = "unhealthy: " + err.Error()
		status = "degraded"
	}

	c.JSON(http.StatusOK, models.HealthResponse{
		Status:   status,
		Version:  Version,
		Store:    h.Config.StoreBackend,
		Database: dbStatus,
		Provider: h.Gateway.Provider(),
		Workers:  h.Worker.WorkerCount(),
		Queue:    h.Worker.QueueSize(),
	})
}
