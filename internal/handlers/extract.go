// extract.go exposes the Extraction Gateway: the stateless extract call
// and the asynchronous extraction jobs.
//
// POST /api/v1/extract                PDF in, ParsedPaper out (synchronous)
// POST /api/v1/extractions            queue an extraction job
// GET  /api/v1/extractions/:id        poll a job
// POST /api/v1/extractions/:id/draft  load a finished job into the draft
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/paperhub-api/internal/apperrors"
	"github.com/Shimizu-Technology/paperhub-api/internal/models"
	"github.com/Shimizu-Technology/paperhub-api/internal/services/draft"
	"github.com/Shimizu-Technology/paperhub-api/internal/services/extraction"
)

// ExtractPaper runs one extraction and returns the ParsedPaper as is.
// POST /api/v1/extract
//
// Errors use the bare { "error": "..." } body: 400 for input problems,
// 500 for extraction failures.
func (h *Handler) ExtractPaper(c *gin.Context) {
	var req models.ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.FileBase64) == "" {
		c.JSON(http.StatusBadRequest, models.ExtractErrorResponse{Error: extraction.ErrNoInput.Error()})
		return
	}

	paper, err := h.Gateway.ExtractBase64(c.Request.Context(), req.FileBase64, req.Filename)
	if err != nil {
		var failure *extraction.Failure
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, models.ExtractErrorResponse{Error: err.Error()})
		case errors.As(err, &failure):
			h.Log.Warn().Str("kind", string(failure.Kind)).Str("reason", failure.Reason).Msg("⚠️ Extraction failed")
			c.JSON(http.StatusInternalServerError, models.ExtractErrorResponse{Error: failure.Error()})
		default:
			h.Log.Error().Err(err).Msg("❌ Extraction aborted")
			c.JSON(http.StatusInternalServerError, models.ExtractErrorResponse{Error: "Generation failed: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, paper)
}

// CreateExtractionJob validates the PDF and queues it for the worker pool.
// POST /api/v1/extractions
//
// Returns 202 Accepted immediately with the pending job.
// Go Pattern: The input checks run here, synchronously, so a bad upload is
// a 400 now rather than a failed job a minute later.
func (h *Handler) CreateExtractionJob(c *gin.Context) {
	var req models.ExtractRequest
	if !bindJSON(c, &req, "fileBase64 is required") {
		return
	}

	data, err := extraction.DecodeBase64(req.FileBase64)
	if err != nil {
		h.respondError(c, err, "queue extraction")
		return
	}
	pages, err := h.Gateway.Check(data)
	if err != nil {
		h.respondError(c, err, "queue extraction")
		return
	}

	job, err := h.Worker.Enqueue(c.Request.Context(), callerID(c), req.Filename, data, pages)
	if err != nil {
		h.respondError(c, err, "queue extraction")
		return
	}

	c.JSON(http.StatusAccepted, job)
}

// GetExtractionJob returns a job owned by the caller.
// GET /api/v1/extractions/:id
func (h *Handler) GetExtractionJob(c *gin.Context) {
	job, err := h.ownedJob(c)
	if err != nil {
		h.respondError(c, err, "load extraction job")
		return
	}
	c.JSON(http.StatusOK, job)
}

// DraftFromJob loads a completed job's result into the caller's draft,
// replacing whatever draft was open.
// POST /api/v1/extractions/:id/draft
func (h *Handler) DraftFromJob(c *gin.Context) {
	job, err := h.ownedJob(c)
	if err != nil {
		h.respondError(c, err, "load extraction job")
		return
	}
	if job.Status != models.JobCompleted || job.Result == nil {
		writeError(c, http.StatusConflict, "not_ready", "Extraction job is not complete (status: "+string(job.Status)+")")
		return
	}

	var view models.DraftView
	_ = h.Drafts.With(callerID(c), func(e *draft.Engine) error {
		e.LoadFromExtraction(job.Result, job.Filename)
		view = e.View()
		return nil
	})
	c.JSON(http.StatusOK, view)
}

func (h *Handler) ownedJob(c *gin.Context) (*models.ExtractionJob, error) {
	job, err := h.Store.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		return nil, err
	}
	if job.OwnerUID != callerID(c) {
		return nil, apperrors.NewForbiddenError("You can only view your own extraction jobs.")
	}
	return job, nil
}
