package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/paperhub-api/internal/apperrors"
	"github.com/Shimizu-Technology/paperhub-api/internal/models"
	"github.com/Shimizu-Technology/paperhub-api/internal/store"
)

// ListMyPapers returns the caller's papers, drafts included, newest first.
// GET /api/v1/papers/mine
func (h *Handler) ListMyPapers(c *gin.Context) {
	papers, err := h.Store.ListPapersByOwner(c.Request.Context(), callerID(c))
	if err != nil {
		h.respondError(c, err, "load papers")
		return
	}
	c.JSON(http.StatusOK, models.NewListResponse(papers))
}

// ListPublishedPapers returns the latest published papers.
// GET /api/v1/papers/published?limit=100
func (h *Handler) ListPublishedPapers(c *gin.Context) {
	limit := store.NormalizeLimit(limitQuery(c), store.DefaultPublishedLimit)
	papers, err := h.Store.ListPublishedPapers(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err, "load papers")
		return
	}
	c.JSON(http.StatusOK, models.NewListResponse(papers))
}

// SearchPapers finds published papers by course code, course name or
// university name prefix. An empty term lists the latest papers.
// GET /api/v1/papers/search?q=math&limit=12
func (h *Handler) SearchPapers(c *gin.Context) {
	limit := store.NormalizeLimit(limitQuery(c), store.DefaultSearchLimit)
	papers, err := h.Store.SearchPublishedPapers(c.Request.Context(), strings.TrimSpace(c.Query("q")), limit)
	if err != nil {
		h.respondError(c, err, "search papers")
		return
	}
	c.JSON(http.StatusOK, models.NewListResponse(papers))
}

// GetPaper returns a published paper or one of the caller's drafts.
// GET /api/v1/papers/:id
func (h *Handler) GetPaper(c *gin.Context) {
	paper, err := h.visiblePaper(c)
	if err != nil {
		h.respondError(c, err, "load paper")
		return
	}
	c.JSON(http.StatusOK, paper)
}

// DeletePaper removes one of the caller's papers. AnswerDocs adopted from
// it survive and keep their snapshot.
// DELETE /api/v1/papers/:id
func (h *Handler) DeletePaper(c *gin.Context) {
	ctx := c.Request.Context()
	paper, err := h.Store.GetPaper(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err, "delete paper")
		return
	}
	if paper.OwnerUID != callerID(c) {
		h.respondError(c, apperrors.NewForbiddenError("Only the owner can delete this paper."), "delete paper")
		return
	}

	if err := h.Store.DeletePaper(ctx, paper.ID); err != nil {
		h.respondError(c, err, "delete paper")
		return
	}
	h.Log.Info().Str("paper_id", paper.ID).Msg("🗑️ Paper deleted")
	c.Status(http.StatusNoContent)
}

// PaperWorkspaceStatus tells whether the caller already adopted the paper.
// GET /api/v1/papers/:id/workspace
func (h *Handler) PaperWorkspaceStatus(c *gin.Context) {
	status, err := h.Workspace.Status(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "check workspace")
		return
	}
	c.JSON(http.StatusOK, status)
}

// visiblePaper loads :id and hides other users' drafts behind a 404.
func (h *Handler) visiblePaper(c *gin.Context) (*models.PaperDoc, error) {
	paper, err := h.Store.GetPaper(c.Request.Context(), c.Param("id"))
	if err != nil {
		return nil, err
	}
	if !paper.VisibleTo(callerID(c)) {
		return nil, apperrors.NewNotFoundError("paper not found")
	}
	return paper, nil
}
