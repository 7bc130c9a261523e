// drafts.go is the HTTP surface of the draft editor. Each signed-in user
// has one draft session; every call below operates on the caller's own.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/paperhub-api/internal/middleware"
	"github.com/Shimizu-Technology/paperhub-api/internal/models"
	"github.com/Shimizu-Technology/paperhub-api/internal/services/draft"
	"github.com/Shimizu-Technology/paperhub-api/internal/services/extraction"
)

// ParseDraft extracts an uploaded PDF and opens the result as a new draft.
// POST /api/v1/drafts/parse
//
// The extraction runs outside the session lock, so the caller can still
// read their current draft while a parse is in flight. A failed parse
// leaves the previous draft untouched.
func (h *Handler) ParseDraft(c *gin.Context) {
	var req models.ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.FileBase64) == "" {
		h.respondError(c, extraction.ErrNoInput, "parse paper")
		return
	}

	parsed, err := h.Gateway.ExtractBase64(c.Request.Context(), req.FileBase64, req.Filename)
	if err != nil {
		h.respondError(c, err, "parse paper")
		return
	}

	var view models.DraftView
	_ = h.Drafts.With(callerID(c), func(e *draft.Engine) error {
		e.LoadFromExtraction(parsed, req.Filename)
		view = e.View()
		return nil
	})
	c.JSON(http.StatusOK, view)
}

// OpenDraft loads one of the caller's papers for editing.
// POST /api/v1/drafts/open/:paperId
func (h *Handler) OpenDraft(c *gin.Context) {
	paper, err := h.Store.GetPaper(c.Request.Context(), c.Param("paperId"))
	if err != nil {
		h.respondError(c, err, "load paper")
		return
	}

	uid := callerID(c)
	var view models.DraftView
	err = h.Drafts.With(uid, func(e *draft.Engine) error {
		if err := e.LoadFromExisting(paper, uid); err != nil {
			return err
		}
		view = e.View()
		return nil
	})
	if err != nil {
		h.respondError(c, err, "open paper")
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetDraft returns the caller's current draft.
// GET /api/v1/drafts/current
func (h *Handler) GetDraft(c *gin.Context) {
	h.withDraft(c, func(e *draft.Engine) error { return nil })
}

// SelectQuestion moves the selection cursor.
// PUT /api/v1/drafts/current/selection
func (h *Handler) SelectQuestion(c *gin.Context) {
	var req models.SelectionRequest
	if !bindJSON(c, &req, "index is required") {
		return
	}
	h.withDraft(c, func(e *draft.Engine) error {
		return e.SelectQuestion(*req.Index)
	})
}

// UpdateDraftMetadata edits the paper header fields.
// PATCH /api/v1/drafts/current/metadata
func (h *Handler) UpdateDraftMetadata(c *gin.Context) {
	var req models.DraftMetadataRequest
	if !bindJSON(c, &req, "Invalid metadata") {
		return
	}
	h.withDraft(c, func(e *draft.Engine) error {
		return e.UpdateMetadata(req)
	})
}

// UpdateQuestionText replaces the text of question :q.
// PUT /api/v1/drafts/current/questions/:q/text
func (h *Handler) UpdateQuestionText(c *gin.Context) {
	qi, ok := indexParam(c, "q")
	if !ok {
		return
	}
	var req models.TextRequest
	if !bindJSON(c, &req, "text is required") {
		return
	}
	h.withDraft(c, func(e *draft.Engine) error {
		return e.UpdateQuestionText(qi, *req.Text)
	})
}

// UpdateSubQuestionText replaces the text of sub-question :s of question :q.
// PUT /api/v1/drafts/current/questions/:q/sub_questions/:s/text
func (h *Handler) UpdateSubQuestionText(c *gin.Context) {
	qi, ok := indexParam(c, "q")
	if !ok {
		return
	}
	si, ok := indexParam(c, "s")
	if !ok {
		return
	}
	var req models.TextRequest
	if !bindJSON(c, &req, "text is required") {
		return
	}
	h.withDraft(c, func(e *draft.Engine) error {
		return e.UpdateSubQuestionText(qi, si, *req.Text)
	})
}

// SaveDraft persists the draft as a draft or published paper.
// POST /api/v1/drafts/current/save
//
// 201 when a new paper was created, 200 when an existing one was updated.
func (h *Handler) SaveDraft(c *gin.Context) {
	var req models.SaveDraftRequest
	if !bindJSON(c, &req, "status is required (draft or published)") {
		return
	}

	ident := middleware.GetIdentity(c)
	var resp models.SaveDraftResponse
	err := h.Drafts.With(callerID(c), func(e *draft.Engine) error {
		doc, created, err := e.Save(c.Request.Context(), ident, req.Status)
		if err != nil {
			return err
		}
		resp = models.SaveDraftResponse{Paper: doc, Draft: e.View(), Created: created}
		return nil
	})
	if err != nil {
		h.respondError(c, err, "save paper")
		return
	}

	h.Log.Info().Str("paper_id", resp.Paper.ID).Str("status", string(resp.Paper.Status)).Bool("created", resp.Created).Msg("💾 Paper saved")
	code := http.StatusOK
	if resp.Created {
		code = http.StatusCreated
	}
	c.JSON(code, resp)
}

// DiscardDraft drops the caller's draft without saving.
// DELETE /api/v1/drafts/current
func (h *Handler) DiscardDraft(c *gin.Context) {
	h.Drafts.Discard(callerID(c))
	c.Status(http.StatusNoContent)
}

// withDraft runs fn on the caller's loaded draft and answers with the
// resulting view.
func (h *Handler) withDraft(c *gin.Context, fn func(*draft.Engine) error) {
	var view models.DraftView
	err := h.Drafts.With(callerID(c), func(e *draft.Engine) error {
		if !e.Loaded() {
			return draft.ErrNoDraft
		}
		if err := fn(e); err != nil {
			return err
		}
		view = e.View()
		return nil
	})
	if err != nil {
		h.respondError(c, err, "update draft")
		return
	}
	c.JSON(http.StatusOK, view)
}
