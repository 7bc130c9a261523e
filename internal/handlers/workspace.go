// workspace.go handles the answer workspace: adopting published papers
// and filling in the answers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/paperhub-api/internal/middleware"
	"github.com/Shimizu-Technology/paperhub-api/internal/models"
)

// GetWorkspace returns the caller's AnswerDocs, newest first.
// GET /api/v1/workspace
func (h *Handler) GetWorkspace(c *gin.Context) {
	docs, err := h.Workspace.List(c.Request.Context(), callerID(c))
	if err != nil {
		h.respondError(c, err, "load workspace")
		return
	}
	c.JSON(http.StatusOK, models.NewListResponse(docs))
}

// AdoptPaper adds a published paper to the caller's workspace.
// POST /api/v1/workspace
//
// Adopting the same paper again returns the existing AnswerDoc with 200
// and created=false instead of making a second copy.
func (h *Handler) AdoptPaper(c *gin.Context) {
	var req models.AdoptRequest
	if !bindJSON(c, &req, "paperId is required") {
		return
	}

	doc, created, err := h.Workspace.Adopt(c.Request.Context(), middleware.GetIdentity(c), req.PaperID)
	if err != nil {
		h.respondError(c, err, "add paper to workspace")
		return
	}

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	c.JSON(code, models.AdoptResponse{Answer: doc, Created: created})
}

// GetAnswer returns an AnswerDoc with its source paper (null once the
// paper has been deleted).
// GET /api/v1/workspace/:id
func (h *Handler) GetAnswer(c *gin.Context) {
	doc, paper, err := h.Workspace.Get(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "load answers")
		return
	}
	c.JSON(http.StatusOK, models.AnswerDetailResponse{Answer: doc, Paper: paper})
}

// UpdateAnswer replaces the answers and/or title.
// PUT /api/v1/workspace/:id
func (h *Handler) UpdateAnswer(c *gin.Context) {
	var req models.AnswerUpdateRequest
	if !bindJSON(c, &req, "Invalid answers") {
		return
	}

	doc, err := h.Workspace.Update(c.Request.Context(), callerID(c), c.Param("id"), req.Answers, req.Title)
	if err != nil {
		h.respondError(c, err, "save answers")
		return
	}
	c.JSON(http.StatusOK, doc)
}

// SetQuestionAnswer sets the answer of question :q.
// PUT /api/v1/workspace/:id/answers/:q
func (h *Handler) SetQuestionAnswer(c *gin.Context) {
	qi, ok := indexParam(c, "q")
	if !ok {
		return
	}
	var req models.AnswerTextRequest
	if !bindJSON(c, &req, "answer is required") {
		return
	}

	doc, err := h.Workspace.SetQuestionAnswer(c.Request.Context(), callerID(c), c.Param("id"), qi, *req.Answer)
	if err != nil {
		h.respondError(c, err, "save answer")
		return
	}
	c.JSON(http.StatusOK, doc)
}

// SetSubAnswer sets the answer of sub-question :s of question :q.
// PUT /api/v1/workspace/:id/answers/:q/sub_questions/:s
func (h *Handler) SetSubAnswer(c *gin.Context) {
	qi, ok := indexParam(c, "q")
	if !ok {
		return
	}
	si, ok := indexParam(c, "s")
	if !ok {
		return
	}
	var req models.AnswerTextRequest
	if !bindJSON(c, &req, "answer is required") {
		return
	}

	doc, err := h.Workspace.SetSubAnswer(c.Request.Context(), callerID(c), c.Param("id"), qi, si, *req.Answer)
	if err != nil {
		h.respondError(c, err, "save answer")
		return
	}
	c.JSON(http.StatusOK, doc)
}

// RemoveFromWorkspace deletes one of the caller's AnswerDocs.
// DELETE /api/v1/workspace/:id
func (h *Handler) RemoveFromWorkspace(c *gin.Context) {
	if err := h.Workspace.Delete(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		h.respondError(c, err, "remove from workspace")
		return
	}
	c.Status(http.StatusNoContent)
}
