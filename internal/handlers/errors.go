package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/paperhub-api/internal/apperrors"
	"github.com/Shimizu-Technology/paperhub-api/internal/middleware"
	"github.com/Shimizu-Technology/paperhub-api/internal/models"
	"github.com/Shimizu-Technology/paperhub-api/internal/services/extraction"
	"github.com/Shimizu-Technology/paperhub-api/internal/services/worker"
)

// respondError maps a service error onto a status code and error body.
// action completes "Failed to ..." for errors the caller cannot act on,
// so store outages never leak driver messages.
//
// Go Pattern: errors.Is / errors.As walk the wrap chain, so services can
// add context with fmt.Errorf("...: %w") without breaking the mapping.
func (h *Handler) respondError(c *gin.Context, err error, action string) {
	var failure *extraction.Failure
	switch {
	case errors.As(err, &failure):
		h.Log.Warn().Str("kind", string(failure.Kind)).Str("reason", failure.Reason).Msg("⚠️ Extraction failed")
		writeError(c, http.StatusInternalServerError, "extraction_failed", failure.Error())
	case errors.Is(err, worker.ErrQueueFull), errors.Is(err, worker.ErrStopped):
		writeError(c, http.StatusServiceUnavailable, "unavailable", messageOr(err, "Extraction is temporarily unavailable"))
	case errors.Is(err, apperrors.ErrValidation):
		writeError(c, http.StatusBadRequest, "invalid_request", messageOr(err, "Invalid request"))
	case errors.Is(err, apperrors.ErrUnauthenticated):
		writeError(c, http.StatusUnauthorized, "unauthorized", messageOr(err, "Authentication required"))
	case errors.Is(err, apperrors.ErrForbidden):
		writeError(c, http.StatusForbidden, "forbidden", messageOr(err, "Access denied"))
	case errors.Is(err, apperrors.ErrNotFound):
		writeError(c, http.StatusNotFound, "not_found", messageOr(err, "Not found"))
	case errors.Is(err, apperrors.ErrConflict):
		writeError(c, http.StatusConflict, "conflict", messageOr(err, "Conflict"))
	default:
		h.Log.Error().Err(err).Str("path", c.FullPath()).Msg("❌ Failed to " + action)
		writeError(c, http.StatusInternalServerError, "server_error", "Failed to "+action)
	}
}

func writeError(c *gin.Context, code int, kind, message string) {
	c.JSON(code, models.ErrorResponse{
		Error:   kind,
		Message: message,
		Code:    code,
	})
}

func messageOr(err error, fallback string) string {
	if msg := apperrors.Message(err); msg != "" {
		return msg
	}
	return fallback
}

// bindJSON binds the request body and answers 400 on failure.
func bindJSON(c *gin.Context, dst any, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", message)
		return false
	}
	return true
}

// indexParam parses a 0-based index from the URL.
func indexParam(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n < 0 {
		writeError(c, http.StatusBadRequest, "invalid_request", "'"+name+"' must be a non-negative integer")
		return 0, false
	}
	return n, true
}

// limitQuery reads ?limit=, returning 0 (the store default) when absent
// or malformed.
func limitQuery(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return n
}

// callerID returns the authenticated user's id. Every route using it sits
// behind JWTAuth.
func callerID(c *gin.Context) string {
	if user := middleware.GetUser(c); user != nil {
		return user.ID
	}
	return ""
}
