// universities.go manages the university catalogue. Reading is open to
// every signed-in user; writes require the admin role.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/paperhub-api/internal/apperrors"
	"github.com/Shimizu-Technology/paperhub-api/internal/models"
)

// ListUniversities returns all universities ordered by name.
// GET /api/v1/universities
func (h *Handler) ListUniversities(c *gin.Context) {
	unis, err := h.Store.ListUniversities(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "load universities")
		return
	}
	c.JSON(http.StatusOK, models.NewListResponse(unis))
}

// CreateUniversity adds a university.
// POST /api/v1/universities
func (h *Handler) CreateUniversity(c *gin.Context) {
	name, ok := bindName(c)
	if !ok {
		return
	}

	u := &models.University{Name: name, Courses: models.Courses{}}
	if err := h.Store.CreateUniversity(c.Request.Context(), u); err != nil {
		h.respondError(c, err, "create university")
		return
	}
	h.Log.Info().Str("university_id", u.ID).Str("name", u.Name).Msg("🏫 University created")
	c.JSON(http.StatusCreated, u)
}

// RenameUniversity changes a university's name. Papers keep the name
// they were saved with.
// PATCH /api/v1/universities/:id
func (h *Handler) RenameUniversity(c *gin.Context) {
	name, ok := bindName(c)
	if !ok {
		return
	}
	h.editUniversity(c, func(u *models.University) error {
		u.Name = name
		return nil
	})
}

// DeleteUniversity removes a university.
// DELETE /api/v1/universities/:id
func (h *Handler) DeleteUniversity(c *gin.Context) {
	if err := h.Store.DeleteUniversity(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err, "delete university")
		return
	}
	c.Status(http.StatusNoContent)
}

// AddCourse appends a course to a university. Course names are a set, so
// a name already listed (in any case) is a conflict.
// POST /api/v1/universities/:id/courses
func (h *Handler) AddCourse(c *gin.Context) {
	name, ok := bindName(c)
	if !ok {
		return
	}
	h.editUniversity(c, func(u *models.University) error {
		if u.Courses.Has(name) {
			return apperrors.NewConflictError("Course already exists.")
		}
		u.Courses = append(u.Courses, name)
		return nil
	})
}

// RemoveCourse deletes the course at :index.
// DELETE /api/v1/universities/:id/courses/:index
func (h *Handler) RemoveCourse(c *gin.Context) {
	index, ok := indexParam(c, "index")
	if !ok {
		return
	}
	h.editUniversity(c, func(u *models.University) error {
		if index >= len(u.Courses) {
			return apperrors.NewValidationError("Course index is out of range.")
		}
		// Go Pattern: build a new slice so the removal never aliases the
		// backing array of the loaded record.
		courses := make(models.Courses, 0, len(u.Courses)-1)
		courses = append(courses, u.Courses[:index]...)
		u.Courses = append(courses, u.Courses[index+1:]...)
		return nil
	})
}

// editUniversity loads :id, applies fn and writes the result back.
func (h *Handler) editUniversity(c *gin.Context, fn func(*models.University) error) {
	ctx := c.Request.Context()
	u, err := h.Store.GetUniversity(ctx, c.Param("id"))
	if err == nil {
		err = fn(u)
	}
	if err == nil {
		err = h.Store.UpdateUniversity(ctx, u)
	}
	if err != nil {
		h.respondError(c, err, "update university")
		return
	}
	c.JSON(http.StatusOK, u)
}

// bindName reads {name} and rejects blank names.
func bindName(c *gin.Context) (string, bool) {
	var req models.NameRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeError(c, http.StatusBadRequest, "invalid_request", "name is required")
		return "", false
	}
	return strings.TrimSpace(req.Name), true
}
