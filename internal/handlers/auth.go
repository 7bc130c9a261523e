// auth.go handles accounts, tokens and profiles.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/Shimizu-Technology/paperhub-api/internal/apperrors"
	"github.com/Shimizu-Technology/paperhub-api/internal/middleware"
	"github.com/Shimizu-Technology/paperhub-api/internal/models"
)

// Register creates a new user account. Emails listed in ADMIN_EMAILS get
// the admin role.
// POST /api/v1/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req, "Email, password (min 8 chars), and name are required") {
		return
	}

	// Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.respondError(c, err, "create account")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
		IsAdmin:      h.Config.IsAdminEmail(email),
	}

	if err := h.Store.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			writeError(c, http.StatusConflict, "email_taken", "An account with this email already exists")
			return
		}
		h.respondError(c, err, "create account")
		return
	}

	h.Log.Info().Str("user_id", user.ID).Bool("admin", user.IsAdmin).Msg("👤 User registered")
	h.issueToken(c, http.StatusCreated, user)
}

// Login authenticates a user and returns a JWT token.
// POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req, "Email and password are required") {
		return
	}

	// Look up user
	user, err := h.Store.GetUserByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		h.respondError(c, err, "sign in")
		return
	}

	// Verify password; an unknown email gets the same answer as a wrong password
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeError(c, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
		return
	}

	h.issueToken(c, http.StatusOK, user)
}

// GetMe returns the current authenticated user.
// GET /api/v1/auth/me
func (h *Handler) GetMe(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.GetUser(c))
}

// RefreshToken issues a new JWT token for an authenticated user.
// POST /api/v1/auth/refresh
//
// This endpoint allows clients to obtain a fresh token before the current
// one expires, without requiring re-login.
func (h *Handler) RefreshToken(c *gin.Context) {
	h.issueToken(c, http.StatusOK, middleware.GetUser(c))
}

// UpdateProfile completes or edits the caller's profile.
// PUT /api/v1/auth/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req models.ProfileRequest
	if !bindJSON(c, &req, "name, university and course are required") {
		return
	}

	// Work on a copy; the context value belongs to the middleware
	user := *middleware.GetUser(c)
	user.Name = strings.TrimSpace(req.Name)
	user.University = strings.TrimSpace(req.University)
	user.Course = strings.TrimSpace(req.Course)
	if req.PhotoURL != nil {
		user.PhotoURL = req.PhotoURL
	}
	if user.Name == "" || user.University == "" || user.Course == "" {
		writeError(c, http.StatusBadRequest, "invalid_request", "name, university and course are required")
		return
	}
	user.ProfileCompleted = true

	if err := h.Store.UpdateProfile(c.Request.Context(), &user); err != nil {
		h.respondError(c, err, "update profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) issueToken(c *gin.Context, code int, user *models.User) {
	token, err := middleware.GenerateJWT(user, h.Config.JWTSecret)
	if err != nil {
		h.respondError(c, err, "generate token")
		return
	}
	c.JSON(code, models.AuthResponse{
		Token: token,
		User:  *user,
	})
}
