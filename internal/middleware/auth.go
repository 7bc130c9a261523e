// Package middleware provides HTTP middleware for the API.
//
// Go Pattern: Middleware in Go is a function that wraps an HTTP handler.
// In Gin, middleware is a gin.HandlerFunc that calls c.Next() to continue
// the chain, or c.Abort() to stop processing.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/paperhub-api/internal/models"
)

// RequireAdmin guards the university catalogue writes. It must run after
// JWTAuth, which loads the account (and its IsAdmin flag) fresh from the
// store on every request.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch user := GetUser(c); {
		case user == nil:
			abortUnauthorized(c, "Authentication required")
		case !user.IsAdmin:
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
				Error:   "forbidden",
				Message: "Administrator access required",
				Code:    http.StatusForbidden,
			})
		default:
			c.Next()
		}
	}
}

// GetIdentity returns the caller as the domain services see it, or nil
// for anonymous requests.
func GetIdentity(c *gin.Context) *models.Identity {
	return GetUser(c).Identity()
}
