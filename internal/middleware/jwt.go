// jwt.go issues and checks the HS256 bearer tokens that identify callers.
//
// The token only names the account. Every request reloads the user from
// the store, so a deleted account or a revoked admin role takes effect
// immediately rather than when the token expires.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Shimizu-Technology/paperhub-api/internal/models"
	"github.com/Shimizu-Technology/paperhub-api/internal/store"
)

const userContextKey = "user"

const (
	// TokenTTL is how long an issued token stays valid.
	TokenTTL = 72 * time.Hour
	// TokenIssuer is stamped on every token and required when parsing.
	TokenIssuer = "paperhub"
)

// Claims identifies the account in Subject. Email is informational.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID is the account the token was issued to.
func (c *Claims) UserID() string { return c.Subject }

// GenerateJWT signs a token for user.
func GenerateJWT(user *models.User, secret string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseJWT verifies signature, expiry and issuer. Only HS256 is accepted,
// and a token without a subject is rejected.
func ParseJWT(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidSubject
	}
	return claims, nil
}

// bearerToken reads "Authorization: Bearer <token>". EventSource cannot
// set headers, so live feeds may pass ?access_token= instead.
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return c.Query("access_token")
}

// JWTAuth validates the bearer token and loads the account into the
// context for GetUser and GetIdentity.
func JWTAuth(users store.UserStore, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			abortUnauthorized(c, "Missing or invalid Authorization header. Use 'Bearer <token>'")
			return
		}

		claims, err := ParseJWT(tokenString, jwtSecret)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), claims.UserID())
		if err != nil {
			abortUnauthorized(c, "User not found")
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:   "unauthorized",
		Message: message,
		Code:    http.StatusUnauthorized,
	})
}

// GetUser returns the authenticated account, or nil on public routes.
func GetUser(c *gin.Context) *models.User {
	val, exists := c.Get(userContextKey)
	if !exists {
		return nil
	}
	// Go Pattern: the comma-ok assertion returns false instead of panicking
	user, _ := val.(*models.User)
	return user
}
