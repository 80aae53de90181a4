package middleware

import (
	"net/http"
	"strings"

	"prodtrack/internal/auth"
	"prodtrack/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys set by JWTAuthMiddleware
const (
	UserIDKey = "user_id"
	RoleKey   = "role"
)

// JWTAuthMiddleware rejects requests without a valid bearer token and stores
// the caller's id and role in the gin context.
func JWTAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	secret := []byte(jwtSecret)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		claims, err := auth.ParseToken(secret, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID in token"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

// RequireManager lets only managers through.
func RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsManager(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Manager permission required"})
			return
		}
		c.Next()
	}
}

// IsManager reports whether the authenticated caller has the manager role.
func IsManager(c *gin.Context) bool {
	return c.GetString(RoleKey) == model.RoleManager
}

// CurrentUserID returns the authenticated caller's id.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}
