package middleware

import (
	"net/http"
	"strings"

	"meal-planner/internal/infrastructure/auth"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// UserIDKey is the context key the auth middleware stores the verified
// user ID under.
const UserIDKey = "user_id"

// Auth requires a valid bearer token and exposes its user ID to handlers.
func Auth(manager *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing bearer token",
				"code":  common.ErrCodeUnauthorized,
			})
			return
		}

		userID, err := manager.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
				"code":  common.ErrCodeUnauthorized,
			})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}
