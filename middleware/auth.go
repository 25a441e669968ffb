package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"foliotrack/token"
)

// UserIDKey is the context key under which the authenticated user id is set.
const UserIDKey = "userID"

// Auth verifies the bearer access token on protected routes. A missing token
// and an invalid token produce distinct 401 messages.
func Auth(tokens *token.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"message": "No token provided", "code": http.StatusUnauthorized},
			})
			return
		}

		userID, err := tokens.VerifyAccess(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"message": "Invalid token", "code": http.StatusUnauthorized},
			})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user id set by Auth.
func UserID(c *gin.Context) uint {
	return c.MustGet(UserIDKey).(uint)
}
