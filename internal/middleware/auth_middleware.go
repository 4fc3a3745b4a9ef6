package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const AdminTokenHeader = "X-Admin-Token"

// AdminTokenMiddleware admits requests that present token either in the
// X-Admin-Token header or as a bearer credential. An empty token locks the
// route entirely.
func AdminTokenMiddleware(token string) gin.HandlerFunc {
	expected := []byte(strings.TrimSpace(token))

	return func(c *gin.Context) {
		if len(expected) == 0 {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access is not configured"})
			c.Abort()
			return
		}

		presented := strings.TrimSpace(c.GetHeader(AdminTokenHeader))
		if presented == "" {
			authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
			if authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
					c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
					c.Abort()
					return
				}
				presented = strings.TrimSpace(parts[1])
			}
		}

		if presented == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization credentials required"})
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(presented), expected) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid admin token"})
			c.Abort()
			return
		}

		c.Next()
	}
}
