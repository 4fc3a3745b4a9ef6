package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"qrstudio-backend/internal/microsite"
)

const defaultRobotsDirectives = "noindex, nofollow"

// ViewerHeadersMiddleware marks microsite pages as non indexable. Token
// pages carry their whole content in the URL, so they are never stored by
// shared caches; stored pages can be edited at any time and must revalidate.
func ViewerHeadersMiddleware(directives ...string) gin.HandlerFunc {
	cleaned := make([]string, 0, len(directives))
	for _, directive := range directives {
		if directive = strings.TrimSpace(directive); directive != "" {
			cleaned = append(cleaned, directive)
		}
	}
	robots := defaultRobotsDirectives
	if len(cleaned) > 0 {
		robots = strings.Join(cleaned, ", ")
	}

	return func(c *gin.Context) {
		c.Header("X-Robots-Tag", robots)
		if c.Query(microsite.QueryParam) != "" {
			c.Header("Cache-Control", "private, no-store")
		} else {
			c.Header("Cache-Control", "no-cache")
		}
		c.Next()
	}
}
