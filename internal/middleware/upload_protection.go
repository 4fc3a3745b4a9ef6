package middleware

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// inlineUploadExtensions are served as-is so microsite pages can embed them.
var inlineUploadExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
	".mp4":  {},
	".m4v":  {},
	".mov":  {},
	".webm": {},
	".pdf":  {},
}

// blockedUploadExtensions would execute in the site's origin if a browser
// rendered them.
var blockedUploadExtensions = map[string]struct{}{
	".html":  {},
	".htm":   {},
	".xhtml": {},
	".svg":   {},
	".xml":   {},
	".js":    {},
	".mjs":   {},
}

// UploadsProtection guards the public /uploads route. Markup and script are
// never served and every other non-media file is forced to download.
func UploadsProtection() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawPath := strings.ToLower(strings.TrimSpace(c.Param("filepath")))
		ext := filepath.Ext(rawPath)
		if ext == "" {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		if _, blocked := blockedUploadExtensions[ext]; blocked {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		if _, inline := inlineUploadExtensions[ext]; !inline {
			c.Header("Content-Disposition", "attachment")
		}
		c.Header("X-Content-Type-Options", "nosniff")
		c.Next()
	}
}
