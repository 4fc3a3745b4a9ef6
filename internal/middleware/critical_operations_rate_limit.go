package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"qrstudio-backend/internal/config"
)

type criticalOperationVisitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func operationRateLimit(operation, message string, requestsPerWindow, windowSeconds int) gin.HandlerFunc {
	return func(c *gin.Context) {
		manager := managerFrom(c)
		if manager == nil {
			c.Next()
			return
		}

		limiter := manager.GetCriticalOperationLimiter(c.ClientIP(), operation, requestsPerWindow, windowSeconds)
		if limiter == nil {
			c.Next()
			return
		}

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":          operation + " rate limit exceeded",
				"message":        message,
				"retry_after":    windowSeconds,
				"max_requests":   requestsPerWindow,
				"window_seconds": windowSeconds,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// UploadRateLimitMiddleware limits file uploads per IP.
// Default: 10 requests per 300 seconds.
func UploadRateLimitMiddleware(cfg *config.Config) gin.HandlerFunc {
	requestsPerWindow := cfg.UploadRateLimitRequests
	if requestsPerWindow <= 0 {
		requestsPerWindow = 10
	}
	windowSeconds := cfg.UploadRateLimitWindow
	if windowSeconds <= 0 {
		windowSeconds = 300
	}
	return operationRateLimit(OperationUpload, "Too many upload requests. Please try again later.", requestsPerWindow, windowSeconds)
}

// RenderRateLimitMiddleware limits image rendering per IP; cache misses
// cost a full rasterisation.
// Default: 60 requests per 60 seconds.
func RenderRateLimitMiddleware(cfg *config.Config) gin.HandlerFunc {
	requestsPerWindow := cfg.RenderRateLimitRequests
	if requestsPerWindow <= 0 {
		requestsPerWindow = 60
	}
	windowSeconds := cfg.RenderRateLimitWindow
	if windowSeconds <= 0 {
		windowSeconds = 60
	}
	return operationRateLimit(OperationRender, "Too many render requests. Please try again later.", requestsPerWindow, windowSeconds)
}
