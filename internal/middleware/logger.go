package middleware

import (
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sudzikcoin/PingPoint-sub001/internal/token"
)

// Logger middleware logs HTTP requests. Tracking tokens in the path are
// replaced by their short fragment; the full token must never be logged.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Start timer
		start := time.Now()
		path := redactPath(c.Request.URL.Path)

		// Process request
		c.Next()

		// Calculate latency
		latency := time.Since(start)

		// Get status code
		statusCode := c.Writer.Status()

		// Get client IP
		clientIP := c.ClientIP()

		// Get method
		method := c.Request.Method

		// Log request
		log.Printf("[%s] %s %s %d %v %s",
			method,
			path,
			clientIP,
			statusCode,
			latency,
			c.Errors.String(),
		)
	}
}

// redactPath swaps the token segment of public tracking URLs for its
// non-reversible fragment
func redactPath(path string) string {
	const prefix = "/api/v1/track/"
	if !strings.HasPrefix(path, prefix) {
		return path
	}
	tok := path[len(prefix):]
	if tok == "" {
		return path
	}
	return prefix + token.Fragment(tok) + "..."
}
