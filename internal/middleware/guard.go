package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sudzikcoin/PingPoint-sub001/internal/ratelimit"
	"github.com/sudzikcoin/PingPoint-sub001/internal/token"
	"github.com/sudzikcoin/PingPoint-sub001/pkg/response"
)

// PublicReadGuard rate-limits public tracking reads per (client address,
// token fragment) before the cache or the store is consulted. The full token
// never appears in the limiter keys.
func PublicReadGuard(limiter *ratelimit.FixedWindow, m GuardMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := c.Param("token")
		key := c.ClientIP() + ":" + token.Fragment(tok)

		if !limiter.Allow(key, time.Now()) {
			if m != nil {
				m.RateLimited("public")
			}
			response.TooManyRequests(c, "Rate limit exceeded. Please try again later.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GuardMetrics is the metrics hook the guard reports into; nil disables it
type GuardMetrics interface {
	RateLimited(surface string)
}
