package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

const staticPrefix = "/static/"

// CacheConfig represents cache control configuration
type CacheConfig struct {
	// StaticMaxAge applies to embedded assets under /static/.
	StaticMaxAge int
}

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{StaticMaxAge: 3600}
}

// Cache marks static assets cacheable and everything else no-store, since
// pages and fragments are rendered for one session.
func Cache(config CacheConfig) gin.HandlerFunc {
	static := fmt.Sprintf("public, max-age=%d", config.StaticMaxAge)
	return func(c *gin.Context) {
		if c.Request.Method == "GET" && strings.HasPrefix(c.Request.URL.Path, staticPrefix) {
			c.Header("Cache-Control", static)
		} else {
			c.Header("Cache-Control", "no-store")
			c.Header("Vary", "Cookie")
		}
		c.Next()
	}
}
