package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	allowHeaders  = "Authorization, Content-Type, X-Requested-With, X-Request-ID, X-Access-Token"
	exposeHeaders = "Content-Disposition, Retry-After, X-Request-ID"
	allowMethods  = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
)

// New returns a CORS middleware. An empty list or a "*" entry allows any origin.
func New(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "*" {
			allowAll = true
			continue
		}
		if origin != "" {
			origins[origin] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := origins[strings.TrimRight(origin, "/")]; ok || allowAll {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
			}
		}
		h.Set("Access-Control-Allow-Headers", allowHeaders)
		h.Set("Access-Control-Expose-Headers", exposeHeaders)
		h.Set("Access-Control-Allow-Methods", allowMethods)
		h.Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
