package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// Header carries the request id in and out.
	Header     = "X-Request-ID"
	contextKey = "request_id"
	maxLength  = 128
)

// Middleware reuses a caller-supplied request id or generates a UUID.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" || len(id) > maxLength {
			id = uuid.NewString()
		}
		c.Set(contextKey, id)
		c.Writer.Header().Set(Header, id)
		c.Next()
	}
}

// Value returns the request ID stored in the Gin context.
func Value(c *gin.Context) string {
	return c.GetString(contextKey)
}
