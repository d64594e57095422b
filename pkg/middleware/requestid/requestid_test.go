package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareKeepsIncomingID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	var seen string
	r.GET("/", func(c *gin.Context) { seen = Value(c) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(Header, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", w.Header().Get(Header))
}

func TestMiddlewareReplacesOversizedID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) {})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(Header, strings.Repeat("x", 500))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Len(t, w.Header().Get(Header), 36)
}
