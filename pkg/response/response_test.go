package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/assa-portal-api/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestErrorUsesKindStatus(t *testing.T) {
	c, w := newContext()

	Abort(c, appErrors.Clone(appErrors.ErrTokenExpired, ""))

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"success":false,"message":"token expired, please log in again","error":{"code":"TOKEN_EXPIRED","message":"token expired, please log in again","status":401}}`, w.Body.String())
}

func TestErrorHidesUntypedCause(t *testing.T) {
	c, w := newContext()

	Error(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestListAddsCount(t *testing.T) {
	c, w := newContext()

	List(c, []string{"a", "b"}, 2)

	assert.JSONEq(t, `{"success":true,"data":["a","b"],"meta":{"count":2}}`, w.Body.String())
}

func TestFileSetsDownloadHeaders(t *testing.T) {
	c, w := newContext()

	File(c, "archives.csv", "text/csv; charset=utf-8", []byte("a;b\n"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="archives.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "4", w.Header().Get("Content-Length"))
	assert.Equal(t, "a;b\n", w.Body.String())
}
