package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/assa-portal-api/internal/middleware"
	"github.com/noah-isme/assa-portal-api/internal/models"
	appErrors "github.com/noah-isme/assa-portal-api/pkg/errors"
	"github.com/noah-isme/assa-portal-api/pkg/response"
)

// requireSession returns the request session or writes a 401.
func requireSession(c *gin.Context) (*models.Session, bool) {
	session := middleware.SessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return session, true
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, message))
		return false
	}
	return true
}
