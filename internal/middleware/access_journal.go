package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/assa-portal-api/internal/models"
)

type activityRecorder interface {
	Record(ctx context.Context, entry models.Activity)
}

// AccessJournal records authenticated requests that ended in 403 so denied
// attempts show up in the activity journal.
func AccessJournal(recorder activityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() != http.StatusForbidden {
			return
		}
		session := SessionFromContext(c)
		if session == nil {
			return
		}

		route := c.FullPath()
		entry := models.Activity{
			Type:        "acces_refuse",
			Category:    models.ActivityCategoryAuth,
			Module:      route,
			Description: c.Request.Method + " " + route + " denied for role " + string(session.Role),
		}
		if session.IsCompany() {
			entry.CompanyID = session.CompanyID
		} else {
			id := session.ID
			entry.AdminID = &id
		}
		recorder.Record(c.Request.Context(), entry)
	}
}
