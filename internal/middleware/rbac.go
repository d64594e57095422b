package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/assa-portal-api/internal/models"
	appErrors "github.com/noah-isme/assa-portal-api/pkg/errors"
	"github.com/noah-isme/assa-portal-api/pkg/response"
)

type roleAuthorizer interface {
	Authorize(principalRole string, required ...string) bool
}

// RequireRoles admits sessions whose role level reaches at least one of the
// required roles. With no roles it admits any admin tier.
func RequireRoles(roles roleAuthorizer, required ...models.Role) gin.HandlerFunc {
	names := make([]string, len(required))
	for i, r := range required {
		names[i] = string(r)
	}

	return func(c *gin.Context) {
		session := SessionFromContext(c)
		if session == nil {
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}
		if !roles.Authorize(string(session.Role), names...) {
			response.Abort(c, forbiddenRole(session.Role, names))
			return
		}
		c.Next()
	}
}

// RequireExactRole admits only sessions holding exactly role.
func RequireExactRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := SessionFromContext(c)
		if session == nil {
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}
		if session.Role != role {
			response.Abort(c, forbiddenRole(session.Role, []string{string(role)}))
			return
		}
		c.Next()
	}
}

// RequireCompany admits only company sessions linked to a company.
func RequireCompany() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := SessionFromContext(c)
		if session == nil {
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}
		if !session.IsCompany() || session.CompanyID == nil {
			response.Abort(c, forbiddenRole(session.Role, []string{string(models.RoleCompany)}))
			return
		}
		c.Next()
	}
}

func forbiddenRole(role models.Role, required []string) *appErrors.Error {
	msg := "role " + quoteRole(role) + " is not allowed"
	if len(required) > 0 {
		msg += " (requires " + strings.Join(required, " or ") + ")"
	}
	return appErrors.Clone(appErrors.ErrForbidden, msg)
}

func quoteRole(role models.Role) string {
	if role == models.RoleNone {
		return `""`
	}
	return `"` + string(role) + `"`
}
