package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/assa-portal-api/internal/models"
	"github.com/noah-isme/assa-portal-api/internal/service"
	appErrors "github.com/noah-isme/assa-portal-api/pkg/errors"
	"github.com/noah-isme/assa-portal-api/pkg/logger"
	"github.com/noah-isme/assa-portal-api/pkg/response"
)

// ContextSessionKey is the gin context key storing the request Session.
const ContextSessionKey = "session"

// AccessTokenHeader is the legacy header some clients still send instead of Authorization.
const AccessTokenHeader = "X-Access-Token"

type tokenVerifier interface {
	Verify(token string, kind service.TokenKind) (*models.JWTClaims, error)
}

// Authenticate requires a valid access token and stores the Session built from it.
func Authenticate(tokens tokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := extractToken(c)
		if err != nil {
			response.Abort(c, err)
			return
		}

		claims, err := tokens.Verify(raw, service.AccessToken)
		if err != nil {
			response.Abort(c, err)
			return
		}

		session, err := service.BuildSession(claims)
		if err != nil {
			response.Abort(c, err)
			return
		}

		c.Set(ContextSessionKey, session)
		c.Set(logger.PrincipalKey, session.ID)
		c.Next()
	}
}

func extractToken(c *gin.Context) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", appErrors.Clone(appErrors.ErrTokenInvalid, "invalid authorization header")
		}
		return strings.TrimSpace(parts[1]), nil
	}
	if token := strings.TrimSpace(c.GetHeader(AccessTokenHeader)); token != "" {
		return token, nil
	}
	return "", appErrors.ErrTokenMissing
}

// SessionFromContext returns the Session set by Authenticate, or nil.
func SessionFromContext(c *gin.Context) *models.Session {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	session, _ := value.(*models.Session)
	return session
}
