package middleware

import (
	"net/netip"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/assa-portal-api/internal/service"
	appErrors "github.com/noah-isme/assa-portal-api/pkg/errors"
	"github.com/noah-isme/assa-portal-api/pkg/ratelimit"
	"github.com/noah-isme/assa-portal-api/pkg/response"
)

// AttemptLimit counts every request per client IP under scope and rejects those
// past the limiter's cap with 429 and Retry-After. A limiter backend failure
// rejects the request.
func AttemptLimit(limiter ratelimit.Limiter, scope string, metrics *service.MetricsService, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		ip := c.ClientIP()
		decision, err := limiter.Allow(c.Request.Context(), scope+":"+ip)
		if err != nil {
			logger.Error("rate limiter unavailable", zap.String("scope", scope), zap.Error(err))
			response.Abort(c, appErrors.Clone(appErrors.ErrServiceUnavailable, "rate limiter unavailable"))
			return
		}
		if !decision.Allowed {
			metrics.ObserveAuthAttempt(scope, service.OutcomeRateLimited)
			logger.Warn("attempt limit reached", zap.String("scope", scope), zap.String("ip", ip), zap.Int("count", decision.Count))
			seconds := int(decision.RetryAfter.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			response.Abort(c, appErrors.ErrRateLimited)
			return
		}
		c.Next()
	}
}

// IPAllowList admits only clients whose IP matches an entry. Entries are single
// addresses or CIDR prefixes; unparsable entries are skipped with a warning.
func IPAllowList(entries []string, metrics *service.MetricsService, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	prefixes := parseAllowList(entries, logger)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !ipAllowed(prefixes, ip) {
			metrics.ObserveAuthAttempt("super_admin", service.OutcomeBlocked)
			logger.Warn("super admin access from unlisted ip", zap.String("ip", ip))
			response.Abort(c, appErrors.Clone(appErrors.ErrForbidden, "access denied from this address"))
			return
		}
		c.Next()
	}
}

func parseAllowList(entries []string, logger *zap.Logger) []netip.Prefix {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, raw := range entries {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				logger.Warn("ignoring invalid allow-list entry", zap.String("entry", raw))
				continue
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			logger.Warn("ignoring invalid allow-list entry", zap.String("entry", raw))
			continue
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes
}

func ipAllowed(prefixes []netip.Prefix, ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
