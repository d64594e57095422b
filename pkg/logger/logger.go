package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/noah-isme/assa-portal-api/pkg/config"
	"github.com/noah-isme/assa-portal-api/pkg/middleware/requestid"
)

// PrincipalKey is the gin context key under which auth middleware stores the
// caller id for access logs.
const PrincipalKey = "principal_id"

// New builds the process logger from config.
func New(cfg *config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	if cfg.Env == config.EnvProduction {
		zapCfg = zap.NewProductionConfig()
	}

	zapCfg.Encoding = "json"
	if cfg.Log.Format == "console" {
		zapCfg.Encoding = "console"
	}
	if cfg.Log.Level != "" {
		if err := zapCfg.Level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return l.With(zap.String("env", cfg.Env)), nil
}

// GinMiddleware writes one access log line per request. Client errors log at
// warn and server errors at error.
func GinMiddleware(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if id := requestid.Value(c); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
		if principal := c.GetString(PrincipalKey); principal != "" {
			fields = append(fields, zap.String("principal_id", principal))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			l.Error("http_request", fields...)
		case status >= 400:
			l.Warn("http_request", fields...)
		default:
			l.Info("http_request", fields...)
		}
	}
}
