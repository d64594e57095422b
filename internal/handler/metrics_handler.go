package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/assa-portal-api/internal/service"
)

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

// PingContext calls f.
func (f PingFunc) PingContext(ctx context.Context) error {
	return f(ctx)
}

// MetricsHandler exposes observability and probe endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	checks  map[string]Pinger
}

// NewMetricsHandler constructs a metrics handler. checks are named readiness dependencies.
func NewMetricsHandler(metrics *service.MetricsService, checks map[string]Pinger) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, checks: checks}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health is the liveness probe.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready pings every dependency and reports 503 if any fails.
func (h *MetricsHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = "down"
			continue
		}
		results[name] = "up"
	}

	label := "ready"
	if status != http.StatusOK {
		label = "not_ready"
	}
	c.JSON(status, gin.H{"status": label, "checks": results})
}
