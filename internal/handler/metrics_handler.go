package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edufy-app/roster-api/internal/service"
)

type storeReadiness interface {
	Ready() bool
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	store   storeReadiness
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics *service.MetricsService, store storeReadiness) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, store: store}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a liveness payload.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports which persistence backend is serving requests. The local
// fallback still counts as ready, it just gets named so operators can tell.
func (h *MetricsHandler) Ready(c *gin.Context) {
	backend := "local"
	if h.store != nil && h.store.Ready() {
		backend = "remote"
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": backend})
}
