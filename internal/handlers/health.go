package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/healthpulse/ingestion-gateway/internal/metrics"
)

// RegisterHealthRoutes registers the probe and exposition endpoints.
//
// GET /health is a liveness probe: it reports service identity and the
// current time and deliberately checks no dependencies — a Kafka outage
// must not make the process look dead.
func RegisterHealthRoutes(r gin.IRoutes, service string, m *metrics.Metrics) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   service,
			"timestamp": time.Now().UTC(),
		})
	})

	r.GET("/metrics", gin.WrapH(m.Handler()))
}
