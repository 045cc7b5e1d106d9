package httpserver

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/healthpulse/ingestion-gateway/internal/handlers"
	"github.com/healthpulse/ingestion-gateway/internal/metrics"
	"github.com/healthpulse/ingestion-gateway/internal/publish"
)

var tracer = otel.Tracer("ingestion-gateway/httpserver")

// ServiceName identifies the gateway in probe responses and trace resources.
const ServiceName = "ingestion-gateway"

// NewRouter wires the gateway's HTTP surface.
// Probes/exposition: /health, /metrics
// Ingestion: /health/event, /health/events/batch
func NewRouter(pub publish.Publisher, m *metrics.Metrics, logger *zap.SugaredLogger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observe(m, logger))

	handlers.RegisterHealthRoutes(r, ServiceName, m)
	handlers.RegisterEventRoutes(r, pub, m, logger)

	return r
}

// observe wraps every request in a trace span and records its duration
// labeled by method, route, and status, with a structured completion log
// for correlation.
func observe(m *metrics.Metrics, logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		endpoint := c.FullPath()
		if endpoint == "" {
			// Unmatched routes (404s) have no template; fall back to
			// the raw path so they still show up, labeled as-is.
			endpoint = c.Request.URL.Path
		}

		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+endpoint,
			trace.WithAttributes(
				attribute.String("http.request.method", c.Request.Method),
				attribute.String("http.route", endpoint),
			),
			trace.WithSpanKind(trace.SpanKindServer),
		)
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= 500 {
			span.SetStatus(codes.Error, "")
		}

		duration := time.Since(start)
		m.RequestDuration.
			WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(status)).
			Observe(duration.Seconds())

		logger.Debugw("request completed",
			"method", c.Request.Method,
			"path", endpoint,
			"status", status,
			"duration_ms", duration.Milliseconds(),
		)
	}
}
