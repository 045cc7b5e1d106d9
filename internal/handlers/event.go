package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/healthpulse/ingestion-gateway/internal/metrics"
	"github.com/healthpulse/ingestion-gateway/internal/models"
	"github.com/healthpulse/ingestion-gateway/internal/publish"
)

var tracer = otel.Tracer("ingestion-gateway/handlers")

// validationKind extracts the error_type label from a validation failure.
func validationKind(err error) string {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return verr.Kind
	}
	return models.KindMalformedPayload
}

// RegisterEventRoutes registers the ingestion-path endpoints.
//
// POST /health/event
//   - Validation failure → 400, no publish attempted
//   - Publish failure → 500, event is lost from the gateway's side;
//     the caller resubmits
//   - Success only after the backend acknowledged the write
//
// POST /health/events/batch
//   - Each element validated and published independently, in input order
//   - Per-element outcomes; partial failure is still a 200
func RegisterEventRoutes(r gin.IRoutes, pub publish.Publisher, m *metrics.Metrics, logger *zap.SugaredLogger) {
	r.POST("/health/event", func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "health_event")
		defer span.End()

		raw, err := c.GetRawData()
		if err != nil {
			m.Errors.WithLabelValues(models.KindMalformedPayload).Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
			return
		}

		event, err := models.Parse(raw)
		if err != nil {
			m.Errors.WithLabelValues(validationKind(err)).Inc()
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		m.EventsReceived.WithLabelValues(event.EventType, event.Source).Inc()
		models.Normalize(&event, time.Now().UTC())
		span.SetAttributes(
			attribute.String("event.id", event.ID),
			attribute.String("event.category", event.Category),
		)

		if err := pub.Publish(ctx, &event); err != nil {
			logger.Errorw("failed to publish health event",
				"event_id", event.ID,
				"category", event.Category,
				"error", err,
			)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
			return
		}

		c.JSON(http.StatusOK, models.EventResponse{
			Message: "health event processed successfully",
			EventID: event.ID,
		})
	})

	r.POST("/health/events/batch", func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "health_events_batch")
		defer span.End()

		var elements []json.RawMessage
		if err := c.ShouldBindJSON(&elements); err != nil {
			m.Errors.WithLabelValues(models.KindMalformedPayload).Inc()
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
			return
		}
		span.SetAttributes(attribute.Int("batch.size", len(elements)))

		// No batch atomicity: one element's failure never aborts the
		// rest, and results stay positional so callers can correlate.
		results := make([]models.BatchResult, 0, len(elements))
		for _, raw := range elements {
			event, err := models.Parse(raw)
			if err != nil {
				m.Errors.WithLabelValues(validationKind(err)).Inc()
				results = append(results, models.BatchResult{Error: err.Error()})
				continue
			}

			m.EventsReceived.WithLabelValues(event.EventType, event.Source).Inc()
			models.Normalize(&event, time.Now().UTC())

			if err := pub.Publish(ctx, &event); err != nil {
				logger.Errorw("failed to publish health event",
					"event_id", event.ID,
					"category", event.Category,
					"error", err,
				)
				results = append(results, models.BatchResult{
					EventID: event.ID,
					Error:   "failed to process event",
				})
				continue
			}

			results = append(results, models.BatchResult{
				EventID: event.ID,
				Status:  "success",
			})
		}

		c.JSON(http.StatusOK, gin.H{"results": results})
	})
}
