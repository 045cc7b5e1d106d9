package publish

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/healthpulse/ingestion-gateway/internal/metrics"
	"github.com/healthpulse/ingestion-gateway/internal/models"
	"github.com/healthpulse/ingestion-gateway/internal/routing"
)

var tracer = otel.Tracer("ingestion-gateway/publish")

// KafkaPublisher publishes events through a shared synchronous producer.
// SendMessage is safe for concurrent use, so one handle serves all
// request workers.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	router   *routing.Router
	metrics  *metrics.Metrics
	logger   *zap.SugaredLogger
}

// NewKafkaPublisher connects a synchronous producer to brokers and fails
// fast if none are reachable.
//
// Acknowledgment policy: wait for all in-sync replicas, with the client's
// own bounded retry (5 attempts). The gateway adds no retry layer of its
// own on top of this.
func NewKafkaPublisher(brokers []string, router *routing.Router, m *metrics.Metrics, logger *zap.SugaredLogger) (*KafkaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return NewKafkaPublisherWith(producer, router, m, logger), nil
}

// NewKafkaPublisherWith wraps an existing producer. Tests use this with a
// mock producer.
func NewKafkaPublisherWith(producer sarama.SyncProducer, router *routing.Router, m *metrics.Metrics, logger *zap.SugaredLogger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		router:   router,
		metrics:  m,
		logger:   logger,
	}
}

// Publish serializes the event, resolves its destination, and blocks until
// the broker acknowledges the write.
//
// The event must already be normalized (id and created_at set). Headers
// carry event_type/category/source/timestamp so consumers can filter
// without decoding the body.
//
// The context is used for span propagation only: an already-submitted send
// runs to completion (or the client's own timeout) even if the caller's
// request was cancelled — the gateway does not unsend.
func (p *KafkaPublisher) Publish(ctx context.Context, event *models.HealthEvent) error {
	topic := p.router.ResolveTopic(event.Category)

	_, span := tracer.Start(ctx, "kafka.publish",
		trace.WithAttributes(
			attribute.String("messaging.destination", topic),
			attribute.String("event.category", event.Category),
		),
		trace.WithSpanKind(trace.SpanKindProducer),
	)
	defer span.End()

	payload, err := json.Marshal(event)
	if err != nil {
		p.metrics.Errors.WithLabelValues(models.KindSerializationFailure).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return &models.PublishError{Kind: models.KindSerializationFailure, Err: err}
	}

	message := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(p.router.PartitionKey(event)),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.EventType)},
			{Key: []byte("category"), Value: []byte(event.Category)},
			{Key: []byte("source"), Value: []byte(event.Source)},
			{Key: []byte("timestamp"), Value: []byte(event.Timestamp.Format(time.RFC3339))},
		},
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		p.metrics.Errors.WithLabelValues(models.KindBackendUnavailable).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return &models.PublishError{Kind: models.KindBackendUnavailable, Err: err}
	}

	p.metrics.EventsPublished.WithLabelValues(topic, event.EventType).Inc()

	p.logger.Infow("health event published",
		"event_id", event.ID,
		"user_id", event.UserID,
		"event_type", event.EventType,
		"category", event.Category,
		"topic", topic,
		"partition", partition,
		"offset", offset,
	)

	return nil
}

// Close flushes buffered acknowledgment state and releases the producer.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
