package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/healthpulse/ingestion-gateway/internal/metrics"
	"github.com/healthpulse/ingestion-gateway/internal/models"
	"github.com/healthpulse/ingestion-gateway/internal/routing"
)

func testRouter() *routing.Router {
	return routing.NewRouter(map[string]string{
		"activity":   "health.activity.raw",
		"heart_rate": "health.heart_rate.raw",
	})
}

func normalizedEvent() *models.HealthEvent {
	event := &models.HealthEvent{
		UserID:    "u1",
		EventType: "activity_update",
		Category:  "activity",
		Value:     map[string]any{"steps": float64(8500)},
		Source:    "fitband",
	}
	models.Normalize(event, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	return event
}

func headerValue(headers []sarama.RecordHeader, key string) (string, bool) {
	for _, h := range headers {
		if string(h.Key) == key {
			return string(h.Value), true
		}
	}
	return "", false
}

func TestPublishSendsToResolvedTopic(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	m := metrics.New()
	pub := NewKafkaPublisherWith(producer, testRouter(), m, zap.NewNop().Sugar())

	event := normalizedEvent()

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "health.activity.raw" {
			return fmt.Errorf("unexpected topic %q", msg.Topic)
		}

		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "u1" {
			return fmt.Errorf("unexpected partition key %q", key)
		}

		for header, want := range map[string]string{
			"event_type": "activity_update",
			"category":   "activity",
			"source":     "fitband",
			"timestamp":  event.Timestamp.Format(time.RFC3339),
		} {
			got, ok := headerValue(msg.Headers, header)
			if !ok {
				return fmt.Errorf("missing header %q", header)
			}
			if got != want {
				return fmt.Errorf("header %q = %q, want %q", header, got, want)
			}
		}

		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var sent models.HealthEvent
		if err := json.Unmarshal(value, &sent); err != nil {
			return err
		}
		if sent.ID != event.ID {
			return fmt.Errorf("body id = %q, want %q", sent.ID, event.ID)
		}
		return nil
	})

	require.NoError(t, pub.Publish(context.Background(), event))
	require.NoError(t, pub.Close())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("health.activity.raw", "activity_update")))
}

func TestPublishUnknownCategoryRoutesToCatchAll(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	pub := NewKafkaPublisherWith(producer, testRouter(), metrics.New(), zap.NewNop().Sugar())

	event := normalizedEvent()
	event.Category = "blood_pressure"

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != routing.UnknownTopic {
			return fmt.Errorf("unexpected topic %q", msg.Topic)
		}
		return nil
	})

	require.NoError(t, pub.Publish(context.Background(), event))
	require.NoError(t, pub.Close())
}

func TestPublishBackendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	m := metrics.New()
	pub := NewKafkaPublisherWith(producer, testRouter(), m, zap.NewNop().Sugar())

	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := pub.Publish(context.Background(), normalizedEvent())
	require.Error(t, err)

	var perr *models.PublishError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, models.KindBackendUnavailable, perr.Kind)
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues(models.KindBackendUnavailable)))
	require.NoError(t, pub.Close())
}
