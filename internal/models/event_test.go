package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMalformedPayload(t *testing.T) {
	_, err := Parse([]byte(`{"user_id": `))
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, KindMalformedPayload, verr.Kind)
}

func TestParseMissingFields(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		field   string
	}{
		{
			name:    "missing user_id",
			payload: `{"event_type":"heart_rate_reading","category":"heart_rate"}`,
			field:   "user_id",
		},
		{
			name:    "missing event_type",
			payload: `{"user_id":"u1","category":"activity"}`,
			field:   "event_type",
		},
		{
			name:    "missing category",
			payload: `{"user_id":"u1","event_type":"activity_update"}`,
			field:   "category",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.payload))
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, KindMissingField, verr.Kind)
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, tc.field+" required", verr.Error())
		})
	}
}

func TestParseDiscardsCallerIdentity(t *testing.T) {
	payload := `{
		"id": "caller-chosen-id",
		"created_at": "2020-01-01T00:00:00Z",
		"user_id": "u1",
		"event_type": "activity_update",
		"category": "activity",
		"value": {"steps": 8500}
	}`

	event, err := Parse([]byte(payload))
	require.NoError(t, err)

	assert.Empty(t, event.ID)
	assert.True(t, event.CreatedAt.IsZero())
	assert.Equal(t, "u1", event.UserID)
	assert.Equal(t, float64(8500), event.Value["steps"])
}

func TestNormalizeAssignsIdentityAndDefaults(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	event := HealthEvent{UserID: "u1", EventType: "sleep_session", Category: "sleep"}

	Normalize(&event, now)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, now, event.CreatedAt)
	assert.Equal(t, now, event.Timestamp)
}

func TestNormalizeKeepsCallerTimestamp(t *testing.T) {
	// Device clocks skew; a caller timestamp ahead of created_at is fine.
	measured := time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	event := HealthEvent{UserID: "u1", EventType: "weight_reading", Category: "weight", Timestamp: measured}

	Normalize(&event, now)

	assert.Equal(t, measured, event.Timestamp)
	assert.Equal(t, now, event.CreatedAt)
}

func TestNormalizeIdempotent(t *testing.T) {
	event := HealthEvent{UserID: "u1", EventType: "mood_entry", Category: "mood"}
	Normalize(&event, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	id, createdAt := event.ID, event.CreatedAt

	Normalize(&event, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, id, event.ID)
	assert.Equal(t, createdAt, event.CreatedAt)
}

func TestNormalizeAssignsDistinctIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		event := HealthEvent{UserID: "u1", EventType: "hydration_intake", Category: "hydration"}
		Normalize(&event, time.Now().UTC())
		assert.False(t, seen[event.ID], "duplicate id %s", event.ID)
		seen[event.ID] = true
	}
}
